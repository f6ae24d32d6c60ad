package identity

import "testing"

func TestIsDemoEmail(t *testing.T) {
	cases := []struct {
		email string
		want  bool
	}{
		{"demo@example.com", true},
		{"DEMO@EXAMPLE.COM", true},
		{"  demo@example.com  ", true},
		{"demo@example.org", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsDemoEmail(c.email); got != c.want {
			t.Errorf("IsDemoEmail(%q) = %v, want %v", c.email, got, c.want)
		}
	}
}

func TestIsDemoSignIn(t *testing.T) {
	if !IsDemoSignIn("demo@example.com", "demo123") {
		t.Error("published demo credentials should match")
	}
	if IsDemoSignIn("demo@example.com", "wrong") {
		t.Error("wrong password must not match")
	}
	if IsDemoSignIn("other@example.com", "demo123") {
		t.Error("non-demo email must not match regardless of password")
	}
}

func TestNewDemoSessionDefaults(t *testing.T) {
	s := NewDemoSession("")
	if s.UserID != DemoUserID {
		t.Errorf("user id = %q", s.UserID)
	}
	if s.DisplayName != "Demo User" {
		t.Errorf("display name should default, got %q", s.DisplayName)
	}
	if !s.IsDemo || !s.EmailVerified || s.IsAnonymous {
		t.Errorf("unexpected flags: %+v", s)
	}

	named := NewDemoSession("Dina")
	if named.DisplayName != "Dina" {
		t.Errorf("explicit display name lost, got %q", named.DisplayName)
	}
}
