package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/khadmahq/khadma/internal/models"
	"github.com/khadmahq/khadma/internal/utils"
)

func TestSupabaseSignInNormalizesSession(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	confirmed := created.Add(time.Minute)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" || r.URL.Query().Get("grant_type") != "password" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL)
		}
		if r.Header.Get("apikey") != "anon-key" {
			t.Error("missing apikey header")
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "u@example.com" {
			t.Errorf("email = %v", body["email"])
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at-1",
			"refresh_token": "rt-1",
			"user": map[string]any{
				"id":                 "uid-1",
				"email":              "u@example.com",
				"email_confirmed_at": confirmed,
				"created_at":         created,
				"last_sign_in_at":    confirmed,
				"user_metadata": map[string]any{
					"full_name":  "User One",
					"avatar_url": "https://cdn.example.com/a.png",
				},
			},
		})
	}))
	defer srv.Close()

	p := NewSupabase(srv.URL, "anon-key")

	var notified *models.Session
	p.OnSessionChange(func(s *models.Session) { notified = s })

	sess, err := p.SignIn(context.Background(), "u@example.com", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if sess.UserID != "uid-1" || sess.DisplayName != "User One" || !sess.EmailVerified {
		t.Fatalf("normalization mismatch: %+v", sess)
	}
	if sess.Provider != models.ProviderPrimary {
		t.Errorf("provider = %q", sess.Provider)
	}
	if sess.AvatarURL == nil || !strings.HasSuffix(*sess.AvatarURL, "a.png") {
		t.Error("avatar url lost in normalization")
	}
	if notified == nil || notified.UserID != "uid-1" {
		t.Error("change feed did not fire on sign-in")
	}

	cur, _ := p.CurrentSession(context.Background())
	if cur == nil || cur.AccessToken != "at-1" {
		t.Fatalf("current session not installed: %+v", cur)
	}
}

func TestSupabaseSignInRejectedMapsToUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_description":"Invalid login credentials"}`))
	}))
	defer srv.Close()

	p := NewSupabase(srv.URL, "anon-key")
	_, err := p.SignIn(context.Background(), "u@example.com", "bad")
	if !utils.IsCode(err, utils.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid login credentials") {
		t.Errorf("provider message lost: %v", err)
	}
}

func TestSupabaseSignUpPendingConfirmationHasNoSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// unconfirmed sign-up returns the bare user, no tokens
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         "uid-2",
			"email":      "new@example.com",
			"created_at": time.Now().UTC(),
		})
	}))
	defer srv.Close()

	p := NewSupabase(srv.URL, "anon-key")

	fired := false
	p.OnSessionChange(func(s *models.Session) { fired = true })

	sess, err := p.SignUp(context.Background(), "new@example.com", "pw", "New User")
	if err != nil {
		t.Fatal(err)
	}
	if sess.AccessToken != "" {
		t.Error("pending confirmation must not carry a token")
	}
	if fired {
		t.Error("change feed must not fire without a live session")
	}
	if cur, _ := p.CurrentSession(context.Background()); cur != nil {
		t.Error("no current session should be installed")
	}
}

func TestSupabaseSignOutClearsLocallyFirst(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/v1/logout" {
			calls++
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at", "refresh_token": "rt",
			"user": map[string]any{"id": "uid", "email": "u@example.com", "created_at": time.Now().UTC()},
		})
	}))
	defer srv.Close()

	p := NewSupabase(srv.URL, "anon-key")
	if _, err := p.SignIn(context.Background(), "u@example.com", "pw"); err != nil {
		t.Fatal(err)
	}

	var lastNotify *models.Session = &models.Session{}
	p.OnSessionChange(func(s *models.Session) { lastNotify = s })

	err := p.SignOut(context.Background())
	if err == nil {
		t.Fatal("expected logout failure to propagate")
	}
	if calls != 1 {
		t.Fatalf("logout endpoint called %d times", calls)
	}
	if cur, _ := p.CurrentSession(context.Background()); cur != nil {
		t.Error("local session must clear even when logout fails")
	}
	if lastNotify != nil {
		t.Error("listeners should see the nil sign-out event")
	}
}

func TestSupabaseOAuthURL(t *testing.T) {
	p := NewSupabase("https://proj.supabase.co", "anon-key")
	u, err := p.SignInWithOAuth(context.Background(), "github")
	if err != nil {
		t.Fatal(err)
	}
	if u != "https://proj.supabase.co/auth/v1/authorize?provider=github" {
		t.Fatalf("unexpected url %q", u)
	}
}
