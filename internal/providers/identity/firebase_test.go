package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/khadmahq/khadma/internal/demostore"
	"github.com/khadmahq/khadma/internal/models"
	"github.com/khadmahq/khadma/internal/utils"
)

func TestFirebaseSignInNormalizesSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/accounts:signInWithPassword") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "api-key" {
			t.Error("missing api key")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"localId":       "fb-uid",
			"email":         "u@example.com",
			"displayName":   "User One",
			"emailVerified": true,
			"createdAt":     "1700000000000",
			"lastLoginAt":   "1700000100000",
			"idToken":       "id-tok",
			"refreshToken":  "ref-tok",
		})
	}))
	defer srv.Close()

	p := NewFirebase("api-key", "app.firebaseapp.com", demostore.NewMemoryStore())
	p.baseURL = srv.URL

	sess, err := p.SignIn(context.Background(), "u@example.com", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if sess.UserID != "fb-uid" || sess.Provider != models.ProviderSecondary {
		t.Fatalf("normalization mismatch: %+v", sess)
	}
	if sess.AccessToken != "id-tok" || !sess.EmailVerified {
		t.Errorf("token or verified flag lost: %+v", sess)
	}
	if sess.CreatedAt.Unix() != 1700000000 {
		t.Errorf("createdAt millis not parsed, got %v", sess.CreatedAt)
	}
}

func TestFirebaseDemoSignInSkipsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("demo credentials must not reach the network")
	}))
	defer srv.Close()

	store := demostore.NewMemoryStore()
	p := NewFirebase("api-key", "app.firebaseapp.com", store)
	p.baseURL = srv.URL

	var notified *models.Session
	p.OnSessionChange(func(s *models.Session) { notified = s })

	sess, err := p.SignIn(context.Background(), "demo@example.com", "demo123")
	if err != nil {
		t.Fatal(err)
	}
	if !sess.IsDemo || sess.UserID != DemoUserID {
		t.Fatalf("expected demo session, got %+v", sess)
	}
	if notified == nil || !notified.IsDemo {
		t.Error("change feed should carry the demo session")
	}
	if persisted, _ := store.Load(); persisted == nil {
		t.Error("demo session should be persisted")
	}
}

func TestFirebaseDemoEmailSignUpSynthesizes(t *testing.T) {
	p := NewFirebase("api-key", "app.firebaseapp.com", demostore.NewMemoryStore())
	p.baseURL = "http://127.0.0.1:0" // any network call would fail

	sess, err := p.SignUp(context.Background(), "demo@example.com", "anything", "Dina")
	if err != nil {
		t.Fatal(err)
	}
	if !sess.IsDemo || sess.DisplayName != "Dina" {
		t.Fatalf("expected named demo session, got %+v", sess)
	}
}

func TestFirebaseSignInErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"INVALID_PASSWORD"}}`))
	}))
	defer srv.Close()

	p := NewFirebase("api-key", "app.firebaseapp.com", nil)
	p.baseURL = srv.URL

	_, err := p.SignIn(context.Background(), "u@example.com", "bad")
	if !utils.IsCode(err, utils.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if !strings.Contains(err.Error(), "INVALID_PASSWORD") {
		t.Errorf("provider message lost: %v", err)
	}
}

func TestFirebaseOAuthHandlerURL(t *testing.T) {
	p := NewFirebase("api-key", "app.firebaseapp.com", nil)
	u, err := p.SignInWithOAuth(context.Background(), "google")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(u, "https://app.firebaseapp.com/__/auth/handler?") {
		t.Fatalf("unexpected url %q", u)
	}
	if !strings.Contains(u, "providerId=google.com") {
		t.Errorf("provider id missing: %q", u)
	}
}
