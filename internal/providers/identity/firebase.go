package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/khadmahq/khadma/internal/demostore"
	"github.com/khadmahq/khadma/internal/models"
	"github.com/khadmahq/khadma/internal/utils"
)

const firebaseBaseURL = "https://identitytoolkit.googleapis.com/v1"

// Firebase is the secondary identity provider, backed by the Identity
// Toolkit REST API. It also owns the demo credential special case: the
// reserved pair never reaches the remote service and instead persists a
// demo session locally, so demo login works even when this adapter is
// called directly instead of through the reconciler.
type Firebase struct {
	notifier

	apiKey     string
	authDomain string
	baseURL    string
	httpClient *http.Client
	demo       demostore.Store

	mu      sync.Mutex
	current *models.Session
}

func NewFirebase(apiKey, authDomain string, demo demostore.Store) *Firebase {
	return &Firebase{
		apiKey:     apiKey,
		authDomain: authDomain,
		baseURL:    firebaseBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		demo:       demo,
	}
}

// firebaseUser is the provider-native shape; it never leaves this file.
type firebaseUser struct {
	LocalID       string `json:"localId"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	PhotoURL      string `json:"photoUrl"`
	EmailVerified bool   `json:"emailVerified"`
	CreatedAt     string `json:"createdAt"`   // unix millis as string
	LastLoginAt   string `json:"lastLoginAt"` // unix millis as string

	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
}

type firebaseError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func firebaseTime(millis string) time.Time {
	if ms, err := strconv.ParseInt(millis, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms).UTC()
	}
	return time.Now().UTC()
}

// sessionFromFirebase is the single normalization point for this
// provider. Field presence matches the primary adapter exactly.
func sessionFromFirebase(u *firebaseUser) *models.Session {
	displayName := u.DisplayName
	if displayName == "" {
		displayName = "User"
	}
	var avatarURL *string
	if u.PhotoURL != "" {
		v := u.PhotoURL
		avatarURL = &v
	}

	return &models.Session{
		UserID:        u.LocalID,
		Email:         u.Email,
		DisplayName:   displayName,
		EmailVerified: u.EmailVerified,
		AvatarURL:     avatarURL,
		IsAnonymous:   false,
		IsDemo:        false,
		Provider:      models.ProviderSecondary,
		CreatedAt:     firebaseTime(u.CreatedAt),
		LastSignInAt:  firebaseTime(u.LastLoginAt),
		AccessToken:   u.IDToken,
		RefreshToken:  u.RefreshToken,
	}
}

func (p *Firebase) SignUp(ctx context.Context, email, password, displayName string) (*models.Session, error) {
	const op = "Firebase.SignUp"

	if email == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}

	if IsDemoEmail(email) {
		return p.demoSignIn(op, displayName)
	}

	body := map[string]any{"email": email, "password": password, "returnSecureToken": true}
	var u firebaseUser
	if err := p.post(ctx, op, "accounts:signUp", body, &u); err != nil {
		return nil, err
	}

	if displayName != "" {
		update := map[string]any{"idToken": u.IDToken, "displayName": displayName, "returnSecureToken": false}
		var updated firebaseUser
		if err := p.post(ctx, op, "accounts:update", update, &updated); err == nil {
			u.DisplayName = updated.DisplayName
		}
	}

	sess := sessionFromFirebase(&u)
	p.setCurrent(sess)
	p.notify(sess)
	return sess, nil
}

func (p *Firebase) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	const op = "Firebase.SignIn"

	if email == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}

	if IsDemoSignIn(email, password) {
		return p.demoSignIn(op, "")
	}

	body := map[string]any{"email": email, "password": password, "returnSecureToken": true}
	var u firebaseUser
	if err := p.post(ctx, op, "accounts:signInWithPassword", body, &u); err != nil {
		return nil, err
	}

	sess := sessionFromFirebase(&u)
	p.setCurrent(sess)
	p.notify(sess)
	return sess, nil
}

func (p *Firebase) demoSignIn(op, displayName string) (*models.Session, error) {
	sess := NewDemoSession(displayName)
	if p.demo != nil {
		if err := p.demo.Save(sess); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to persist demo session", err)
		}
	}
	p.setCurrent(sess)
	p.notify(sess)
	return sess, nil
}

func (p *Firebase) SignInWithOAuth(_ context.Context, providerName string) (string, error) {
	const op = "Firebase.SignInWithOAuth"

	if providerName == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "provider name is required", nil)
	}
	if p.authDomain == "" {
		return "", utils.E(utils.CodeInternal, op, "auth domain is not configured", nil)
	}

	q := url.Values{"providerId": {providerName + ".com"}, "apiKey": {p.apiKey}}
	return "https://" + p.authDomain + "/__/auth/handler?" + q.Encode(), nil
}

func (p *Firebase) SignOut(_ context.Context) error {
	// Identity Toolkit has no logout endpoint; tokens are discarded
	// client side.
	p.setCurrent(nil)
	p.notify(nil)
	return nil
}

func (p *Firebase) CurrentSession(_ context.Context) (*models.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil, nil
	}
	cp := *p.current
	return &cp, nil
}

func (p *Firebase) setCurrent(s *models.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = s
}

func (p *Firebase) post(ctx context.Context, op, method string, payload, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "encode request", err)
	}

	endpoint := p.baseURL + "/" + method + "?key=" + url.QueryEscape(p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return utils.E(utils.CodeInternal, op, "create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return utils.E(utils.CodeUnavailable, op, "provider unreachable", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 400 {
		var fe firebaseError
		_ = json.Unmarshal(raw, &fe)
		msg := fe.Error.Message
		if msg == "" {
			msg = "authentication failed"
		}
		code := utils.CodeUnauthorized
		if resp.StatusCode >= 500 {
			code = utils.CodeUnavailable
		}
		return utils.E(code, op, msg, fmt.Errorf("status %d", resp.StatusCode))
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return utils.E(utils.CodeInternal, op, "decode response", err)
	}
	return nil
}
