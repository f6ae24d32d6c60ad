package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/khadmahq/khadma/internal/models"
	"github.com/khadmahq/khadma/internal/utils"
)

// Supabase is the primary identity provider, backed by the GoTrue REST
// API (session-token based).
type Supabase struct {
	notifier

	baseURL    string
	anonKey    string
	httpClient *http.Client

	mu      sync.Mutex
	current *models.Session
}

func NewSupabase(baseURL, anonKey string) *Supabase {
	return &Supabase{
		baseURL:    baseURL,
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// gotrueUser is the provider-native shape; it never leaves this file.
type gotrueUser struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at"`
	CreatedAt        time.Time      `json:"created_at"`
	LastSignInAt     *time.Time     `json:"last_sign_in_at"`
	UserMetadata     map[string]any `json:"user_metadata"`
}

type gotrueSession struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         *gotrueUser `json:"user"`

	// /signup without autoconfirm returns the bare user instead
	gotrueUser
}

type gotrueError struct {
	Msg              string `json:"msg"`
	ErrorField       string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *gotrueError) message() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.ErrorField != "":
		return e.ErrorField
	default:
		return "authentication failed"
	}
}

// sessionFromGoTrue is the single normalization point for this provider.
func sessionFromGoTrue(u *gotrueUser, accessToken, refreshToken string) *models.Session {
	displayName := "User"
	var avatarURL *string
	if u.UserMetadata != nil {
		if v, ok := u.UserMetadata["full_name"].(string); ok && v != "" {
			displayName = v
		}
		if v, ok := u.UserMetadata["avatar_url"].(string); ok && v != "" {
			avatarURL = &v
		}
	}

	lastSignIn := u.CreatedAt
	if u.LastSignInAt != nil {
		lastSignIn = *u.LastSignInAt
	}

	return &models.Session{
		UserID:        u.ID,
		Email:         u.Email,
		DisplayName:   displayName,
		EmailVerified: u.EmailConfirmedAt != nil,
		AvatarURL:     avatarURL,
		IsAnonymous:   false,
		IsDemo:        false,
		Provider:      models.ProviderPrimary,
		CreatedAt:     u.CreatedAt,
		LastSignInAt:  lastSignIn,
		AccessToken:   accessToken,
		RefreshToken:  refreshToken,
	}
}

func (p *Supabase) SignUp(ctx context.Context, email, password, displayName string) (*models.Session, error) {
	const op = "Supabase.SignUp"

	if email == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}

	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]any{"full_name": displayName},
	}

	var resp gotrueSession
	if err := p.post(ctx, op, "/auth/v1/signup", "", body, &resp); err != nil {
		return nil, err
	}

	// Autoconfirmed projects return a live session; others return the
	// user pending email confirmation. Only the former is a sign-in.
	if resp.AccessToken != "" && resp.User != nil {
		sess := sessionFromGoTrue(resp.User, resp.AccessToken, resp.RefreshToken)
		p.setCurrent(sess)
		p.notify(sess)
		return sess, nil
	}
	return sessionFromGoTrue(&resp.gotrueUser, "", ""), nil
}

func (p *Supabase) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	const op = "Supabase.SignIn"

	if email == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}

	body := map[string]any{"email": email, "password": password}

	var resp gotrueSession
	if err := p.post(ctx, op, "/auth/v1/token?grant_type=password", "", body, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil || resp.AccessToken == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "provider returned no session", nil)
	}

	sess := sessionFromGoTrue(resp.User, resp.AccessToken, resp.RefreshToken)
	p.setCurrent(sess)
	p.notify(sess)
	return sess, nil
}

func (p *Supabase) SignInWithOAuth(_ context.Context, providerName string) (string, error) {
	const op = "Supabase.SignInWithOAuth"

	if providerName == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "provider name is required", nil)
	}

	q := url.Values{"provider": {providerName}}
	return p.baseURL + "/auth/v1/authorize?" + q.Encode(), nil
}

func (p *Supabase) SignOut(ctx context.Context) error {
	const op = "Supabase.SignOut"

	cur := p.currentCopy()
	p.setCurrent(nil)
	p.notify(nil)

	if cur == nil || cur.AccessToken == "" {
		return nil
	}
	if err := p.post(ctx, op, "/auth/v1/logout", cur.AccessToken, struct{}{}, nil); err != nil {
		return err
	}
	return nil
}

func (p *Supabase) CurrentSession(_ context.Context) (*models.Session, error) {
	return p.currentCopy(), nil
}

func (p *Supabase) setCurrent(s *models.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = s
}

func (p *Supabase) currentCopy() *models.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	cp := *p.current
	return &cp
}

func (p *Supabase) post(ctx context.Context, op, path, bearer string, payload, out any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return utils.E(utils.CodeInternal, op, "create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", p.anonKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	} else {
		req.Header.Set("Authorization", "Bearer "+p.anonKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return utils.E(utils.CodeUnavailable, op, "provider unreachable", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 400 {
		var ge gotrueError
		_ = json.Unmarshal(raw, &ge)
		code := utils.CodeUnauthorized
		if resp.StatusCode >= 500 {
			code = utils.CodeUnavailable
		}
		return utils.E(code, op, ge.message(), fmt.Errorf("status %d", resp.StatusCode))
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return utils.E(utils.CodeInternal, op, "decode response", err)
	}
	return nil
}
