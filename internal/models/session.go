package models

import "time"

// SessionProvider tags which identity source produced a Session.
type SessionProvider string

const (
	ProviderPrimary   SessionProvider = "primary"   // Supabase GoTrue
	ProviderSecondary SessionProvider = "secondary" // Firebase Identity Toolkit
	ProviderDemo      SessionProvider = "demo"
)

// Session is the reconciled, provider-agnostic identity consumed by the
// rest of the application. The field set is identical regardless of which
// provider produced it.
type Session struct {
	UserID        string          `json:"user_id"`
	Email         string          `json:"email"`
	DisplayName   string          `json:"display_name"`
	EmailVerified bool            `json:"email_verified"`
	AvatarURL     *string         `json:"avatar_url,omitempty"`
	IsAnonymous   bool            `json:"is_anonymous"`
	IsDemo        bool            `json:"is_demo"`
	Provider      SessionProvider `json:"provider"`
	CreatedAt     time.Time       `json:"created_at"`
	LastSignInAt  time.Time       `json:"last_sign_in_at"`

	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
}

// SameUser reports whether two sessions belong to the same user. Token
// refreshes fire change notifications with an unchanged user id, and
// those must not trigger a profile refetch.
func (s *Session) SameUser(other *Session) bool {
	if s == nil || other == nil {
		return false
	}
	return s.UserID == other.UserID
}
