package identity

import (
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/khadmahq/khadma/internal/models"
)

// Demo credentials are matched in exactly one place: here. Both the
// secondary adapter and the reconciler call these predicates instead of
// carrying their own copy of the check.
const (
	DemoUserID       = "demo-user-id"
	DefaultDemoEmail = "demo@example.com"

	// bcrypt of the published demo password ("demo123"); override both
	// via DEMO_EMAIL / DEMO_PASSWORD_HASH.
	defaultDemoPasswordHash = "$2b$12$vWc2gD3FcEPMqxzxZbkQKe1cbJXMxYE27/s58yguR7sWM8FxmuQOy"
)

func demoEmail() string {
	if v := os.Getenv("DEMO_EMAIL"); v != "" {
		return v
	}
	return DefaultDemoEmail
}

func demoPasswordHash() string {
	if v := os.Getenv("DEMO_PASSWORD_HASH"); v != "" {
		return v
	}
	return defaultDemoPasswordHash
}

// IsDemoEmail reports whether the email is the reserved demo address.
// Sign-up only checks the email, matching how the demo account behaves
// as a fixed identity rather than a real registration.
func IsDemoEmail(email string) bool {
	return strings.EqualFold(strings.TrimSpace(email), demoEmail())
}

// IsDemoSignIn reports whether the credential pair is the reserved demo
// login.
func IsDemoSignIn(email, password string) bool {
	if !IsDemoEmail(email) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(demoPasswordHash()), []byte(password)) == nil
}

// NewDemoSession synthesizes the demo Session. DisplayName defaults when
// absent.
func NewDemoSession(displayName string) *models.Session {
	if displayName == "" {
		displayName = "Demo User"
	}
	now := time.Now().UTC()
	return &models.Session{
		UserID:        DemoUserID,
		Email:         demoEmail(),
		DisplayName:   displayName,
		EmailVerified: true,
		AvatarURL:     nil,
		IsAnonymous:   false,
		IsDemo:        true,
		Provider:      models.ProviderDemo,
		CreatedAt:     now,
		LastSignInAt:  now,
	}
}
