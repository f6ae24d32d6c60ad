// Package identity wraps the external identity services behind one
// capability set. Each adapter normalizes its native user representation
// into models.Session before anything leaves the package.
package identity

import (
	"context"
	"sync"

	"github.com/khadmahq/khadma/internal/models"
)

// Unsubscribe removes a previously registered session-change listener.
type Unsubscribe func()

type Provider interface {
	SignUp(ctx context.Context, email, password, displayName string) (*models.Session, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	// SignInWithOAuth returns the redirect URL the caller must send the
	// user to; the session arrives later through the change feed.
	SignInWithOAuth(ctx context.Context, providerName string) (string, error)
	SignOut(ctx context.Context) error
	CurrentSession(ctx context.Context) (*models.Session, error)
	// OnSessionChange fires on every login, logout, and token refresh.
	// A nil session means signed out.
	OnSessionChange(fn func(*models.Session)) Unsubscribe
}

// notifier is the shared listener registry embedded by both adapters.
type notifier struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func(*models.Session)
}

func (n *notifier) OnSessionChange(fn func(*models.Session)) Unsubscribe {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listeners == nil {
		n.listeners = make(map[int]func(*models.Session))
	}
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.listeners, id)
	}
}

func (n *notifier) notify(s *models.Session) {
	n.mu.Lock()
	fns := make([]func(*models.Session), 0, len(n.listeners))
	for _, fn := range n.listeners {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
