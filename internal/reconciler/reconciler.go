// Package reconciler merges the demo session source and both identity
// provider adapters into one current-session value, owns the precedence
// rules between them, and derives the per-session profile and admin flag.
package reconciler

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/khadmahq/khadma/internal/demostore"
	"github.com/khadmahq/khadma/internal/models"
	"github.com/khadmahq/khadma/internal/providers/identity"
	"github.com/khadmahq/khadma/internal/utils"
)

type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateAuthenticated State = "authenticated"
	StateAnonymous     State = "anonymous"
)

// ProfileAccessor is the slice of the profile store the reconciler needs.
type ProfileAccessor interface {
	// Fetch returns (nil, nil) when no profile row exists yet.
	Fetch(ctx context.Context, userID string) (*models.Profile, error)
	Update(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error)
	// CheckAdminRole fails closed: any error is reported as false.
	CheckAdminRole(ctx context.Context, userID string) bool
}

// Snapshot is the read-only view consumers get. Profile and IsAdmin load
// independently of Session and may lag behind it.
type Snapshot struct {
	State      State           `json:"state"`
	Session    *models.Session `json:"session,omitempty"`
	Profile    *models.Profile `json:"profile,omitempty"`
	IsAdmin    bool            `json:"is_admin"`
	DemoActive bool            `json:"demo_active"`
}

type fetchJob struct {
	userID string
	gen    uint64
}

type Reconciler struct {
	log       *logrus.Logger
	primary   identity.Provider
	secondary identity.Provider
	demo      demostore.Store
	profiles  ProfileAccessor

	mu         sync.Mutex
	state      State
	session    *models.Session
	profile    *models.Profile
	isAdmin    bool
	demoActive bool
	// generation bumps on every session transition; in-flight fetches
	// carry the generation they were issued under and stale results are
	// discarded.
	generation uint64
	unsubs     []identity.Unsubscribe

	jobs chan fetchJob
	quit chan struct{}
	wg   sync.WaitGroup
}

func New(primary, secondary identity.Provider, demo demostore.Store, profiles ProfileAccessor, log *logrus.Logger) *Reconciler {
	if log == nil {
		log = logrus.New()
	}
	return &Reconciler{
		log:       log,
		primary:   primary,
		secondary: secondary,
		demo:      demo,
		profiles:  profiles,
		state:     StateUninitialized,
		jobs:      make(chan fetchJob, 16),
		quit:      make(chan struct{}),
	}
}

// Init establishes the initial session. Precedence: persisted demo
// session, then the primary provider, then the secondary, else anonymous.
func (r *Reconciler) Init(ctx context.Context) error {
	r.mu.Lock()
	r.state = StateLoading
	r.mu.Unlock()

	r.wg.Add(1)
	go r.runFetcher(ctx)

	// Demo wins unconditionally when present. A corrupt record is
	// discarded by the store and reported as absent.
	if r.demo != nil {
		if sess, err := r.demo.Load(); err != nil {
			r.log.WithError(err).Warn("demo session load failed")
		} else if sess != nil {
			r.activateDemo(sess, false)
			return nil
		}
	}

	r.subscribeProviders()

	if sess, err := r.primary.CurrentSession(ctx); err == nil && sess != nil {
		r.adoptSession(sess)
		return nil
	}
	if sess, err := r.secondary.CurrentSession(ctx); err == nil && sess != nil {
		r.adoptSession(sess)
		return nil
	}

	r.mu.Lock()
	if r.state == StateLoading {
		r.state = StateAnonymous
	}
	r.mu.Unlock()
	return nil
}

// Close tears down subscriptions and the background fetcher.
func (r *Reconciler) Close() {
	r.mu.Lock()
	r.unsubscribeProvidersLocked()
	r.mu.Unlock()
	close(r.quit)
	r.wg.Wait()
}

func (r *Reconciler) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{State: r.state, IsAdmin: r.isAdmin, DemoActive: r.demoActive}
	if r.session != nil {
		cp := *r.session
		snap.Session = &cp
	}
	if r.profile != nil {
		cp := *r.profile
		snap.Profile = &cp
	}
	return snap
}

// SignIn authenticates against the primary provider, with the reserved
// demo credential pair short-circuiting to a locally persisted demo
// session. Validation failures never reach the network.
func (r *Reconciler) SignIn(ctx context.Context, email, password string) error {
	const op = "Reconciler.SignIn"

	if email == "" || password == "" {
		return utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}

	if identity.IsDemoSignIn(email, password) {
		r.activateDemo(identity.NewDemoSession(""), true)
		return nil
	}

	sess, err := r.primary.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	r.adoptSession(sess)
	return nil
}

// SignUp registers with the primary provider; the demo email synthesizes
// a demo session instead of registering.
func (r *Reconciler) SignUp(ctx context.Context, email, password, displayName string) error {
	const op = "Reconciler.SignUp"

	if email == "" || password == "" {
		return utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}

	if identity.IsDemoEmail(email) {
		r.activateDemo(identity.NewDemoSession(displayName), true)
		return nil
	}

	sess, err := r.primary.SignUp(ctx, email, password, displayName)
	if err != nil {
		return err
	}
	// Without a token there is no live session yet (confirmation email
	// pending); the change feed delivers it later.
	if sess != nil && sess.AccessToken != "" {
		r.adoptSession(sess)
	}
	return nil
}

// SignInWithOAuth returns the redirect URL for the primary provider's
// OAuth flow; the session arrives through the change feed after the
// redirect completes.
func (r *Reconciler) SignInWithOAuth(ctx context.Context, providerName string) (string, error) {
	const op = "Reconciler.SignInWithOAuth"

	if providerName == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "provider name is required", nil)
	}
	return r.primary.SignInWithOAuth(ctx, providerName)
}

// SignOut clears local state synchronously so consumers react
// immediately; provider sign-out failures are reported but local state
// stays cleared. Demo sign-out never touches the network.
func (r *Reconciler) SignOut(ctx context.Context) error {
	r.mu.Lock()
	wasDemo := r.demoActive
	r.session = nil
	r.profile = nil
	r.isAdmin = false
	r.demoActive = false
	r.state = StateAnonymous
	r.generation++
	r.mu.Unlock()

	if wasDemo {
		if r.demo != nil {
			if err := r.demo.Clear(); err != nil {
				r.log.WithError(err).Warn("demo session clear failed")
			}
		}
		r.subscribeProviders()
		return nil
	}

	var firstErr error
	if err := r.primary.SignOut(ctx); err != nil {
		firstErr = err
	}
	if sess, err := r.secondary.CurrentSession(ctx); err == nil && sess != nil {
		if err := r.secondary.SignOut(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RefreshProfile re-fetches the profile and admin flag for the current
// session. No-op while demo mode is active or when signed out.
func (r *Reconciler) RefreshProfile(ctx context.Context) error {
	r.mu.Lock()
	if r.demoActive || r.session == nil {
		r.mu.Unlock()
		return nil
	}
	userID := r.session.UserID
	gen := r.generation
	r.mu.Unlock()

	r.fetchDerived(ctx, fetchJob{userID: userID, gen: gen})
	return nil
}

// UpdateProfile merges a partial update. Demo sessions update the
// in-memory profile only; real sessions write through the accessor and
// then refresh. A failed write leaves the previous profile untouched.
func (r *Reconciler) UpdateProfile(ctx context.Context, patch models.ProfilePatch) error {
	r.mu.Lock()
	if r.session == nil {
		r.mu.Unlock()
		return nil
	}
	if r.demoActive {
		if r.profile == nil {
			r.profile = &models.Profile{ID: r.session.UserID}
		}
		patch.Apply(r.profile)
		r.mu.Unlock()
		return nil
	}
	userID := r.session.UserID
	r.mu.Unlock()

	if _, err := r.profiles.Update(ctx, userID, patch); err != nil {
		return err
	}
	return r.RefreshProfile(ctx)
}

// adoptSession installs a provider session and schedules the derived
// profile/admin fetch. Redundant notifications for the same user (token
// refreshes) update tokens without refetching.
func (r *Reconciler) adoptSession(sess *models.Session) {
	if sess.IsDemo {
		r.activateDemo(sess, false)
		return
	}

	r.mu.Lock()
	if r.demoActive {
		r.mu.Unlock()
		return
	}
	same := r.session.SameUser(sess)
	cp := *sess
	r.session = &cp
	r.state = StateAuthenticated
	if same {
		r.mu.Unlock()
		return
	}
	r.profile = nil
	r.isAdmin = false
	r.generation++
	job := fetchJob{userID: sess.UserID, gen: r.generation}
	r.mu.Unlock()

	select {
	case r.jobs <- job:
	default:
		r.log.WithField("user_id", job.userID).Warn("profile fetch queue full, dropping job")
	}
}

// activateDemo enters demo mode: synthesized profile, admin flag forced
// on (display convenience, not privilege), provider subscriptions torn
// down so neither provider can influence the session until demo
// sign-out.
func (r *Reconciler) activateDemo(sess *models.Session, persist bool) {
	if persist && r.demo != nil {
		if err := r.demo.Save(sess); err != nil {
			r.log.WithError(err).Warn("demo session save failed")
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.unsubscribeProvidersLocked()

	cp := *sess
	r.session = &cp
	r.profile = demoProfile(sess)
	r.isAdmin = true
	r.demoActive = true
	r.state = StateAuthenticated
	r.generation++
}

func demoProfile(sess *models.Session) *models.Profile {
	avatar := "https://api.dicebear.com/6.x/initials/svg?seed=DU"
	p := &models.Profile{
		ID:        sess.UserID,
		FullName:  sess.DisplayName,
		AvatarURL: &avatar,
		Bio:       "This is a demo account with limited functionality.",
		Skills:    []string{"Demo", "Testing", "Web Development"},
		UpdatedAt: sess.LastSignInAt,
	}
	return p
}

func (r *Reconciler) subscribeProviders() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.unsubs) > 0 {
		return
	}
	r.unsubs = append(r.unsubs,
		r.primary.OnSessionChange(func(s *models.Session) {
			r.onSessionChange(models.ProviderPrimary, s)
		}),
		r.secondary.OnSessionChange(func(s *models.Session) {
			r.onSessionChange(models.ProviderSecondary, s)
		}),
	)
}

func (r *Reconciler) unsubscribeProvidersLocked() {
	for _, u := range r.unsubs {
		u()
	}
	r.unsubs = nil
}

// onSessionChange runs on the provider's notification goroutine, so it
// only updates local state and enqueues work; fetches happen on the
// fetcher goroutine after the handler returns.
func (r *Reconciler) onSessionChange(origin models.SessionProvider, sess *models.Session) {
	if sess != nil {
		r.adoptSession(sess)
		return
	}

	// A nil event only clears the session if the firing provider owns it.
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.demoActive || r.session == nil || r.session.Provider != origin {
		return
	}
	r.session = nil
	r.profile = nil
	r.isAdmin = false
	r.state = StateAnonymous
	r.generation++
}

func (r *Reconciler) runFetcher(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-r.quit:
			return
		case <-ctx.Done():
			return
		case job := <-r.jobs:
			r.fetchDerived(ctx, job)
		}
	}
}

// fetchDerived loads profile and admin flag for a session generation and
// applies them only if that session is still current.
func (r *Reconciler) fetchDerived(ctx context.Context, job fetchJob) {
	profile, err := r.profiles.Fetch(ctx, job.userID)
	if err != nil {
		r.log.WithError(err).WithField("user_id", job.userID).Warn("profile fetch failed")
		profile = nil
	}
	isAdmin := r.profiles.CheckAdminRole(ctx, job.userID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != job.gen || r.session == nil || r.session.UserID != job.userID {
		return // stale response, session changed while in flight
	}
	if profile != nil {
		r.profile = profile
	}
	r.isAdmin = isAdmin
}
