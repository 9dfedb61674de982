package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
	"github.com/mechlink/mechlink-api/internal/domain/routes"
	"github.com/mechlink/mechlink-api/internal/ports"
)

// AuthAPI is the slice of the auth service the store drives.
type AuthAPI interface {
	PasswordLogin(ctx context.Context, email, password string) (domainauth.Session, error)
	SignOut(ctx context.Context, accessToken string)
}

// ProfileResolver fetches the profile backing the current session.
type ProfileResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (*domainauth.Profile, error)
}

// State is the store's observable snapshot: the session, the resolved
// profile (nil while unknown), and whether identity is still being resolved.
// Loading covers initial hydration and the window between a session change
// and its profile resolve: a session without a settled profile is an
// intermediate state, never a terminal one.
type State struct {
	Session domainauth.Session
	User    *domainauth.Profile
	Loading bool
}

// SignedIn reports whether the snapshot carries a live session.
func (s State) SignedIn() bool { return s.Session.Valid() }

// Role resolves the snapshot's role; nil user is unset.
func (s State) Role() domainauth.Role { return domainauth.RoleOf(s.User) }

// StoreOptions groups dependencies for Store.
type StoreOptions struct {
	Auth     AuthAPI
	Profiles ProfileResolver
	Hub      *Hub
	Config   StoreConfig
}

// StoreConfig groups the optional store dependencies.
type StoreConfig struct {
	Navigator ports.Navigator     // Optional: navigation sink for transitions
	Source    ports.SessionSource // Optional: hydration source (cookie mirror)
	Logger    *slog.Logger        // Optional
}

// Store is the per-tab session state container. It consumes the hub's event
// stream strictly in publish order; profile fetches run async keyed by the
// event's sequence number, and results arriving after a newer session change
// are discarded. Navigation fires exactly once per sign-in/sign-out
// transition, driven by events only.
type Store struct {
	auth     AuthAPI
	profiles ProfileResolver
	hub      *Hub
	nav      ports.Navigator
	source   ports.SessionSource
	logger   *slog.Logger

	mu       sync.Mutex
	state    State
	lastSeq  uint64
	started  bool
	stopped  bool
	navDone  map[EventType]bool
	watchers map[int]func(State)
	nextID   int

	cancelSub func()
	done      chan struct{}
}

// NewStore constructs a Store. Start must be called before use.
func NewStore(opts StoreOptions) *Store {
	if opts.Auth == nil {
		panic("AuthAPI is required")
	}
	if opts.Profiles == nil {
		panic("ProfileResolver is required")
	}
	if opts.Hub == nil {
		panic("Hub is required")
	}
	logger := opts.Config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		auth:     opts.Auth,
		profiles: opts.Profiles,
		hub:      opts.Hub,
		nav:      opts.Config.Navigator,
		source:   opts.Config.Source,
		logger:   logger.With("component", "session_store"),
		state:    State{Loading: true},
		navDone:  make(map[EventType]bool),
		watchers: make(map[int]func(State)),
		done:     make(chan struct{}),
	}
}

// Start hydrates the store from the session source and begins consuming the
// event stream until ctx is canceled or Stop is called.
func (s *Store) Start(ctx context.Context) {
	events, cancel := s.hub.Subscribe()
	s.mu.Lock()
	s.cancelSub = cancel
	s.started = true
	s.mu.Unlock()

	s.hydrate(ctx)

	go s.run(ctx, events)
}

// hydrate loads the pre-existing session, resolves its profile, and flips
// Loading off. Hydration never navigates: the user is already where they are.
func (s *Store) hydrate(ctx context.Context) {
	var session domainauth.Session
	if s.source != nil {
		current, err := s.source.Current(ctx)
		if err == nil && current.Valid() {
			session = current
		}
	}

	var user *domainauth.Profile
	if session.Valid() {
		p, err := s.profiles.Resolve(ctx, session.UserID)
		switch {
		case err == nil:
			user = p
		case errors.Is(err, ports.ErrProfileNotFound):
			// Signed in without a profile row; role stays unset.
		default:
			s.logger.WarnContext(ctx, "profile hydration failed", "err", err)
		}
	}

	s.mu.Lock()
	s.state = State{Session: session, User: user, Loading: false}
	// Seed the transition flags so the first event only navigates on an
	// actual transition, not on a restatement of the hydrated state.
	s.navDone[EventSignedIn] = session.Valid()
	s.navDone[EventSignedOut] = !session.Valid()
	s.mu.Unlock()
	s.notify()
}

func (s *Store) run(ctx context.Context, events <-chan Event) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.apply(ctx, ev)
		}
	}
}

// apply processes one event from the stream. It is idempotent by sequence
// number, so a publisher that already applied its own event synchronously
// causes no double work when the same event arrives through the stream.
func (s *Store) apply(ctx context.Context, ev Event) {
	s.applyEvent(ctx, ev, false)
}

// applyEvent processes one event. With syncFetch the profile resolve runs
// inline so the caller observes a settled state on return; otherwise the
// fetch runs async and Loading stays true until it settles, so watchers never
// mistake the unresolved window for a terminal state.
func (s *Store) applyEvent(ctx context.Context, ev Event, syncFetch bool) {
	s.mu.Lock()
	if s.stopped || ev.Seq <= s.lastSeq {
		s.mu.Unlock()
		return
	}
	s.lastSeq = ev.Seq

	var navTarget string
	var fetchNeeded bool
	switch ev.Type {
	case EventSignedOut:
		s.state.Session = domainauth.Session{}
		s.state.User = nil
		s.state.Loading = false
		if !s.navDone[EventSignedOut] {
			s.navDone[EventSignedOut] = true
			s.navDone[EventSignedIn] = false
			navTarget = routes.Login
		}
	case EventSignedIn, EventTokenRefreshed:
		// A different user invalidates the last-known-good profile.
		if s.state.User != nil && s.state.User.ID != ev.Session.UserID {
			s.state.User = nil
		}
		s.state.Session = ev.Session
		// Without a last-known-good profile the identity is not settled yet.
		s.state.Loading = s.state.User == nil
		if ev.Type == EventSignedIn && !s.navDone[EventSignedIn] {
			s.navDone[EventSignedIn] = true
			s.navDone[EventSignedOut] = false
			navTarget = routes.CustomerDashboard
		}
		fetchNeeded = true
	}
	nav := s.nav
	s.mu.Unlock()

	if fetchNeeded && syncFetch {
		// Settled state, single notification: callers branch on it right away.
		s.fetchProfile(ctx, ev.Seq, ev.Session.UserID)
	} else {
		s.notify()
		if fetchNeeded {
			go s.fetchProfile(ctx, ev.Seq, ev.Session.UserID)
		}
	}
	if navTarget != "" && nav != nil {
		nav.Navigate(navTarget)
	}
}

// fetchProfile resolves the profile for the session established at seq. The
// result is discarded when a newer session change has landed since, or when
// the store was stopped. Transient failures keep the last-known-good user.
// Whatever the outcome, the state settles: Loading flips off.
func (s *Store) fetchProfile(ctx context.Context, seq uint64, userID uuid.UUID) {
	p, err := s.profiles.Resolve(ctx, userID)

	s.mu.Lock()
	if s.stopped || s.lastSeq != seq {
		s.mu.Unlock()
		return
	}
	switch {
	case err == nil:
		s.state.User = p
	case errors.Is(err, ports.ErrProfileNotFound):
		s.state.User = nil
	default:
		s.logger.Warn("profile fetch failed, keeping last known profile", "err", err, "user_id", userID)
	}
	s.state.Loading = false
	s.mu.Unlock()
	s.notify()
}

// Login performs a credential login. On failure the state is untouched and
// the error returned; on success the session and the resolved profile are
// both observable before Login returns, so callers can branch on the result
// without waiting for the stream. The sign-in event drives navigation exactly
// once.
func (s *Store) Login(ctx context.Context, email, password string) error {
	session, err := s.auth.PasswordLogin(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	ev := s.hub.Publish(EventSignedIn, session)
	s.applyEvent(ctx, ev, true)
	return nil
}

// SignOut revokes the session with the provider and publishes the sign-out.
// The state is cleared before SignOut returns; navigation happens through
// the event, exactly once.
func (s *Store) SignOut(ctx context.Context) {
	s.mu.Lock()
	token := s.state.Session.AccessToken
	s.mu.Unlock()

	if token != "" {
		s.auth.SignOut(ctx, token)
	}

	ev := s.hub.Publish(EventSignedOut, domainauth.Session{})
	s.apply(ctx, ev)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnChange registers a watcher invoked with a snapshot after every state
// change. The returned func removes the watcher.
func (s *Store) OnChange(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	snapshot := s.state
	fns := make([]func(State), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// Stop unsubscribes from the hub and discards any in-flight fetch results.
func (s *Store) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	started := s.started
	cancel := s.cancelSub
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if started {
		<-s.done
	}
}
