// Package guard gates page rendering on role. A Guard evaluates the session
// store's snapshot into a render decision; Watch drives a navigator from it.
package guard

import (
	"log/slog"
	"sync"

	domainauth "github.com/mechlink/mechlink-api/internal/domain/auth"
	"github.com/mechlink/mechlink-api/internal/domain/routes"
	"github.com/mechlink/mechlink-api/internal/ports"
	"github.com/mechlink/mechlink-api/internal/session"
)

// Outcome is the guard's verdict for a snapshot.
type Outcome int

const (
	// Checking means hydration is still in flight; render nothing, do not
	// redirect. A redirect issued now could bounce a signed-in user.
	Checking Outcome = iota
	// Authorized means the page may render.
	Authorized
	// Redirect means the user must be sent to Decision.Target.
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Checking:
		return "checking"
	case Authorized:
		return "authorized"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the result of evaluating a snapshot against a guard.
type Decision struct {
	Outcome Outcome
	Target  string // Set when Outcome is Redirect.
}

// Guard describes the requirement a page places on the session.
type Guard struct {
	// RequiredRole gates the page to one role. RoleUnset means any
	// signed-in user may pass.
	RequiredRole domainauth.Role
	// Fallback is where signed-out users go. Defaults to the login page.
	Fallback string
}

// Evaluate maps a snapshot to a render decision. While the store is loading
// the decision is Checking. Signed-out users redirect to the fallback.
// Signed-in users with the wrong role redirect to their own landing page
// rather than an error, so a mechanic deep-linked into a customer page ends
// up somewhere useful.
func (g Guard) Evaluate(st session.State) Decision {
	if st.Loading {
		return Decision{Outcome: Checking}
	}
	if !st.SignedIn() {
		fallback := g.Fallback
		if fallback == "" {
			fallback = routes.Login
		}
		return Decision{Outcome: Redirect, Target: fallback}
	}
	if g.RequiredRole.Known() && st.Role() != g.RequiredRole {
		return Decision{Outcome: Redirect, Target: routes.Landing(st.Role())}
	}
	return Decision{Outcome: Authorized}
}

// Watcher couples a guard to the session store: every state change is
// re-evaluated and redirects are pushed to the navigator. Each distinct
// target fires once until the decision changes, so a stream of identical
// snapshots does not stack navigations.
type Watcher struct {
	guard  Guard
	nav    ports.Navigator
	logger *slog.Logger

	mu       sync.Mutex
	last     Decision
	hasLast  bool
	remove   func()
	detached bool
}

// WatcherOptions groups dependencies for Watch.
type WatcherOptions struct {
	Guard     Guard
	Store     *session.Store
	Navigator ports.Navigator
	Logger    *slog.Logger // Optional
}

// Watch subscribes the guard to the store and immediately evaluates the
// current snapshot. The returned Watcher must be detached with Close.
func Watch(opts WatcherOptions) *Watcher {
	if opts.Store == nil {
		panic("session store is required")
	}
	if opts.Navigator == nil {
		panic("navigator is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		guard:  opts.Guard,
		nav:    opts.Navigator,
		logger: logger.With("component", "route_guard"),
	}
	w.remove = opts.Store.OnChange(w.observe)
	w.observe(opts.Store.Snapshot())
	return w
}

// Decision returns the most recent evaluation, if any.
func (w *Watcher) Decision() (Decision, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last, w.hasLast
}

// Close detaches the watcher from the store.
func (w *Watcher) Close() {
	w.mu.Lock()
	detached := w.detached
	w.detached = true
	remove := w.remove
	w.mu.Unlock()

	if !detached && remove != nil {
		remove()
	}
}

func (w *Watcher) observe(st session.State) {
	decision := w.guard.Evaluate(st)

	w.mu.Lock()
	if w.detached {
		w.mu.Unlock()
		return
	}
	repeat := w.hasLast && w.last == decision
	w.last = decision
	w.hasLast = true
	w.mu.Unlock()

	if repeat {
		return
	}
	if decision.Outcome == Redirect {
		w.logger.Debug("redirecting", "target", decision.Target, "role", st.Role())
		w.nav.Navigate(decision.Target)
	}
}
