// internal/session/manager.go
//
// Session Manager: the bridge between the cookie Store and the backend.
//
/*
Context
--------
One Manager exists per principal type (admin, user).  Handlers call it to
log in, log out, and hydrate the current session; the Manager owns the full
state transition and always writes complete, authoritative records through
the Store, never partial merges.

State machine per request:

  Uninitialized → Hydrating → {Authenticated, Unauthenticated}

Hydrate reads the Store first.  A cached record makes the session
optimistically Authenticated right away, then a refresh against the
backend's "who am I" endpoint reconciles it:

  • fresh principal     → Store overwritten (last-fetch-wins),
  • token rejected 401  → Store cleared, Unauthenticated,
  • transport trouble   → cached principal stands (no flicker on blips),
  • refresh timeout     → same as transport trouble (bounded wait).

Concurrent hydrations for the same token share one backend call through
singleflight.

Notes
-----
  • Logout clears the Store before the remote invalidation call, which runs
    as a side call; logout can never get stuck on the network.
  • Oxford commas, two spaces after periods.
*/
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/digitalmadrasa/edge/internal/metrics"
	"github.com/digitalmadrasa/edge/internal/sidecall"
)

// DefaultRefreshTimeout bounds the hydration refresh.  The original design
// left this unbounded; three seconds keeps a dead backend from freezing
// every guarded page while staying generous for a warm one.
const DefaultRefreshTimeout = 3 * time.Second

//
// Backend contract
//

// Authenticator is the slice of the backend client the Manager needs.  The
// concrete implementation lives in internal/backend; tests substitute fakes.
type Authenticator interface {
	// Login exchanges credentials for a complete Record.  Expected
	// failures come back as ErrBadCredentials; transport failures wrap
	// ErrUnavailable.
	Login(ctx context.Context, identifier, secret string) (Record, error)

	// Logout invalidates the token remotely.  Best-effort.
	Logout(ctx context.Context, token string) error

	// Current fetches the principal the token belongs to.  A 401 comes
	// back as ErrTokenRejected.
	Current(ctx context.Context, token string) (Record, error)
}

//
// State machine
//

// State is the session lifecycle position after an operation.
type State int

const (
	Uninitialized State = iota
	Hydrating
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Hydrating:
		return "hydrating"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "uninitialized"
	}
}

// Session is the terminal result of Hydrate or Login.
type Session struct {
	State  State
	Record Record
}

// Authenticated is a convenience mirror of State.
func (s Session) Authenticated() bool { return s.State == Authenticated }

//
// Manager
//

// Manager drives session state for one principal type.
type Manager struct {
	store          *Store
	api            Authenticator
	sf             singleflight.Group
	refreshTimeout time.Duration
}

// NewManager wires a Store and an Authenticator.  refreshTimeout <= 0
// selects DefaultRefreshTimeout.
func NewManager(store *Store, api Authenticator, refreshTimeout time.Duration) *Manager {
	if refreshTimeout <= 0 {
		refreshTimeout = DefaultRefreshTimeout
	}
	return &Manager{store: store, api: api, refreshTimeout: refreshTimeout}
}

// Store exposes the underlying Store for handlers that only need reads.
func (m *Manager) Store() *Store { return m.store }

/*──────────────────────────────── login ────────────────────────────────────*/

// Login runs the full credential exchange and, on success, persists the
// complete record atomically through the Store.  The returned error is one
// of the session sentinels and safe to branch on.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, identifier, secret string) (Record, error) {
	rec, err := m.api.Login(ctx, identifier, secret)
	if err != nil {
		metrics.LoginTotal.WithLabelValues(m.roleLabel(), "failure").Inc()
		return Record{}, err
	}
	m.store.Save(w, rec)
	metrics.LoginTotal.WithLabelValues(m.roleLabel(), "success").Inc()
	return rec, nil
}

/*──────────────────────────────── logout ───────────────────────────────────*/

// Logout clears the Store unconditionally and fires the remote invalidation
// as a side call.  The local transition never waits on the network.
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	rec, ok := m.store.Load(r)
	m.store.Clear(w)

	if ok && rec.Token != "" {
		api, token := m.api, rec.Token
		sidecall.Go("remote logout", func(ctx context.Context) error {
			return api.Logout(ctx, token)
		})
	}
}

/*─────────────────────────────── hydrate ───────────────────────────────────*/

// Hydrate resolves the request's session: Store read, optimistic
// authentication from the cached record, then a bounded, deduplicated
// refresh against the backend.  The refreshed record (or the cleared
// session, on a rejected token) is written back through w.
func (m *Manager) Hydrate(ctx context.Context, w http.ResponseWriter, r *http.Request) Session {
	rec, ok := m.store.Load(r)
	if !ok {
		return Session{State: Unauthenticated}
	}

	// Optimistically authenticated; the refresh below reconciles.
	fresh, err := m.refresh(ctx, rec.Token)
	switch {
	case err == nil:
		fresh.Token = rec.Token
		m.store.Save(w, fresh)
		metrics.SessionRefreshTotal.WithLabelValues(m.roleLabel(), "ok").Inc()
		return Session{State: Authenticated, Record: fresh}

	case errors.Is(err, ErrTokenRejected):
		m.store.Clear(w)
		metrics.SessionRefreshTotal.WithLabelValues(m.roleLabel(), "rejected").Inc()
		return Session{State: Unauthenticated}

	default:
		// Transport trouble or timeout: the cached principal stands.
		zap.S().Debugw("session refresh skipped",
			"role", m.roleLabel(), "err", err)
		metrics.SessionRefreshTotal.WithLabelValues(m.roleLabel(), "stale").Inc()
		return Session{State: Authenticated, Record: rec}
	}
}

// refresh calls Current once per token regardless of how many hydrations
// race, and bounds the wait so a dead backend cannot freeze the page.
func (m *Manager) refresh(ctx context.Context, token string) (Record, error) {
	v, err, _ := m.sf.Do(token, func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, m.refreshTimeout)
		defer cancel()
		return m.api.Current(ctx, token)
	})
	if err != nil {
		return Record{}, err
	}
	return v.(Record), nil
}

func (m *Manager) roleLabel() string {
	if m.store.Kind() == KindAdmin {
		return "admin"
	}
	return "user"
}
