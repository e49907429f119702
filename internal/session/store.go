// internal/session/store.go
//
// Cookie-backed Session Record store.
//
// Context
// -------
// The edge keeps sessions in browser cookies: an HttpOnly token cookie plus,
// for user sessions, a plain user_data cookie holding the role flags the
// guard middleware needs for its synchronous, I/O-free decision.  Both
// copies are written by this one Store so they cannot diverge; there is no
// second write path anywhere in the repo.
//
// The structured record cookie and the role-flag projection are serialized
// JSON, percent-encoded to stay cookie-safe.  Reads fail closed: malformed
// or unparseable payloads yield the zero Record, never an error escape.
//
// Notes
// -----
//   - Save and Clear are idempotent from the caller's perspective.
//   - The cookie's effect on the guard is only visible on the *next*
//     request; callers must not assume same-request visibility.
//   - Oxford commas, two spaces after periods.

package session

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

// Cookie names shared with the guard middleware.
const (
	AdminTokenCookie = "admin_token"
	UserTokenCookie  = "user_token"
	UserDataCookie   = "user_data"

	cookieTTL = 14 * 24 * time.Hour
)

// Kind selects which principal type a Store persists.
type Kind int

const (
	KindAdmin Kind = iota
	KindUser
)

// tokenCookie returns the bearer-token cookie name for the kind.
func (k Kind) tokenCookie() string {
	if k == KindAdmin {
		return AdminTokenCookie
	}
	return UserTokenCookie
}

// recordCookie returns the structured-record cookie name for the kind.
func (k Kind) recordCookie() string {
	if k == KindAdmin {
		return "admin_session"
	}
	return "user_session"
}

// Store persists Session Records for one principal type.  Two instances
// exist per process (admin and user); they never touch each other's cookies.
type Store struct {
	kind   Kind
	secure bool
	bus    *Broadcaster
}

// NewStore builds a Store.  secure marks cookies Secure (HTTPS-only); bus
// may be nil when no observers are interested.
func NewStore(kind Kind, secure bool, bus *Broadcaster) *Store {
	return &Store{kind: kind, secure: secure, bus: bus}
}

// Kind reports which principal type this store persists.
func (s *Store) Kind() Kind { return s.kind }

/*──────────────────────────────── writes ───────────────────────────────────*/

// Save persists rec: the token cookie, the structured record cookie, and,
// for user sessions, the user_data role-flag projection, all in one call.
// A record that fails to serialize is stored as cleared, so the next Load
// reports unauthenticated instead of half a session.
func (s *Store) Save(w http.ResponseWriter, rec Record) {
	body, err := json.Marshal(rec)
	if err != nil {
		// Unserializable payload: fall back to the empty session.
		s.Clear(w)
		return
	}

	s.set(w, s.kind.tokenCookie(), rec.Token, true)
	s.set(w, s.kind.recordCookie(), url.QueryEscape(string(body)), true)

	if s.kind == KindUser && rec.User != nil {
		flags, err := json.Marshal(RoleFlags{
			ID:          rec.User.ID,
			IsStudent:   rec.User.IsStudent,
			IsAffiliate: rec.User.IsAffiliate,
		})
		if err == nil {
			// Readable by the guard on the next request; not HttpOnly so
			// in-page scripts keep the same view the original client had.
			s.set(w, UserDataCookie, url.QueryEscape(string(flags)), false)
		}
	}

	s.bus.publish(Event{Kind: s.kind, Op: OpSave, Record: rec})
}

// Clear expires every cookie this store owns.  Safe to call when the
// session is already empty.
func (s *Store) Clear(w http.ResponseWriter) {
	s.expire(w, s.kind.tokenCookie())
	s.expire(w, s.kind.recordCookie())
	if s.kind == KindUser {
		s.expire(w, UserDataCookie)
	}
	s.bus.publish(Event{Kind: s.kind, Op: OpClear})
}

/*──────────────────────────────── reads ────────────────────────────────────*/

// Load reads the structured record cookie from the request.  ok is false
// when the cookie is absent, unescapes badly, fails to decode, or decodes
// into an unauthenticated record.
func (s *Store) Load(r *http.Request) (Record, bool) {
	c, err := r.Cookie(s.kind.recordCookie())
	if err != nil || c.Value == "" {
		return Record{}, false
	}
	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}, false
	}
	if !rec.Authenticated() {
		return Record{}, false
	}
	return rec, true
}

/*─────────────────────────── cookie helpers ────────────────────────────────*/

func (s *Store) set(w http.ResponseWriter, name, value string, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: httpOnly,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(cookieTTL),
	})
}

func (s *Store) expire(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
