// internal/session/errors.go
//
// Shared authentication error taxonomy.
//
// The backend client maps remote failures onto these sentinels, and the
// Manager branches on them: bad credentials surface inline, a rejected
// token clears the session, and transport trouble keeps the cached copy.
// They live here, below both packages, so neither imports the other.

package session

import "errors"

var (
	// ErrBadCredentials covers wrong email/password and any explicit
	// success:false login response.  Always safe to show inline.
	ErrBadCredentials = errors.New("incorrect credentials")

	// ErrTokenRejected means the backend answered 401 for a bearer token:
	// expired or revoked.  Callers must clear the session, never retry.
	ErrTokenRejected = errors.New("token rejected")

	// ErrUnavailable wraps transport failures.  Raw error text never
	// reaches the UI; callers log it and show a generic message.
	ErrUnavailable = errors.New("service unavailable")
)
