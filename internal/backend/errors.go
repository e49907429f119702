// internal/backend/errors.go
//
// Error wrappers that keep the sentinel taxonomy intact while carrying the
// backend's own message for inline display.

package backend

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/digitalmadrasa/edge/internal/session"
)

// statusError is an internal marker for non-2xx responses.  It never leaves
// this package undecorated; login and current calls translate it first.
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("backend status %d %s", e.code, http.StatusText(e.code))
}

// apiError couples a sentinel with the backend's user-facing message.
type apiError struct {
	sentinel error
	msg      string
}

func (e *apiError) Error() string {
	if e.msg == "" {
		return e.sentinel.Error()
	}
	return e.msg
}

func (e *apiError) Unwrap() error { return e.sentinel }

// UserMessage extracts text safe to show inline on a form.  Credential
// errors keep the backend's wording when it sent any; everything else
// collapses to a generic message so transport detail never reaches the UI.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, session.ErrBadCredentials):
		var ae *apiError
		if errors.As(err, &ae) && ae.msg != "" {
			return ae.msg
		}
		return "Incorrect email or password."
	default:
		return "Something went wrong.  Please try again."
	}
}
