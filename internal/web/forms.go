// internal/web/forms.go
//
// Credential form validation.
//
// Context
// -------
// Bad input never reaches the wire: the submit handlers check fields here
// first, and only a clean form triggers a backend call.  Messages are
// user-facing and rendered inline on the form, never as error pages.

package web

import "github.com/go-playground/validator/v10"

// Inline messages.  Wording is part of the UI contract; tests pin it.
const (
	msgFieldsRequired   = "Please fill in all fields."
	msgEmailFormat      = "Please enter a valid email address."
	msgPasswordTooShort = "Password must be at least 6 characters."
	msgPasswordMismatch = "Passwords do not match."
)

const minPasswordLen = 6

// validate is shared and concurrency-safe.
var validate = validator.New()

// checkCredentials returns an inline message, or "" when the form is clean.
// Order matters: emptiness first, then format, then length, so the user
// fixes one class of problem at a time.
func checkCredentials(email, password string) string {
	if email == "" || password == "" {
		return msgFieldsRequired
	}
	if validate.Var(email, "email") != nil {
		return msgEmailFormat
	}
	if len(password) < minPasswordLen {
		return msgPasswordTooShort
	}
	return ""
}

// checkEmail validates a lone address (forgot-password form).
func checkEmail(email string) string {
	if email == "" {
		return msgFieldsRequired
	}
	if validate.Var(email, "email") != nil {
		return msgEmailFormat
	}
	return ""
}

// checkNewPassword validates the reset form pair.
func checkNewPassword(password, confirm string) string {
	if password == "" || confirm == "" {
		return msgFieldsRequired
	}
	if len(password) < minPasswordLen {
		return msgPasswordTooShort
	}
	if password != confirm {
		return msgPasswordMismatch
	}
	return ""
}
