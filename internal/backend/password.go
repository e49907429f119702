// internal/backend/password.go
//
// Password-recovery calls.  The backend owns the token issuance and the
// actual reset; the edge just relays the forms.

package backend

import "context"

// ForgotPassword asks the backend to mail a reset link.  The response is
// intentionally uniform whether or not the address exists.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.post(ctx, "/users/forgot-password", "", map[string]string{"email": email}, nil)
}

// ResetPassword redeems a reset token for a new password.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	body := map[string]string{"token": token, "password": password}
	return c.post(ctx, "/reset-password", "", body, nil)
}
