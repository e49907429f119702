// internal/backend/auth.go
//
// Per-role adapters satisfying session.Authenticator.
//
// The session Manager is role-agnostic; these two thin adapters bind one
// Client to the user-facing or the back-office endpoint family.

package backend

import (
	"context"

	"github.com/digitalmadrasa/edge/internal/session"
)

// Compile-time assertions: both adapters satisfy session.Authenticator.
var (
	_ session.Authenticator = (*UserAuth)(nil)
	_ session.Authenticator = (*AdminAuth)(nil)
)

// UserAuth adapts Client to the student/affiliate endpoints.
type UserAuth struct{ C *Client }

func (a UserAuth) Login(ctx context.Context, identifier, secret string) (session.Record, error) {
	return a.C.LoginUser(ctx, identifier, secret)
}

func (a UserAuth) Logout(ctx context.Context, token string) error {
	return a.C.LogoutUser(ctx, token)
}

func (a UserAuth) Current(ctx context.Context, token string) (session.Record, error) {
	return a.C.CurrentUser(ctx, token)
}

// AdminAuth adapts Client to the back-office endpoints.
type AdminAuth struct{ C *Client }

func (a AdminAuth) Login(ctx context.Context, identifier, secret string) (session.Record, error) {
	return a.C.LoginAdmin(ctx, identifier, secret)
}

func (a AdminAuth) Logout(ctx context.Context, token string) error {
	return a.C.LogoutAdmin(ctx, token)
}

func (a AdminAuth) Current(ctx context.Context, token string) (session.Record, error) {
	return a.C.CurrentAdmin(ctx, token)
}
