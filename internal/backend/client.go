// internal/backend/client.go
//
// Typed client for the remote Digital Madrasa REST API.
//
/*
Context
--------
The edge owns no data; every credential check, principal lookup, and
referral decision is made by the remote backend.  This package is the only
code that speaks HTTP to it.  Callers receive typed results and sentinel
errors (see internal/session/errors.go); raw transport errors and response
bodies never leak past this boundary.

Failure mapping
---------------
  • 2xx with success:false, or 400/401 on a login  → session.ErrBadCredentials
    (carrying the backend's message when it sent one),
  • 401 on an authenticated call                   → session.ErrTokenRejected,
  • any other non-2xx status                       → session.ErrUnavailable,
  • any transport or decode failure                → session.ErrUnavailable.

Notes
-----
  • One http.Client per Client, with a config-driven timeout.
  • The optional API key is sent as X-Api-Key on every request.
  • Oxford commas, two spaces after periods.
*/
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/digitalmadrasa/edge/internal/session"
)

// DefaultTimeout caps every backend call when the config leaves the
// timeout unset.
const DefaultTimeout = 10 * time.Second

// Client talks to the remote REST backend.
type Client struct {
	base   string
	apiKey string
	http   *http.Client
}

// New builds a Client for the given base URL.  timeout <= 0 selects
// DefaultTimeout.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		apiKey: apiKey,
		http:   &http.Client{Timeout: timeout},
	}
}

/*──────────────────────────── wire envelopes ───────────────────────────────*/

type loginResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Token   string         `json:"token"`
	User    *session.User  `json:"user"`
	Admin   *session.Admin `json:"admin"`
}

type meResponse struct {
	Success bool           `json:"success"`
	User    *session.User  `json:"user"`
	Admin   *session.Admin `json:"admin"`
}

/*───────────────────────────── user endpoints ──────────────────────────────*/

// LoginUser exchanges student/affiliate credentials for a session record.
func (c *Client) LoginUser(ctx context.Context, email, password string) (session.Record, error) {
	return c.login(ctx, "/users/login", email, password)
}

// CurrentUser fetches the principal behind a user token.
func (c *Client) CurrentUser(ctx context.Context, token string) (session.Record, error) {
	return c.current(ctx, "/users/me", token)
}

// LogoutUser invalidates a user token remotely.  Best-effort; callers clear
// the local session regardless.
func (c *Client) LogoutUser(ctx context.Context, token string) error {
	return c.post(ctx, "/users/logout", token, nil, nil)
}

/*──────────────────────────── admin endpoints ──────────────────────────────*/

// LoginAdmin exchanges back-office credentials for a session record.
func (c *Client) LoginAdmin(ctx context.Context, email, password string) (session.Record, error) {
	return c.login(ctx, "/admin/login", email, password)
}

// CurrentAdmin fetches the principal behind an admin token.
func (c *Client) CurrentAdmin(ctx context.Context, token string) (session.Record, error) {
	return c.current(ctx, "/admin/me", token)
}

// LogoutAdmin invalidates an admin token remotely.
func (c *Client) LogoutAdmin(ctx context.Context, token string) error {
	return c.post(ctx, "/admin/logout", token, nil, nil)
}

/*───────────────────────────── shared plumbing ─────────────────────────────*/

func (c *Client) login(ctx context.Context, path, email, password string) (session.Record, error) {
	body := map[string]string{"email": email, "password": password}

	var out loginResponse
	if err := c.post(ctx, path, "", body, &out); err != nil {
		// 400/401 on a login is a credential problem, not a broken wire;
		// any other status is an outage and joins the transport errors.
		var se *statusError
		if errors.As(err, &se) {
			if se.code == http.StatusBadRequest || se.code == http.StatusUnauthorized {
				return session.Record{}, &apiError{sentinel: session.ErrBadCredentials, msg: se.message}
			}
			return session.Record{}, fmt.Errorf("%w: login %s: %v", session.ErrUnavailable, path, se)
		}
		return session.Record{}, err
	}
	if !out.Success || out.Token == "" {
		return session.Record{}, &apiError{sentinel: session.ErrBadCredentials, msg: out.Message}
	}
	return session.Record{Token: out.Token, User: out.User, Admin: out.Admin}, nil
}

func (c *Client) current(ctx context.Context, path, token string) (session.Record, error) {
	var out meResponse
	if err := c.get(ctx, path, token, &out); err != nil {
		// Only a 401 rejects the token; everything else is an outage, and
		// the session layer keeps its cached principal through those.
		var se *statusError
		if errors.As(err, &se) {
			if se.code == http.StatusUnauthorized {
				return session.Record{}, session.ErrTokenRejected
			}
			return session.Record{}, fmt.Errorf("%w: refresh %s: %v", session.ErrUnavailable, path, se)
		}
		return session.Record{}, err
	}
	return session.Record{Token: token, User: out.User, Admin: out.Admin}, nil
}

func (c *Client) get(ctx context.Context, path, token string, out any) error {
	return c.do(ctx, http.MethodGet, path, token, nil, out)
}

func (c *Client) post(ctx context.Context, path, token string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, token, in, out)
}

// do performs one request and decodes the JSON response into out (when
// non-nil).  Non-2xx statuses become *statusError; everything else that
// goes wrong wraps session.ErrUnavailable.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode %s: %v", session.ErrUnavailable, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("%w: build %s: %v", session.ErrUnavailable, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", session.ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", session.ErrUnavailable, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{code: resp.StatusCode, message: messageFrom(raw)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: decode %s: %v", session.ErrUnavailable, path, err)
		}
	}
	return nil
}

// messageFrom pulls a user-facing message out of an error body, if any.
func messageFrom(raw []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error
}
