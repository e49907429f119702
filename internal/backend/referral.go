// internal/backend/referral.go
//
// Referral verification and click recording.
//
// Context
// -------
// Commission attribution belongs to the backend; the edge only asks "is
// this code real" and, when it is, reports the click with whatever request
// facts it gathered (UA, geo).  Verification sits on the critical path of
// the redirect; click recording is always a side call.

package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/digitalmadrasa/edge/internal/session"
)

// ClickMeta carries the request facts attached to a click event.  All
// fields are optional; empty strings are simply omitted on the wire.
type ClickMeta struct {
	EventID    string `json:"event_id,omitempty"`
	IP         string `json:"ip,omitempty"`
	CountryISO string `json:"country,omitempty"`
	City       string `json:"city,omitempty"`
	Browser    string `json:"browser,omitempty"`
	Device     string `json:"device,omitempty"`
	Bot        bool   `json:"bot,omitempty"`
}

// VerifyReferral asks the backend whether code names a live affiliate.
// The result distinguishes "backend said no" (false, nil) from "could not
// ask" (false, err).
func (c *Client) VerifyReferral(ctx context.Context, code string) (bool, error) {
	body := map[string]string{"referral_code": code}

	var out struct {
		Valid bool `json:"valid"`
	}
	if err := c.post(ctx, "/verify-referral", "", body, &out); err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code < http.StatusInternalServerError {
			// The backend answers 404/422 for unknown codes.  A 5xx is an
			// outage, not a verdict; callers must not treat it as one.
			return false, nil
		}
		return false, fmt.Errorf("%w: verify referral: %v", session.ErrUnavailable, err)
	}
	return out.Valid, nil
}

// RecordReferralClick reports one click event.  The endpoint path spelling
// is the backend's, not ours.
func (c *Client) RecordReferralClick(ctx context.Context, code string, meta ClickMeta) error {
	body := struct {
		ReferralCode string `json:"referral_code"`
		ClickMeta
	}{ReferralCode: code, ClickMeta: meta}

	return c.post(ctx, "/reffral-link", "", body, nil)
}
