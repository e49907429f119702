// internal/referral/flow.go
//
// Referral attribution flow.
//
/*
Context
--------
A visitor landing on /ref/{code} must end up in the enrollment funnel no
matter what; the only question is whether the code travels with them.  The
flow is strictly sequential:

  1. No code → straight to the default enrollment entry, no backend call.
  2. Verify the code (verdicts are memoized in a small LRU so a hot
     affiliate link costs one backend round-trip, not one per visitor).
  3. Invalid → fallback outcome; the web layer renders a transient error
     page that redirects after a fixed delay, exactly once, no retry.
  4. Valid → click recording fires as a side call (remote report plus the
     local journal), then redirect with ?ref={code} attached.
  5. A verification transport error behaves like an invalid code, with
     different wording only.

State machine: Verifying → {Redirecting(withCode), Redirecting(fallback)}.
Every path terminates in a redirect; there is no stuck state.

Notes
-----
  • Click recording failures are logged, never surfaced, and never block.
  • Oxford commas, two spaces after periods.
*/
package referral

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/digitalmadrasa/edge/internal/backend"
	"github.com/digitalmadrasa/edge/internal/cache"
	"github.com/digitalmadrasa/edge/internal/metrics"
	"github.com/digitalmadrasa/edge/internal/requestinfo"
	"github.com/digitalmadrasa/edge/internal/sidecall"
)

// verdictCacheSize bounds the memoized verify results.  Codes are few and
// long-lived; a small cache covers the working set.
const verdictCacheSize = 512

// Verifier is the slice of the backend client the flow needs; tests
// substitute fakes.
type Verifier interface {
	VerifyReferral(ctx context.Context, code string) (bool, error)
	RecordReferralClick(ctx context.Context, code string, meta backend.ClickMeta) error
}

// Outcome is the terminal result of Resolve.  Target is always set; Delayed
// tells the web layer to show the transient error page before redirecting.
type Outcome struct {
	Code    string
	Valid   bool
	Delayed bool   // render error state, then redirect after the fixed delay
	Failed  bool   // verification errored (wording differs from invalid)
	Target  string // where the visitor ends up
}

// Flow orchestrates verification, click recording, and redirect targets.
type Flow struct {
	api       Verifier
	journal   *Journal // nil when the local journal is disabled
	enrollURL string

	mu       sync.Mutex
	verdicts *cache.LRU
}

// NewFlow wires a Verifier and an optional Journal.  enrollURL is the
// default enrollment entry point, e.g. "/enroll/1".
func NewFlow(api Verifier, journal *Journal, enrollURL string) *Flow {
	return &Flow{
		api:       api,
		journal:   journal,
		enrollURL: enrollURL,
		verdicts:  cache.New(verdictCacheSize),
	}
}

// Resolve runs the flow for one request.  It never returns an error; every
// failure mode folds into a fallback Outcome.
func (f *Flow) Resolve(ctx context.Context, r *http.Request, code string) Outcome {
	if code == "" {
		return Outcome{Target: f.enrollURL}
	}

	valid, err := f.verify(ctx, code)
	if err != nil {
		metrics.ReferralVerifyTotal.WithLabelValues("error").Inc()
		return Outcome{Code: code, Delayed: true, Failed: true, Target: f.enrollURL}
	}
	if !valid {
		metrics.ReferralVerifyTotal.WithLabelValues("invalid").Inc()
		return Outcome{Code: code, Delayed: true, Target: f.enrollURL}
	}

	metrics.ReferralVerifyTotal.WithLabelValues("valid").Inc()
	f.recordClick(r, code)

	return Outcome{Code: code, Valid: true, Target: f.targetWithCode(code)}
}

/*────────────────────────────── verification ───────────────────────────────*/

// verify consults the verdict cache before asking the backend.  Transport
// errors are not cached; the next visitor gets a fresh attempt.
func (f *Flow) verify(ctx context.Context, code string) (bool, error) {
	f.mu.Lock()
	if v, ok := f.verdicts.Get(code); ok {
		f.mu.Unlock()
		return v.(bool), nil
	}
	f.mu.Unlock()

	valid, err := f.api.VerifyReferral(ctx, code)
	if err != nil {
		return false, err
	}

	f.mu.Lock()
	f.verdicts.Add(code, valid)
	f.mu.Unlock()
	return valid, nil
}

/*────────────────────────────── click events ───────────────────────────────*/

// recordClick reports the click remotely and journals it locally, both as
// side calls.  Neither outcome is awaited; failure here must not hold up
// the redirect.
func (f *Flow) recordClick(r *http.Request, code string) {
	meta := backend.ClickMeta{EventID: uuid.NewString()}
	if info := requestinfo.FromContext(r.Context()); info != nil {
		if info.Geo.IP != nil {
			meta.IP = info.Geo.IP.String()
		}
		meta.CountryISO = info.Geo.CountryISO
		meta.City = info.Geo.City
		meta.Browser = info.UA.Browser
		meta.Device = info.UA.Device
		meta.Bot = info.UA.IsBot
	}

	metrics.ReferralClicksTotal.Inc()

	api := f.api
	sidecall.Go("referral click report", func(ctx context.Context) error {
		return api.RecordReferralClick(ctx, code, meta)
	})

	if f.journal != nil {
		j := f.journal
		sidecall.Go("referral click journal", func(ctx context.Context) error {
			return j.Record(ctx, Click{
				ID:         meta.EventID,
				Code:       code,
				CountryISO: meta.CountryISO,
				City:       meta.City,
				Browser:    meta.Browser,
				Device:     meta.Device,
				Bot:        meta.Bot,
			})
		})
	}
}

/*──────────────────────────────── targets ──────────────────────────────────*/

// targetWithCode appends ?ref={code} to the enrollment URL, respecting any
// query the operator already configured on it.
func (f *Flow) targetWithCode(code string) string {
	u, err := url.Parse(f.enrollURL)
	if err != nil {
		return f.enrollURL
	}
	q := u.Query()
	q.Set("ref", code)
	u.RawQuery = q.Encode()
	return u.String()
}
