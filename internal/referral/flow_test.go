// internal/referral/flow_test.go
//
// Flow tests with a scripted Verifier.
//
// Context
// -------
// The flow promises three things worth pinning down: a valid code always
// lands with ?ref= attached and exactly one click report, an invalid or
// failed verification still lands (via the delayed fallback), and repeat
// visits with the same code never re-ask the backend.

package referral

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/digitalmadrasa/edge/internal/backend"
)

// fakeVerifier scripts verify answers and counts calls.  Click reports are
// announced on a channel because the flow fires them from a goroutine.
type fakeVerifier struct {
	valid bool
	err   error

	verifyCalls atomic.Int32
	clicks      chan backend.ClickMeta
}

func newFakeVerifier(valid bool, err error) *fakeVerifier {
	return &fakeVerifier{valid: valid, err: err, clicks: make(chan backend.ClickMeta, 4)}
}

func (f *fakeVerifier) VerifyReferral(ctx context.Context, code string) (bool, error) {
	f.verifyCalls.Add(1)
	return f.valid, f.err
}

func (f *fakeVerifier) RecordReferralClick(ctx context.Context, code string, meta backend.ClickMeta) error {
	f.clicks <- meta
	return nil
}

func resolve(t *testing.T, flow *Flow, code string) Outcome {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/ref/"+code, nil)
	return flow.Resolve(context.Background(), req, code)
}

func TestFlow_ValidCodeRedirectsWithRef(t *testing.T) {
	api := newFakeVerifier(true, nil)
	flow := NewFlow(api, nil, "/enroll/1")

	out := resolve(t, flow, "ABC123")
	if !out.Valid || out.Delayed || out.Failed {
		t.Fatalf("outcome = %+v", out)
	}
	if out.Target != "/enroll/1?ref=ABC123" {
		t.Fatalf("Target = %q", out.Target)
	}

	select {
	case meta := <-api.clicks:
		if meta.EventID == "" {
			t.Fatal("click report without event id")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no click report fired")
	}
}

func TestFlow_InvalidCodeFallsBack(t *testing.T) {
	api := newFakeVerifier(false, nil)
	flow := NewFlow(api, nil, "/enroll/1")

	out := resolve(t, flow, "NOPE")
	if out.Valid || !out.Delayed || out.Failed {
		t.Fatalf("outcome = %+v", out)
	}
	// The fallback target carries no code; attribution is all-or-nothing.
	if out.Target != "/enroll/1" {
		t.Fatalf("Target = %q", out.Target)
	}
	select {
	case <-api.clicks:
		t.Fatal("click reported for an invalid code")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFlow_VerifyErrorFallsBack(t *testing.T) {
	api := newFakeVerifier(false, errors.New("backend down"))
	flow := NewFlow(api, nil, "/enroll/1")

	out := resolve(t, flow, "ABC123")
	if !out.Delayed || !out.Failed || out.Valid {
		t.Fatalf("outcome = %+v", out)
	}
	if out.Target != "/enroll/1" {
		t.Fatalf("Target = %q", out.Target)
	}
}

func TestFlow_EmptyCodeSkipsBackend(t *testing.T) {
	api := newFakeVerifier(true, nil)
	flow := NewFlow(api, nil, "/enroll/1")

	out := resolve(t, flow, "")
	if out.Target != "/enroll/1" || out.Delayed {
		t.Fatalf("outcome = %+v", out)
	}
	if n := api.verifyCalls.Load(); n != 0 {
		t.Fatalf("verify called %d times for empty code", n)
	}
}

func TestFlow_VerdictMemoized(t *testing.T) {
	api := newFakeVerifier(true, nil)
	flow := NewFlow(api, nil, "/enroll/1")

	for i := 0; i < 5; i++ {
		resolve(t, flow, "ABC123")
	}
	if n := api.verifyCalls.Load(); n != 1 {
		t.Fatalf("verify called %d times, want 1", n)
	}
	// Five visits still mean five clicks; memoization covers verdicts only.
	for i := 0; i < 5; i++ {
		select {
		case <-api.clicks:
		case <-time.After(2 * time.Second):
			t.Fatalf("click %d never reported", i+1)
		}
	}
}

func TestFlow_ErrorNotMemoized(t *testing.T) {
	api := newFakeVerifier(true, errors.New("backend down"))
	flow := NewFlow(api, nil, "/enroll/1")

	resolve(t, flow, "ABC123")
	api.err = nil
	out := resolve(t, flow, "ABC123")
	if !out.Valid {
		t.Fatalf("recovered verify not retried: %+v", out)
	}
	if n := api.verifyCalls.Load(); n != 2 {
		t.Fatalf("verify called %d times, want 2", n)
	}
}

func TestFlow_BackendOutageDoesNotPoisonVerdict(t *testing.T) {
	// Through the real client: a 502 during verification must fold into the
	// failed-fallback outcome, and once the backend is healthy again the
	// same code must verify fresh instead of being served a cached "no".
	var down atomic.Bool
	down.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/verify-referral":
			_, _ = w.Write([]byte(`{"valid":true}`))
		default:
			_, _ = w.Write([]byte(`{"success":true}`))
		}
	}))
	defer srv.Close()

	flow := NewFlow(backend.New(srv.URL, "", time.Second), nil, "/enroll/1")

	out := resolve(t, flow, "ABC123")
	if !out.Delayed || !out.Failed || out.Valid {
		t.Fatalf("outcome during outage = %+v", out)
	}

	down.Store(false)
	out = resolve(t, flow, "ABC123")
	if !out.Valid || out.Target != "/enroll/1?ref=ABC123" {
		t.Fatalf("outcome after recovery = %+v", out)
	}
}

func TestFlow_TargetKeepsExistingQuery(t *testing.T) {
	api := newFakeVerifier(true, nil)
	flow := NewFlow(api, nil, "/enroll/1?src=landing")

	out := resolve(t, flow, "ABC123")
	if out.Target != "/enroll/1?ref=ABC123&src=landing" {
		t.Fatalf("Target = %q", out.Target)
	}
	<-api.clicks
}
