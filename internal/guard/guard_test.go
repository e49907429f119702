// internal/guard/guard_test.go
//
// Unit-tests for the route guard.
//
// Context
// -------
// The guard is the only layer between an anonymous request and a protected
// prefix, and it must fail closed.  Each case fires one request through
// Protect with a handcrafted cookie set and asserts pass/deny plus the
// redirect shape:
//
//   • missing token cookies deny with the requested path preserved,
//   • role-flag failures deny with the matching ?error= reason,
//   • malformed user_data is indistinguishable from a missing cookie,
//   • public pages and unguarded paths always pass.

package guard

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/digitalmadrasa/edge/internal/session"
)

// fire sends GET path with the given cookies through Protect.
func fire(t *testing.T, path string, cookies map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	passed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for name, val := range cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: val})
	}
	rr := httptest.NewRecorder()
	Protect(passed).ServeHTTP(rr, req)
	return rr
}

// wantRedirect asserts a 302 to target path with the expected query.
func wantRedirect(t *testing.T, rr *httptest.ResponseRecorder, wantPath string, wantQuery url.Values) {
	t.Helper()

	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rr.Code)
	}
	loc, err := url.Parse(rr.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad Location header: %v", err)
	}
	if loc.Path != wantPath {
		t.Fatalf("redirect path = %q, want %q", loc.Path, wantPath)
	}
	got := loc.Query()
	for key, vals := range wantQuery {
		if got.Get(key) != vals[0] {
			t.Fatalf("redirect query %s = %q, want %q", key, got.Get(key), vals[0])
		}
	}
	for key := range got {
		if _, expected := wantQuery[key]; !expected {
			t.Fatalf("unexpected redirect query param %s=%q", key, got.Get(key))
		}
	}
}

func studentCookie() string {
	return url.QueryEscape(`{"id":3,"is_student":1,"is_affiliate":0}`)
}

func TestGuard_DashboardWithoutToken(t *testing.T) {
	rr := fire(t, "/dashboard", nil)
	wantRedirect(t, rr, LoginPath, url.Values{"redirect": {"/dashboard"}})
}

func TestGuard_DashboardStudentPasses(t *testing.T) {
	rr := fire(t, "/dashboard/courses", map[string]string{
		session.UserTokenCookie: "tok",
		session.UserDataCookie:  studentCookie(),
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestGuard_DashboardNonStudentDenied(t *testing.T) {
	// Valid token, parseable cookie, wrong flag: the role check wins.
	rr := fire(t, "/dashboard", map[string]string{
		session.UserTokenCookie: "tok",
		session.UserDataCookie:  url.QueryEscape(`{"id":3,"is_student":0,"is_affiliate":1}`),
	})
	wantRedirect(t, rr, LoginPath, url.Values{
		"redirect": {"/dashboard"},
		"error":    {ReasonDashboardDenied},
	})
}

func TestGuard_MalformedUserDataDenied(t *testing.T) {
	for name, raw := range map[string]string{
		"plain text": "definitely-not-json",
		"bad escape": "%zz",
		"truncated":  url.QueryEscape(`{"is_student":`),
	} {
		rr := fire(t, "/dashboard", map[string]string{
			session.UserTokenCookie: "tok",
			session.UserDataCookie:  raw,
		})
		wantRedirect(t, rr, LoginPath, url.Values{
			"redirect": {"/dashboard"},
			"error":    {ReasonDashboardDenied},
		})
		_ = name
	}
}

func TestGuard_AffiliateFlagChecked(t *testing.T) {
	rr := fire(t, "/affiliate/payouts", map[string]string{
		session.UserTokenCookie: "tok",
		session.UserDataCookie:  studentCookie(), // is_affiliate: 0
	})
	wantRedirect(t, rr, LoginPath, url.Values{
		"redirect": {"/affiliate/payouts"},
		"error":    {ReasonAffiliateDenied},
	})
}

func TestGuard_AdminRequiresTokenOnly(t *testing.T) {
	rr := fire(t, "/admin/students", nil)
	wantRedirect(t, rr, AdminLoginPath, url.Values{"redirect": {"/admin/students"}})

	rr = fire(t, "/admin/students", map[string]string{session.AdminTokenCookie: "tok"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with admin token present", rr.Code)
	}
}

func TestGuard_PublicPathsAlwaysPass(t *testing.T) {
	for _, path := range []string{
		"/login",
		"/admin-login",
		"/forgot-password",
		"/reset-password",
		"/reset-password/tok-123",
	} {
		if rr := fire(t, path, nil); rr.Code != http.StatusOK {
			t.Fatalf("public path %s: status = %d, want 200", path, rr.Code)
		}
	}
}

func TestGuard_UnguardedPathPasses(t *testing.T) {
	for _, path := range []string{"/", "/ref/ABC123", "/enroll/1", "/dashboards"} {
		if rr := fire(t, path, nil); rr.Code != http.StatusOK {
			t.Fatalf("path %s: status = %d, want 200", path, rr.Code)
		}
	}
}
