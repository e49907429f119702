// internal/guard/guard.go
//
// Route-protection middleware for the guarded prefixes.
//
/*
Context
--------
The guard runs before any handler and decides from cookies alone; it never
performs I/O, so a backend outage cannot take navigation down with it.
Fine-grained token validation belongs to the API layer; here only presence
and the role-flag projection are checked.

Checks run in a fixed order, and the first failing check wins:

  1. public exceptions (login pages, password-recovery flows) pass,
  2. /admin        → admin_token cookie must exist,
  3. /dashboard    → user_token plus user_data with is_student == 1,
  4. /affiliate    → user_token plus user_data with is_affiliate == 1,
  5. anything else passes.

A user_data cookie that fails to parse counts as missing: the guard fails
closed, never open.  Every denial is a redirect that carries the requested
path in ?redirect= so the login flow can return the visitor afterwards;
role denials additionally carry ?error= so the login page can say why.

Notes
-----
  • The dev-mode bypass is a build-tag constant (see bypass.go); a release
    binary cannot flip it at runtime.
  • Oxford commas, two spaces after periods.
*/
package guard

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/digitalmadrasa/edge/internal/metrics"
	"github.com/digitalmadrasa/edge/internal/session"
)

// Route prefixes and their login pages.
const (
	AdminPrefix     = "/admin"
	DashboardPrefix = "/dashboard"
	AffiliatePrefix = "/affiliate"

	AdminLoginPath = "/admin-login"
	LoginPath      = "/login"
)

// Denial reason codes surfaced to the login page.
const (
	ReasonDashboardDenied = "dashboard_access_denied"
	ReasonAffiliateDenied = "affiliate_access_denied"
)

// publicPrefixes always pass, whatever cookies look like.  Checked first so
// /admin-login is reachable even though it shares a prefix letterhead with
// nothing protected.
var publicPrefixes = []string{
	LoginPath,
	AdminLoginPath,
	"/forgot-password",
	"/reset-password",
}

// Protect enforces the prefix rules above around next.
func Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if bypassGuards {
			next.ServeHTTP(w, r)
			return
		}

		path := r.URL.Path

		for _, p := range publicPrefixes {
			if matchesPrefix(path, p) {
				next.ServeHTTP(w, r)
				return
			}
		}

		switch {
		case matchesPrefix(path, AdminPrefix):
			if !hasCookie(r, session.AdminTokenCookie) {
				deny(w, r, "admin", AdminLoginPath, "")
				return
			}

		case matchesPrefix(path, DashboardPrefix):
			if !hasCookie(r, session.UserTokenCookie) {
				deny(w, r, "dashboard", LoginPath, "")
				return
			}
			flags, ok := roleFlags(r)
			if !ok || flags.IsStudent != 1 {
				deny(w, r, "dashboard", LoginPath, ReasonDashboardDenied)
				return
			}

		case matchesPrefix(path, AffiliatePrefix):
			if !hasCookie(r, session.UserTokenCookie) {
				deny(w, r, "affiliate", LoginPath, "")
				return
			}
			flags, ok := roleFlags(r)
			if !ok || flags.IsAffiliate != 1 {
				deny(w, r, "affiliate", LoginPath, ReasonAffiliateDenied)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

/*──────────────────────────────── helpers ──────────────────────────────────*/

// matchesPrefix reports whether path is prefix itself or sits under it.
// "/dashboards" must not match "/dashboard".
func matchesPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func hasCookie(r *http.Request, name string) bool {
	c, err := r.Cookie(name)
	return err == nil && c.Value != ""
}

// roleFlags reads and parses the user_data projection.  Any failure along
// the way (absent cookie, bad escaping, bad JSON) reads as "no flags".
func roleFlags(r *http.Request) (session.RoleFlags, bool) {
	c, err := r.Cookie(session.UserDataCookie)
	if err != nil || c.Value == "" {
		return session.RoleFlags{}, false
	}
	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return session.RoleFlags{}, false
	}
	flags, err := session.ParseRoleFlags(raw)
	if err != nil {
		return session.RoleFlags{}, false
	}
	return flags, true
}

// deny always redirects, never errors: the visitor lands on a login page
// with a way forward, not a dead end.
func deny(w http.ResponseWriter, r *http.Request, area, loginPath, reason string) {
	metrics.GuardDenialsTotal.WithLabelValues(area).Inc()

	q := url.Values{}
	q.Set("redirect", r.URL.Path)
	if reason != "" {
		q.Set("error", reason)
	}
	http.Redirect(w, r, loginPath+"?"+q.Encode(), http.StatusFound)
}
