// internal/web/pages.go
//
// Guarded section shells and the landing page.
//
// Context
// -------
// The guard middleware already filtered these requests on cookies alone;
// the handlers here are the second, client-equivalent layer: they hydrate
// the session against the backend (cached-principal fallback, 401 clears),
// and bounce anyone whose session no longer holds up.  Cookie desync
// always resolves toward "logged out".

package web

import (
	"net/http"
	"net/url"

	"github.com/digitalmadrasa/edge/internal/guard"
)

type sectionPage struct {
	Title        string
	Name         string
	LogoutAction string
	Refresh      int
	Target       string
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, "home", sectionPage{Title: "Digital Madrasa"})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := h.Users.Hydrate(r.Context(), w, r)
	if !sess.Authenticated() || !sess.Record.IsStudent() {
		toLogin(w, r, guard.LoginPath, guard.ReasonDashboardDenied)
		return
	}
	h.render(w, "section", sectionPage{
		Title:        "Dashboard",
		Name:         sess.Record.User.FullName,
		LogoutAction: "/logout",
	})
}

func (h *Handler) handleAffiliate(w http.ResponseWriter, r *http.Request) {
	sess := h.Users.Hydrate(r.Context(), w, r)
	if !sess.Authenticated() || !sess.Record.IsAffiliate() {
		toLogin(w, r, guard.LoginPath, guard.ReasonAffiliateDenied)
		return
	}
	h.render(w, "section", sectionPage{
		Title:        "Affiliate portal",
		Name:         sess.Record.User.FullName,
		LogoutAction: "/logout",
	})
}

func (h *Handler) handleAdmin(w http.ResponseWriter, r *http.Request) {
	sess := h.Admins.Hydrate(r.Context(), w, r)
	if !sess.Authenticated() || sess.Record.Admin == nil {
		toLogin(w, r, guard.AdminLoginPath, "")
		return
	}
	h.render(w, "section", sectionPage{
		Title:        "Back office",
		Name:         sess.Record.Admin.Name,
		LogoutAction: "/admin-logout",
	})
}

// toLogin mirrors the guard's denial shape so both layers land the visitor
// on the same page with the same context.
func toLogin(w http.ResponseWriter, r *http.Request, loginPath, reason string) {
	q := url.Values{}
	q.Set("redirect", r.URL.Path)
	if reason != "" {
		q.Set("error", reason)
	}
	http.Redirect(w, r, loginPath+"?"+q.Encode(), http.StatusFound)
}
