// internal/web/routes.go
//
// Handler wiring and the route table.
//
// The Handler owns every dependency the pages need; cmd/web constructs one
// and mounts Routes() behind the guard and enrichment middleware.

package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/digitalmadrasa/edge/internal/backend"
	"github.com/digitalmadrasa/edge/internal/referral"
	"github.com/digitalmadrasa/edge/internal/session"
)

// Handler bundles the managers, the backend client, and the referral flow.
type Handler struct {
	Users  *session.Manager
	Admins *session.Manager
	API    *backend.Client
	Flow   *referral.Flow

	// Journal feeds the back-office click view; nil disables it.
	Journal *referral.Journal

	// FallbackDelaySeconds drives the referral interstitial's meta refresh.
	FallbackDelaySeconds int
}

// Routes returns the full route table.  The guard middleware wraps this
// router one level up, so every path here is already prefix-filtered.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.handleHome)

	// Public auth surface.
	r.Get("/login", h.handleLoginGET)
	r.Post("/login", h.handleLoginPOST)
	r.Get("/admin-login", h.handleAdminLoginGET)
	r.Post("/admin-login", h.handleAdminLoginPOST)
	r.Post("/logout", h.handleLogout)
	r.Post("/admin-logout", h.handleAdminLogout)

	// Password recovery.
	r.Get("/forgot-password", h.handleForgotGET)
	r.Post("/forgot-password", h.handleForgotPOST)
	r.Get("/reset-password", h.handleResetGET)
	r.Post("/reset-password", h.handleResetPOST)

	// Referral entry.
	r.Get("/ref", h.handleReferral)
	r.Get("/ref/{code}", h.handleReferral)

	// Guarded sections.  The catch-all variants keep deep links inside a
	// section on the section shell.
	r.Get("/dashboard", h.handleDashboard)
	r.Get("/dashboard/*", h.handleDashboard)
	r.Get("/affiliate", h.handleAffiliate)
	r.Get("/affiliate/*", h.handleAffiliate)
	r.Get("/admin", h.handleAdmin)
	r.Get("/admin/referral/{code}", h.handleReferralClicks)
	r.Get("/admin/*", h.handleAdmin)

	return r
}

// render executes one named template.  A template failure is a programmer
// error; it is logged and answered with a bare 500 so no half-page leaks.
func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		zap.S().Errorw("template render failed", "template", name, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
