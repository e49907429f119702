// internal/web/login.go
//
// Login and logout handlers for both principal types.
//
/*
Context
--------
Two parallel flows share this file: the public login at /login (students
and affiliates) and the back-office login at /admin-login.  Both follow
the same shape:

  GET   render the form (with any ?error= reason from the guard),
  POST  validate input locally → Manager.Login → redirect to the
        requested destination or the role home, or re-render inline.

Logout posts clear the session via the Manager, whose remote invalidation
runs as a side call, and land back on the matching login page.

Notes
-----
  • The ?redirect= destination is only honored when it is a local path;
    anything else falls back to the role home (open-redirect hygiene).
  • Oxford commas, two spaces after periods.
*/
package web

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/digitalmadrasa/edge/internal/backend"
	"github.com/digitalmadrasa/edge/internal/guard"
)

// Section home paths, used after login when no redirect was requested.
const (
	dashboardHome = "/dashboard"
	affiliateHome = "/affiliate"
	adminHome     = "/admin"
)

// loginPage feeds the "login" template.
type loginPage struct {
	Title    string
	Action   string
	Redirect string
	Email    string
	Error    string
	IsAdmin  bool
	Refresh  int
	Target   string
}

// reasonText maps guard denial codes to inline wording.
func reasonText(code string) string {
	switch code {
	case guard.ReasonDashboardDenied:
		return "Your account does not have dashboard access."
	case guard.ReasonAffiliateDenied:
		return "Your account is not part of the affiliate program."
	case "":
		return ""
	default:
		return "Please sign in to continue."
	}
}

/*────────────────────────────── user login ─────────────────────────────────*/

func (h *Handler) handleLoginGET(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login", loginPage{
		Title:    "Sign in",
		Action:   guard.LoginPath,
		Redirect: r.URL.Query().Get("redirect"),
		Error:    reasonText(r.URL.Query().Get("error")),
	})
}

func (h *Handler) handleLoginPOST(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	redirect := r.PostFormValue("redirect")

	page := loginPage{Title: "Sign in", Action: guard.LoginPath, Redirect: redirect, Email: email}

	if msg := checkCredentials(email, password); msg != "" {
		page.Error = msg
		h.render(w, "login", page)
		return
	}

	rec, err := h.Users.Login(r.Context(), w, email, password)
	if err != nil {
		zap.S().Infow("user login failed", "email", email)
		page.Error = backend.UserMessage(err)
		h.render(w, "login", page)
		return
	}

	home := dashboardHome
	if !rec.IsStudent() && rec.IsAffiliate() {
		home = affiliateHome
	}
	http.Redirect(w, r, safeRedirect(redirect, home), http.StatusSeeOther)
}

/*───────────────────────────── admin login ─────────────────────────────────*/

func (h *Handler) handleAdminLoginGET(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login", loginPage{
		Title:    "Back office",
		Action:   guard.AdminLoginPath,
		Redirect: r.URL.Query().Get("redirect"),
		IsAdmin:  true,
	})
}

func (h *Handler) handleAdminLoginPOST(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	redirect := r.PostFormValue("redirect")

	page := loginPage{Title: "Back office", Action: guard.AdminLoginPath,
		Redirect: redirect, Email: email, IsAdmin: true}

	if msg := checkCredentials(email, password); msg != "" {
		page.Error = msg
		h.render(w, "login", page)
		return
	}

	if _, err := h.Admins.Login(r.Context(), w, email, password); err != nil {
		zap.S().Infow("admin login failed", "email", email)
		page.Error = backend.UserMessage(err)
		h.render(w, "login", page)
		return
	}

	http.Redirect(w, r, safeRedirect(redirect, adminHome), http.StatusSeeOther)
}

/*──────────────────────────────── logout ───────────────────────────────────*/

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.Users.Logout(r.Context(), w, r)
	http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
}

func (h *Handler) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	h.Admins.Logout(r.Context(), w, r)
	http.Redirect(w, r, guard.AdminLoginPath, http.StatusSeeOther)
}

/*──────────────────────────────── helpers ──────────────────────────────────*/

// safeRedirect keeps navigation on this origin: a destination must be a
// local absolute path ("/x", not "//host" or "https://…") or the fallback
// wins.
func safeRedirect(dest, fallback string) string {
	if strings.HasPrefix(dest, "/") && !strings.HasPrefix(dest, "//") {
		return dest
	}
	return fallback
}
