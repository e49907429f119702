// internal/web/password.go
//
// Password-recovery pages: request a reset link, then redeem the token.
//
// Both flows proxy to the backend.  The forgot form answers identically
// whether or not the address exists, so the page cannot be used to probe
// for accounts.

package web

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type forgotPage struct {
	Title   string
	Email   string
	Error   string
	Sent    bool
	Refresh int
	Target  string
}

type resetPage struct {
	Title   string
	Token   string
	Error   string
	Done    bool
	Refresh int
	Target  string
}

/*──────────────────────────── forgot password ──────────────────────────────*/

func (h *Handler) handleForgotGET(w http.ResponseWriter, r *http.Request) {
	h.render(w, "forgot", forgotPage{Title: "Reset your password"})
}

func (h *Handler) handleForgotPOST(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	email := strings.TrimSpace(r.PostFormValue("email"))

	page := forgotPage{Title: "Reset your password", Email: email}

	if msg := checkEmail(email); msg != "" {
		page.Error = msg
		h.render(w, "forgot", page)
		return
	}

	if err := h.API.ForgotPassword(r.Context(), email); err != nil {
		// Deliberately the same confirmation: no account probing, and a
		// transient backend hiccup should not strand the visitor.
		zap.S().Warnw("forgot password call failed", "err", err)
	}
	page.Sent = true
	h.render(w, "forgot", page)
}

/*───────────────────────────── reset password ──────────────────────────────*/

func (h *Handler) handleResetGET(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	page := resetPage{Title: "Choose a new password", Token: token}
	if token == "" {
		page.Error = "This reset link is incomplete.  Please use the link from your email."
	}
	h.render(w, "reset", page)
}

func (h *Handler) handleResetPOST(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	token := r.PostFormValue("token")
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirm")

	page := resetPage{Title: "Choose a new password", Token: token}

	if token == "" {
		page.Error = "This reset link is incomplete.  Please use the link from your email."
		h.render(w, "reset", page)
		return
	}
	if msg := checkNewPassword(password, confirm); msg != "" {
		page.Error = msg
		h.render(w, "reset", page)
		return
	}

	if err := h.API.ResetPassword(r.Context(), token, password); err != nil {
		zap.S().Infow("password reset rejected", "err", err)
		page.Error = "That reset link is invalid or has expired.  Request a new one below."
		h.render(w, "reset", page)
		return
	}

	page.Done = true
	h.render(w, "reset", page)
}
