// internal/web/referral.go
//
// Referral entry path: /ref/{code}.
//
// A valid code redirects straight into enrollment with ?ref= attached.
// Invalid codes and verification errors render a transient interstitial
// whose meta refresh performs the single fallback redirect after the
// configured delay; there is no retry and no dead end.

package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type fallbackPage struct {
	Title   string
	Message string
	Refresh int
	Target  string
}

func (h *Handler) handleReferral(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	out := h.Flow.Resolve(r.Context(), r, code)
	if !out.Delayed {
		http.Redirect(w, r, out.Target, http.StatusFound)
		return
	}

	msg := "This referral link is invalid or has expired."
	if out.Failed {
		msg = "We could not check this referral link right now."
	}
	h.render(w, "referral_fallback", fallbackPage{
		Title:   "One moment",
		Message: msg,
		Refresh: h.FallbackDelaySeconds,
		Target:  out.Target,
	})
}
