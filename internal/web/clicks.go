// internal/web/clicks.go
//
// Back-office view over the local click journal: /admin/referral/{code}.
//
// Admins use it to sanity-check attribution for one code against the
// backend's commission reports.  With no journal configured the page still
// renders, just empty; the journal is reconciliation insurance, not a
// dependency.

package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/digitalmadrasa/edge/internal/guard"
	"github.com/digitalmadrasa/edge/internal/referral"
)

type clicksPage struct {
	Title   string
	Code    string
	Clicks  []referral.Click
	Refresh int
	Target  string
}

func (h *Handler) handleReferralClicks(w http.ResponseWriter, r *http.Request) {
	sess := h.Admins.Hydrate(r.Context(), w, r)
	if !sess.Authenticated() || sess.Record.Admin == nil {
		toLogin(w, r, guard.AdminLoginPath, "")
		return
	}

	code := chi.URLParam(r, "code")

	var clicks []referral.Click
	if h.Journal != nil {
		var err error
		if clicks, err = h.Journal.RecentByCode(r.Context(), code, 50); err != nil {
			zap.S().Errorw("click journal read failed", "code", code, "err", err)
			clicks = nil
		}
	}

	h.render(w, "clicks", clicksPage{
		Title:  "Referral clicks",
		Code:   code,
		Clicks: clicks,
	})
}
