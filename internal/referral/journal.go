// internal/referral/journal.go
//
// Local click journal.
//
// Context
// -------
// The backend's click endpoint is fire-and-forget, so a dropped request is
// a silently lost commission.  The journal keeps a local copy of every
// click event in MySQL for later reconciliation against the backend's
// commission periods.  Schema:
//
//	referral_click (
//	    id          CHAR(36) PRIMARY KEY,   -- event UUID
//	    code        VARCHAR(64) NOT NULL,
//	    country_iso CHAR(2),
//	    city        VARCHAR(64),
//	    browser     VARCHAR(32),
//	    device      VARCHAR(16),
//	    bot         TINYINT(1) NOT NULL DEFAULT 0,
//	    created_at  DATETIME NOT NULL
//	)
//
// Writes happen only inside side calls; the journal is never on a request's
// critical path.

package referral

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// Click is one journal row.
type Click struct {
	ID         string    `db:"id"`
	Code       string    `db:"code"`
	CountryISO string    `db:"country_iso"`
	City       string    `db:"city"`
	Browser    string    `db:"browser"`
	Device     string    `db:"device"`
	Bot        bool      `db:"bot"`
	CreatedAt  time.Time `db:"created_at"`
}

// Journal persists click events through a sqlx pool.
type Journal struct {
	db *sqlx.DB
}

// NewJournal wraps an open pool.
func NewJournal(db *sqlx.DB) *Journal { return &Journal{db: db} }

// Record inserts one click event.  CreatedAt is stamped here when the
// caller left it zero.
func (j *Journal) Record(ctx context.Context, c Click) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	const q = `INSERT INTO referral_click
	        (id, code, country_iso, city, browser, device, bot, created_at)
	        VALUES (:id, :code, :country_iso, :city, :browser, :device, :bot, :created_at)`

	_, err := j.db.NamedExecContext(ctx, q, c)
	return err
}

// RecentByCode returns the newest click events for one code, newest first.
// The affiliate back office uses it to sanity-check attribution.
func (j *Journal) RecentByCode(ctx context.Context, code string, limit int) ([]Click, error) {
	if limit <= 0 {
		limit = 50
	}

	const q = `SELECT id, code, country_iso, city, browser, device, bot, created_at
	             FROM referral_click
	            WHERE code = ?
	            ORDER BY created_at DESC
	            LIMIT ?`

	clicks := make([]Click, 0, limit)
	if err := j.db.SelectContext(ctx, &clicks, q, code, limit); err != nil {
		return nil, err
	}
	return clicks, nil
}
