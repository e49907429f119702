// internal/sidecall/sidecall.go
//
// Best-effort background calls.
//
// Context
//   Several flows fire remote calls whose outcome must not block or fail the
//   critical path: remote logout invalidation, referral click recording, and
//   the local click journal.  Wrapping them in sidecall.Go keeps their error
//   channel separate (logged, never surfaced) and guarantees a panic in a
//   side call cannot take the request down with it.
//
// Style
//   Two-space sentence spacing, Oxford comma, concise inline notes.
//
//------------------------------------------------------------------------------

package sidecall

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Timeout bounds every side call; a hung backend must not leak goroutines.
const Timeout = 10 * time.Second

// Go runs fn on its own goroutine with a bounded context.  Errors and panics
// are logged under the given name and otherwise swallowed.
func Go(name string, fn func(ctx context.Context) error) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				zap.S().Errorw("side call panic", "call", name, "panic", rec)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), Timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			zap.S().Warnw("side call failed", "call", name, "err", err)
			return
		}
		zap.S().Debugw("side call done", "call", name)
	}()
}
