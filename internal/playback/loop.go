package playback

import (
	"context"
	"time"
)

// TickInterval approximates one display refresh.
const TickInterval = 16 * time.Millisecond

// Run invokes tick at the display rate until tick reports the transport
// stopped or the context is cancelled. The loop owns no transport state: the
// caller's tick closure performs the advance under its own lock, so every
// transport access stays serialized with the caller's other operations.
//
// Callers must cancel any previously armed loop before starting a new one so
// two advance loops never coexist.
func Run(ctx context.Context, tick func(now time.Time) (stopped bool)) {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if tick(now) {
				return
			}
		}
	}
}
