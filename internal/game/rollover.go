// internal/game/rollover.go
//
// Day rollover detection for long-lived processes. A session must never
// span two calendar days, so a periodic check runs alongside an
// exact-midnight-aligned one; if the midnight trigger is missed (process
// suspension, clock jump), the periodic check self-corrects within one
// polling interval.

package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/daily"
)

// DefaultRolloverPoll matches the original one-minute cache check.
const DefaultRolloverPoll = time.Minute

// WatchRollover invokes onChange with the new day key whenever the
// calendar day changes. It blocks until ctx is cancelled; run it in its
// own goroutine.
func WatchRollover(ctx context.Context, poll time.Duration, now func() time.Time, onChange func(newDay string)) {
	if now == nil {
		now = time.Now
	}
	if poll <= 0 {
		poll = DefaultRolloverPoll
	}

	current := daily.DateKey(now())
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	untilMidnight := func() time.Duration {
		t := now()
		return daily.NextMidnight(t).Sub(t)
	}
	midnight := time.NewTimer(untilMidnight())
	defer midnight.Stop()

	check := func() {
		day := daily.DateKey(now())
		if day != current {
			log.Info().Str("from", current).Str("to", day).Msg("day rollover")
			current = day
			onChange(day)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		case <-midnight.C:
			check()
			midnight.Reset(untilMidnight())
		}
	}
}
