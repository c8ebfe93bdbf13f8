// internal/game/recovery.go
//
// Session restoration. Stored state is only trusted when its content key
// matches today's and its invariants hold; every other case degrades to a
// fresh session, never an error the player sees.

package game

import (
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/daily"
)

// Restore decides between resuming a stored session and starting fresh.
//
//   - stored == nil (absent or unparseable), key mismatch (day rollover or
//     content version bump), or invariant failure → fresh state.
//   - stored valid and incomplete → resume; the question index is derived
//     from the number of locked answers, so a stale reload can never rewind
//     to (and re-score) an already-answered question.
//   - stored valid and completed → read-only completed state.
//
// The second return reports whether the stored session was kept.
func Restore(stored *State, storedKey, want daily.ContentKey) (*State, bool) {
	if stored == nil || storedKey != want || stored.DayKey != want.Day {
		return Fresh(want.Day), false
	}

	norm := *stored
	norm.Guesses = append([]Guess{}, stored.Guesses...)

	// Resume invariant: position equals locked answers. Never rewind.
	if !norm.Completed {
		norm.CurrentQuestion = len(norm.Guesses)
	}
	// Clock anomaly tolerance: clamp the stored countdown into budget.
	if norm.RemainingMs < 0 {
		norm.RemainingMs = 0
	}
	if norm.RemainingMs > RoundBudget.Milliseconds() {
		norm.RemainingMs = RoundBudget.Milliseconds()
	}

	if err := norm.Validate(); err != nil {
		return Fresh(want.Day), false
	}
	return &norm, true
}
