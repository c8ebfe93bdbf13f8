// internal/store/store.go
//
// Persistence interfaces for the daily game. Implementations may be
// backed by memory (development, tests) or SQLite (production).
//
// Stored records are tagged with a ContentKey (day + content version);
// loads with a different key report the record as absent. Corrupt rows
// are also reported as absent, never as errors the caller must handle.

package store

import (
	"context"

	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/daily"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/game"
)

// DefaultLeaderboardLimit is used when a caller passes limit <= 0.
const DefaultLeaderboardLimit = 20

// LeaderboardRow is one entry of a day's score ranking.
type LeaderboardRow struct {
	Owner            string `json:"owner"`
	Score            int    `json:"score"`
	CompletionTimeMs int64  `json:"completionTimeMs"`
}

// Sessions persists one session state per owner. An owner is a user ID
// or an anonymous cookie ID.
type Sessions interface {
	// SaveSession writes the owner's session tagged with key.
	SaveSession(ctx context.Context, owner string, key daily.ContentKey, st game.State) error

	// LoadSession returns the owner's session if it exists and its tag
	// matches key. Absent, stale, or unparseable rows return (nil, nil).
	LoadSession(ctx context.Context, owner string, key daily.ContentKey) (*game.State, error)

	// DeleteSession removes the owner's session. Deleting a missing
	// session is not an error.
	DeleteSession(ctx context.Context, owner string) error
}

// Scores keeps the per-day score history. At most one record per owner
// per day; later writes for the same day are ignored.
type Scores interface {
	RecordScore(ctx context.Context, owner string, rec game.DailyScoreRecord) error

	// History returns the owner's records keyed by day string.
	History(ctx context.Context, owner string) (map[string]game.DailyScoreRecord, error)

	// Leaderboard ranks a day's records by score, ties broken by faster
	// completion. limit <= 0 selects a default.
	Leaderboard(ctx context.Context, day string, limit int) ([]LeaderboardRow, error)
}

// Prefs is small per-owner key-value storage for display preferences
// and bookkeeping ("theme", "lastPlayed").
type Prefs interface {
	SetPref(ctx context.Context, owner, key, value string) error

	// GetPref returns "" for an absent key.
	GetPref(ctx context.Context, owner, key string) (string, error)
}

// QuestionCache caches the serialized daily question set so a restart
// does not recompute the selection. One entry; a mismatched key reads
// as absent.
type QuestionCache interface {
	CacheQuestions(ctx context.Context, key daily.ContentKey, data []byte) error
	CachedQuestions(ctx context.Context, key daily.ContentKey) ([]byte, error)
}

// Store is the full persistence surface the server wires up.
type Store interface {
	Sessions
	Scores
	Prefs
	QuestionCache
}
