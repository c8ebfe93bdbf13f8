// internal/store/sqlite.go
//
// SQLite implementation of the Store interface. The session state is a
// JSON blob tagged with its day and content version; a row whose tag
// does not match today's key, or whose JSON no longer parses, reads as
// absent so the caller starts fresh instead of failing.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/daily"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/game"
)

type sqlite struct{ db *sql.DB }

// NewSQLiteStore wraps an opened and migrated *sql.DB.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqlite{db: db}
}

func (s *sqlite) SaveSession(ctx context.Context, owner string, key daily.ContentKey, st game.State) error {
	blob, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO sessions(owner, day, version, state, updated_at)
        VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(owner) DO UPDATE SET
            day=excluded.day, version=excluded.version,
            state=excluded.state, updated_at=CURRENT_TIMESTAMP`,
		owner, key.Day, key.Version, string(blob))
	return err
}

func (s *sqlite) LoadSession(ctx context.Context, owner string, key daily.ContentKey) (*game.State, error) {
	var day, version, blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT day, version, state FROM sessions WHERE owner=?`, owner,
	).Scan(&day, &version, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if (daily.ContentKey{Day: day, Version: version}) != key {
		return nil, nil
	}
	var st game.State
	if err := json.Unmarshal([]byte(blob), &st); err != nil {
		// Corrupt row: treat as absent.
		return nil, nil
	}
	return &st, nil
}

func (s *sqlite) DeleteSession(ctx context.Context, owner string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE owner=?`, owner)
	return err
}

func (s *sqlite) RecordScore(ctx context.Context, owner string, rec game.DailyScoreRecord) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO daily_scores(owner, day, score, completion_ms)
        VALUES (?, ?, ?, ?)`,
		owner, rec.Day, rec.Score, rec.CompletionTimeMs)
	return err
}

func (s *sqlite) History(ctx context.Context, owner string) (map[string]game.DailyScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT day, score, completion_ms FROM daily_scores WHERE owner=?`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]game.DailyScoreRecord)
	for rows.Next() {
		var rec game.DailyScoreRecord
		if err := rows.Scan(&rec.Day, &rec.Score, &rec.CompletionTimeMs); err != nil {
			return nil, err
		}
		out[rec.Day] = rec
	}
	return out, rows.Err()
}

func (s *sqlite) Leaderboard(ctx context.Context, day string, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT owner, score, completion_ms
        FROM daily_scores
        WHERE day=?
        ORDER BY score DESC, completion_ms ASC, created_at ASC
        LIMIT ?`, day, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LeaderboardRow, 0, limit)
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.Owner, &r.Score, &r.CompletionTimeMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqlite) SetPref(ctx context.Context, owner, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO prefs(owner, key, value)
        VALUES (?, ?, ?)
        ON CONFLICT(owner, key) DO UPDATE SET value=excluded.value`,
		owner, key, value)
	return err
}

func (s *sqlite) GetPref(ctx context.Context, owner, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM prefs WHERE owner=? AND key=?`, owner, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (s *sqlite) CacheQuestions(ctx context.Context, key daily.ContentKey, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO question_cache(id, day, version, data)
        VALUES (1, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            day=excluded.day, version=excluded.version, data=excluded.data`,
		key.Day, key.Version, data)
	return err
}

func (s *sqlite) CachedQuestions(ctx context.Context, key daily.ContentKey) ([]byte, error) {
	var day, version string
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT day, version, data FROM question_cache WHERE id=1`,
	).Scan(&day, &version, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if (daily.ContentKey{Day: day, Version: version}) != key {
		return nil, nil
	}
	return data, nil
}
