// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// This is a lightweight persistence layer used in development/testing,
// or when durability is not required.
//
// Characteristics:
//   - Sessions, scores, and prefs in maps keyed by owner.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/daily"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/game"
)

type taggedSession struct {
	key daily.ContentKey
	st  game.State
}

type memory struct {
	mu       sync.RWMutex
	sessions map[string]taggedSession                    // keyed by owner
	scores   map[string]map[string]game.DailyScoreRecord // owner -> day -> record
	prefs    map[string]map[string]string                // owner -> key -> value
	cacheKey daily.ContentKey
	cache    []byte
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		sessions: make(map[string]taggedSession),
		scores:   make(map[string]map[string]game.DailyScoreRecord),
		prefs:    make(map[string]map[string]string),
	}
}

func (m *memory) SaveSession(_ context.Context, owner string, key daily.ContentKey, st game.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st.Guesses = append([]game.Guess{}, st.Guesses...)
	m.sessions[owner] = taggedSession{key: key, st: st}
	return nil
}

func (m *memory) LoadSession(_ context.Context, owner string, key daily.ContentKey) (*game.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[owner]
	if !ok || s.key != key {
		return nil, nil
	}
	st := s.st
	st.Guesses = append([]game.Guess{}, s.st.Guesses...)
	return &st, nil
}

func (m *memory) DeleteSession(_ context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, owner)
	return nil
}

func (m *memory) RecordScore(_ context.Context, owner string, rec game.DailyScoreRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	days, ok := m.scores[owner]
	if !ok {
		days = make(map[string]game.DailyScoreRecord)
		m.scores[owner] = days
	}
	// First write for a day wins, matching the SQL INSERT OR IGNORE.
	if _, exists := days[rec.Day]; !exists {
		days[rec.Day] = rec
	}
	return nil
}

func (m *memory) History(_ context.Context, owner string) (map[string]game.DailyScoreRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]game.DailyScoreRecord, len(m.scores[owner]))
	for day, rec := range m.scores[owner] {
		out[day] = rec
	}
	return out, nil
}

func (m *memory) Leaderboard(_ context.Context, day string, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []LeaderboardRow
	for owner, days := range m.scores {
		if rec, ok := days[day]; ok {
			rows = append(rows, LeaderboardRow{
				Owner:            owner,
				Score:            rec.Score,
				CompletionTimeMs: rec.CompletionTimeMs,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		if rows[i].CompletionTimeMs != rows[j].CompletionTimeMs {
			return rows[i].CompletionTimeMs < rows[j].CompletionTimeMs
		}
		return rows[i].Owner < rows[j].Owner
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *memory) SetPref(_ context.Context, owner, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kv, ok := m.prefs[owner]
	if !ok {
		kv = make(map[string]string)
		m.prefs[owner] = kv
	}
	kv[key] = value
	return nil
}

func (m *memory) GetPref(_ context.Context, owner, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prefs[owner][key], nil
}

func (m *memory) CacheQuestions(_ context.Context, key daily.ContentKey, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheKey = key
	m.cache = append([]byte{}, data...)
	return nil
}

func (m *memory) CachedQuestions(_ context.Context, key daily.ContentKey) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cacheKey != key || m.cache == nil {
		return nil, nil
	}
	return append([]byte{}, m.cache...), nil
}
