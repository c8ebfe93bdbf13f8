// internal/questions/questions.go
//
// Question pool management for the daily quiz.
//
// Responsibilities:
//   - Load the fixed, ordered pool of 35 questions from the embedded JSON.
//   - Load the parallel pool of per-group image credit sets.
//   - Expose the content version used for cache invalidation.
//
// The pool is conceptually partitioned into 7 chronological groups of 5;
// the daily selector picks one group per calendar day. Question IDs are the
// ordinal position in the pool (0-based).
//
// Initialization is lazy and runs once (sync.Once), reading from the
// embedded assets.

package questions

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Emrethegenius/cartoobscura/apps/go-server/assets"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/geo"
)

// ContentVersion tags every persisted daily selection and session.
// Bumping it forces all clients to discard cached state on next load.
const ContentVersion = "v7"

// GroupSize is the number of questions served per calendar day.
const GroupSize = 5

// Question is one immutable trivia entry from the pool.
type Question struct {
	ID     int       `json:"id"`
	Prompt string    `json:"question"`
	Answer geo.Point `json:"-"`
	Name   string    `json:"name"`
	Image  string    `json:"image"`
	Info   string    `json:"info"`
}

// questionJSON matches the on-disk shape, where the answer is a
// [lat, lng] coordinate array.
type questionJSON struct {
	Prompt string     `json:"question"`
	Answer [2]float64 `json:"answer"`
	Name   string     `json:"name"`
	Image  string     `json:"image"`
	Info   string     `json:"info"`
}

// MarshalJSON emits the coordinate-array convention used by the pool file.
func (q Question) MarshalJSON() ([]byte, error) {
	return json.Marshal(questionJSON{
		Prompt: q.Prompt,
		Answer: [2]float64{q.Answer.Lat, q.Answer.Lng},
		Name:   q.Name,
		Image:  q.Image,
		Info:   q.Info,
	})
}

// UnmarshalJSON accepts the coordinate-array convention.
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.Prompt = raw.Prompt
	q.Answer = geo.Point{Lat: raw.Answer[0], Lng: raw.Answer[1]}
	q.Name = raw.Name
	q.Image = raw.Image
	q.Info = raw.Info
	return nil
}

var (
	initOnce sync.Once
	pool     []Question
	credits  [][]string
	loadErr  error
)

// Init loads the question pool and credit pool from the embedded assets.
// Runs once; subsequent calls return the first result.
func Init() error {
	initOnce.Do(func() {
		pool, credits, loadErr = loadEmbedded()
	})
	return loadErr
}

func loadEmbedded() ([]Question, [][]string, error) {
	qb, err := assets.QuestionsJSON()
	if err != nil {
		return nil, nil, fmt.Errorf("read questions: %w", err)
	}
	var qs []Question
	if err := json.Unmarshal(qb, &qs); err != nil {
		return nil, nil, fmt.Errorf("parse questions: %w", err)
	}
	for i := range qs {
		qs[i].ID = i
	}
	if len(qs) == 0 || len(qs)%GroupSize != 0 {
		return nil, nil, errors.New("questions: pool size must be a positive multiple of 5")
	}

	cb, err := assets.CreditsJSON()
	if err != nil {
		return nil, nil, fmt.Errorf("read credits: %w", err)
	}
	var cr [][]string
	if err := json.Unmarshal(cb, &cr); err != nil {
		return nil, nil, fmt.Errorf("parse credits: %w", err)
	}
	if len(cr) != len(qs)/GroupSize {
		return nil, nil, errors.New("questions: credit pool does not match question groups")
	}
	return qs, cr, nil
}

// Pool returns the full ordered question pool.
func Pool() []Question {
	_ = Init()
	return pool
}

// Groups returns the number of contiguous 5-question groups in the pool.
func Groups() int {
	_ = Init()
	return len(pool) / GroupSize
}

// Group returns the 5 questions of group i (0-based, in pool order).
func Group(i int) []Question {
	_ = Init()
	if i < 0 || i >= Groups() {
		return nil
	}
	return pool[i*GroupSize : i*GroupSize+GroupSize]
}

// Credits returns the image credit set for group i.
func Credits(i int) []string {
	_ = Init()
	if i < 0 || i >= len(credits) {
		return nil
	}
	return credits[i]
}
