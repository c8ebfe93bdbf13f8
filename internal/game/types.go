// internal/game/types.go
//
// Core type definitions for the daily round engine.
// Defines:
//   - Phase: lifecycle of the current question (awaiting/locked/revealed/finished).
//   - Guess: one recorded answer, with or without a coordinate.
//   - State: the full persisted session for one calendar day.
//   - DailyScoreRecord: the per-day historical score entry.

package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/geo"
)

const (
	// QuestionsPerDay is the length of a daily question set.
	QuestionsPerDay = 5

	// RoundBudget is the countdown allotted to each question.
	RoundBudget = 120 * time.Second

	// MaxGameTime caps the recorded completion time, so a stalled or
	// backgrounded session cannot inflate it.
	MaxGameTime = 10 * time.Minute
)

// Phase is the observable lifecycle state of the active question.
type Phase string

const (
	// PhaseAwaitingGuess accepts pin placement and submission; the
	// countdown is running.
	PhaseAwaitingGuess Phase = "awaiting_guess"
	// PhaseLocked means the answer is recorded and scored; no countdown.
	PhaseLocked Phase = "locked"
	// PhaseRevealed means the correct location is on display; the engine
	// waits for an explicit advance.
	PhaseRevealed Phase = "revealed"
	// PhaseFinished is terminal for the day.
	PhaseFinished Phase = "finished"
)

// LockReason records how the active question got locked.
type LockReason string

const (
	LockSubmitted LockReason = "submitted"
	LockTimedOut  LockReason = "timed_out"
)

var (
	// ErrNoPin is returned when the player submits without a pending
	// coordinate. No state changes; the caller prompts for a marker.
	ErrNoPin = errors.New("no marker placed")
	// ErrNotGuessing is returned for guess input outside PhaseAwaitingGuess,
	// which protects an already-answered question from re-scoring.
	ErrNotGuessing = errors.New("question is not accepting guesses")
	// ErrFinished is returned for any transition attempted after the day's
	// game completed.
	ErrFinished = errors.New("game already finished today")
)

// Guess is one recorded answer. A nil Coordinate means the countdown
// expired with no marker placed.
type Guess struct {
	QuestionIndex int        `json:"questionIndex"`
	Coordinate    *geo.Point `json:"coordinate,omitempty"`
}

// State is the persisted session for one calendar day. All mutation goes
// through Round transition methods; every mutation is persisted in full,
// synchronously, so an abrupt shutdown loses at most an unsubmitted pin.
type State struct {
	DayKey          string  `json:"dayKey"`
	CurrentQuestion int     `json:"currentQuestion"`
	Guesses         []Guess `json:"guesses"`
	TotalScore      int     `json:"totalScore"`
	QuizStartMs     int64   `json:"quizStartMs,omitempty"`
	RemainingMs     int64   `json:"remainingMs"`
	TotalGameMs     int64   `json:"totalGameMs"`
	Completed       bool    `json:"completed"`
}

// Validate checks the session invariants. A failing state is treated as
// corrupt by the persistence layer and replaced with a fresh one.
func (s *State) Validate() error {
	if s.DayKey == "" {
		return errors.New("missing day key")
	}
	if len(s.Guesses) > QuestionsPerDay {
		return fmt.Errorf("too many guesses: %d", len(s.Guesses))
	}
	if s.CurrentQuestion < 0 || s.CurrentQuestion > QuestionsPerDay {
		return fmt.Errorf("question index out of range: %d", s.CurrentQuestion)
	}
	if s.Completed {
		if s.CurrentQuestion != QuestionsPerDay || len(s.Guesses) != QuestionsPerDay {
			return errors.New("completed session with unanswered questions")
		}
	} else {
		if len(s.Guesses) == QuestionsPerDay {
			return errors.New("all questions answered but not marked completed")
		}
		if s.CurrentQuestion != len(s.Guesses) {
			return fmt.Errorf("question index %d does not match %d recorded guesses",
				s.CurrentQuestion, len(s.Guesses))
		}
	}
	if s.RemainingMs < 0 || s.RemainingMs > RoundBudget.Milliseconds() {
		return fmt.Errorf("remaining time out of range: %d", s.RemainingMs)
	}
	return nil
}

// Fresh returns a new session for the given day key: first question,
// no guesses, zero score, full countdown budget.
func Fresh(dayKey string) *State {
	return &State{
		DayKey:      dayKey,
		Guesses:     []Guess{},
		RemainingMs: RoundBudget.Milliseconds(),
	}
}

// DailyScoreRecord is one entry of the accumulating per-day score history.
type DailyScoreRecord struct {
	Day              string `json:"day"`
	Score            int    `json:"score"`
	CompletionTimeMs int64  `json:"completionTime"`
}
