// internal/game/engine.go
//
// Round state machine for one day's quiz.
// Responsibilities:
//   - Drive the per-question lifecycle:
//       AwaitingGuess → Locked(submitted|timed out) → Revealed → next / Finished.
//   - Accept pin placement (replacing any earlier pending pin) while awaiting.
//   - Score locked answers and accumulate total score and game time.
//   - Persist the full session synchronously after every transition.
//   - Tell the injected MapView what to display; never render anything.
//
// Notes:
//   - A question is answered at most once. The countdown is cancelled on
//     every lock/advance/finish so a stale expiry can never fire against
//     the wrong question.
//   - Once the fifth answer locks, the session is completed and the daily
//     score record written; the final reveal and summary are display-only.

package game

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/geo"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/questions"
)

// Persister writes session state and daily score records. Implementations
// are expected to write synchronously; errors are logged and play continues.
type Persister interface {
	SaveSession(st State) error
	RecordScore(rec DailyScoreRecord) error
}

// Result describes one locked answer, for display.
type Result struct {
	QuestionIndex int        `json:"questionIndex"`
	TimedOut      bool       `json:"timedOut"`
	Guess         *geo.Point `json:"guess,omitempty"`
	Answer        geo.Point  `json:"answer"`
	DistanceKm    *float64   `json:"distanceKm,omitempty"`
	Points        int        `json:"points"`
	Name          string     `json:"name"`
	Info          string     `json:"info"`
	Image         string     `json:"image"`
}

// Config wires a Round. State and Questions are required; the rest
// default to wall clock, no-op view, and no-op persistence.
type Config struct {
	State     *State
	Questions []questions.Question
	Countdown Countdown
	View      MapView
	Persist   Persister
	Now       func() time.Time
}

// Round owns one day's session. All mutation happens inside its lock;
// callers interact through transition methods only.
type Round struct {
	mu         sync.Mutex
	st         *State
	qs         []questions.Question
	phase      Phase
	lockReason LockReason
	pending    *geo.Point
	lastResult *Result
	qStart     time.Time
	countdown  Countdown
	view       MapView
	persist    Persister
	now        func() time.Time
}

type nopPersister struct{}

func (nopPersister) SaveSession(State) error            { return nil }
func (nopPersister) RecordScore(DailyScoreRecord) error { return nil }

// NewRound constructs a Round over a validated session state. Call Begin
// to activate it.
func NewRound(cfg Config) *Round {
	r := &Round{
		st:        cfg.State,
		qs:        cfg.Questions,
		countdown: cfg.Countdown,
		view:      cfg.View,
		persist:   cfg.Persist,
		now:       cfg.Now,
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.view == nil {
		r.view = NopMapView{}
	}
	if r.persist == nil {
		r.persist = nopPersister{}
	}
	if r.countdown == nil {
		r.countdown = NewCountdown(r.now)
	}
	return r
}

// Begin activates the session: a completed one becomes read-only results,
// anything else resumes (or starts) the current question with the stored
// remaining budget.
func (r *Round) Begin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.st.Completed {
		r.phase = PhaseFinished
		return
	}
	if r.st.QuizStartMs == 0 {
		r.st.QuizStartMs = r.now().UnixMilli()
	}
	r.phase = PhaseAwaitingGuess
	r.startQuestionLocked(time.Duration(r.st.RemainingMs) * time.Millisecond)
	r.persistLocked()
}

// PlacePin records (or replaces) the pending coordinate for the active
// question. This is the map click entry point; revisions are unlimited
// until the question locks.
func (r *Round) PlacePin(p geo.Point) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseFinished {
		return ErrFinished
	}
	if r.phase != PhaseAwaitingGuess {
		return ErrNotGuessing
	}
	r.pending = &p
	r.view.PlaceMarker(p, MarkerGuess)
	return nil
}

// Submit locks the pending coordinate as the final answer for the active
// question. Without a pending pin it returns ErrNoPin and changes nothing.
func (r *Round) Submit() (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseFinished {
		return Result{}, ErrFinished
	}
	if r.phase != PhaseAwaitingGuess {
		return Result{}, ErrNotGuessing
	}
	if r.pending == nil {
		return Result{}, ErrNoPin
	}
	return r.lockLocked(LockSubmitted), nil
}

// expire is the countdown callback. Whatever pin is pending (possibly
// none) becomes the final answer.
func (r *Round) expire() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseAwaitingGuess {
		return
	}
	r.lockLocked(LockTimedOut)
}

// Advance moves past a revealed answer: to the next question, or to the
// finished summary after the last one.
func (r *Round) Advance() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.phase {
	case PhaseFinished:
		return ErrFinished
	case PhaseLocked, PhaseRevealed:
	default:
		return ErrNotGuessing
	}
	r.view.RemoveAllOverlays()
	r.pending = nil
	r.lastResult = nil
	if r.st.Completed {
		r.countdown.Cancel()
		r.phase = PhaseFinished
		return nil
	}
	r.phase = PhaseAwaitingGuess
	r.startQuestionLocked(RoundBudget)
	r.persistLocked()
	return nil
}

// lockLocked records, scores, and reveals the active question. The
// countdown is cancelled first so a late expiry cannot double-fire.
func (r *Round) lockLocked(reason LockReason) Result {
	r.countdown.Cancel()

	idx := r.st.CurrentQuestion
	q := r.qs[idx]

	elapsed := r.now().Sub(r.qStart)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > RoundBudget {
		elapsed = RoundBudget
	}
	r.st.TotalGameMs += elapsed.Milliseconds()

	r.st.Guesses = append(r.st.Guesses, Guess{QuestionIndex: idx, Coordinate: r.pending})

	res := Result{
		QuestionIndex: idx,
		TimedOut:      reason == LockTimedOut,
		Guess:         r.pending,
		Answer:        q.Answer,
		Name:          q.Name,
		Info:          q.Info,
		Image:         q.Image,
	}
	if r.pending != nil {
		d := geo.DistanceKm(*r.pending, q.Answer)
		res.DistanceKm = &d
		res.Points = geo.Score(d)
	}
	r.st.TotalScore += res.Points
	r.st.CurrentQuestion = idx + 1
	r.st.RemainingMs = RoundBudget.Milliseconds()

	if len(r.st.Guesses) == QuestionsPerDay {
		r.st.Completed = true
		r.st.RemainingMs = 0
	}

	r.phase = PhaseLocked
	r.lockReason = reason
	r.persistLocked()

	if r.st.Completed {
		rec := DailyScoreRecord{
			Day:              r.st.DayKey,
			Score:            r.st.TotalScore,
			CompletionTimeMs: cappedGameTime(r.st.TotalGameMs),
		}
		if err := r.persist.RecordScore(rec); err != nil {
			log.Warn().Err(err).Str("day", rec.Day).Msg("record daily score")
		}
	}

	r.revealLocked(res)
	r.lastResult = &res
	return res
}

// revealLocked shows the outcome on the map and enters PhaseRevealed.
func (r *Round) revealLocked(res Result) {
	r.view.PlaceMarker(res.Answer, MarkerCorrect)
	if res.Guess != nil {
		r.view.DrawConnector(*res.Guess, res.Answer)
		r.view.FitView(geo.BoundsOf(*res.Guess, res.Answer))
	} else {
		r.view.FitView(geo.BoundsOf(res.Answer))
	}
	r.phase = PhaseRevealed
}

// startQuestionLocked arms the countdown for the current question. The
// question start is backdated by any already-consumed budget so elapsed
// accounting and the countdown agree after a resume.
func (r *Round) startQuestionLocked(budget time.Duration) {
	if budget < 0 || budget > RoundBudget {
		budget = RoundBudget
	}
	r.st.RemainingMs = budget.Milliseconds()
	r.qStart = r.now().Add(budget - RoundBudget)
	r.countdown.Start(budget, r.expire)
}

func (r *Round) persistLocked() {
	if err := r.persist.SaveSession(*r.st); err != nil {
		log.Warn().Err(err).Str("day", r.st.DayKey).Msg("save session state")
	}
}

func cappedGameTime(ms int64) int64 {
	if ms > MaxGameTime.Milliseconds() {
		return MaxGameTime.Milliseconds()
	}
	return ms
}

// Phase reports the observable lifecycle state.
func (r *Round) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// State returns a copy of the persisted session.
func (r *Round) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := *r.st
	st.Guesses = append([]Guess{}, r.st.Guesses...)
	return st
}

// Pending returns the unsubmitted pin, if any.
func (r *Round) Pending() *geo.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return nil
	}
	p := *r.pending
	return &p
}

// LastResult returns the most recent locked answer, nil outside reveal.
func (r *Round) LastResult() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastResult == nil {
		return nil
	}
	res := *r.lastResult
	return &res
}

// RemainingMs reports the live countdown in milliseconds.
func (r *Round) RemainingMs() int64 {
	return r.countdown.Remaining().Milliseconds()
}
