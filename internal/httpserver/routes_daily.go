// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily quiz.
//   - POST /daily/new         → start, resume, or return the completed day
//   - GET  /daily/state       → current phase + countdown
//   - POST /daily/pin         → place (or move) the pending pin
//   - POST /daily/submit      → lock the pending pin as the final answer
//   - POST /daily/advance     → move past the reveal
//   - GET  /daily/summary     → results, accuracy, share text
//   - GET  /daily/leaderboard → top scores for a date (default today)
//
// Active rounds are held in memory keyed by owner|date and persisted
// through the store on every transition, so a process restart resumes
// from the last locked answer. A rollover watcher purges rounds from
// previous days.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/daily"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/game"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/geo"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/store"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/summary"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    store.Store
	sessions map[string]*game.Round // active rounds keyed by owner|date
	mu       sync.Mutex             // guards sessions
}

// mountDaily registers all /daily routes and starts the rollover watcher.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    s.store,
		sessions: make(map[string]*game.Round),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Get("/state", dd.handleState)
		r.Post("/pin", dd.handlePin)
		r.Post("/submit", dd.handleSubmit)
		r.Post("/advance", dd.handleAdvance)
		r.Get("/summary", dd.handleSummary)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})

	go game.WatchRollover(context.Background(), game.DefaultRolloverPoll, nil, dd.purgeBefore)
}

// purgeBefore drops in-memory rounds from any day other than newDay.
func (d *dailyServer) purgeBefore(newDay string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key := range d.sessions {
		if !strings.HasSuffix(key, "|"+newDay) {
			delete(d.sessions, key)
		}
	}
}

// ownerPersister binds the round's persistence to one owner and day.
type ownerPersister struct {
	store store.Store
	owner string
	key   daily.ContentKey
}

func (p *ownerPersister) SaveSession(st game.State) error {
	return p.store.SaveSession(context.Background(), p.owner, p.key, st)
}
func (p *ownerPersister) RecordScore(rec game.DailyScoreRecord) error {
	return p.store.RecordScore(context.Background(), p.owner, rec)
}

// ownerID returns the authenticated user ID if logged in, otherwise the
// anonymous cookie ID.
func (d *dailyServer) ownerID(w http.ResponseWriter, r *http.Request) string {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return me.ID
	}
	return d.srv.ensureAnonID(w, r)
}

// questionView is the client-facing question shape. The answer, name,
// and info stay server-side until the question is revealed.
type questionView struct {
	Index  int    `json:"index"`
	Prompt string `json:"prompt"`
	Image  string `json:"image"`
}

// stateView is the common response payload describing the round.
type stateView struct {
	Date        string        `json:"date"`
	QuizNumber  int           `json:"quizNumber"`
	Phase       game.Phase    `json:"phase"`
	Question    *questionView `json:"question,omitempty"`
	GuessCount  int           `json:"guessCount"`
	TotalScore  int           `json:"totalScore"`
	RemainingMs int64         `json:"remainingMs"`
	TotalGameMs int64         `json:"totalGameMs"`
	Completed   bool          `json:"completed"`
}

func (d *dailyServer) viewOf(r *game.Round, now time.Time) stateView {
	st := r.State()
	v := stateView{
		Date:        st.DayKey,
		QuizNumber:  daily.QuizNumber(now),
		Phase:       r.Phase(),
		GuessCount:  len(st.Guesses),
		TotalScore:  st.TotalScore,
		RemainingMs: r.RemainingMs(),
		TotalGameMs: st.TotalGameMs,
		Completed:   st.Completed,
	}
	if !st.Completed && st.CurrentQuestion < game.QuestionsPerDay {
		q := daily.QuestionsFor(now)[st.CurrentQuestion]
		v.Question = &questionView{Index: st.CurrentQuestion, Prompt: q.Prompt, Image: q.Image}
	}
	return v
}

// round returns the owner's active round, or nil after writing a 409.
func (d *dailyServer) round(w http.ResponseWriter, r *http.Request) *game.Round {
	uid := d.ownerID(w, r)
	key := uid + "|" + daily.DateKey(time.Now())
	d.mu.Lock()
	rd := d.sessions[key]
	d.mu.Unlock()
	if rd == nil {
		http.Error(w, `{"error":"no_session"}`, http.StatusConflict)
	}
	return rd
}

// -----------------------------------------------------------------------------
// /daily/new

type dailyNewRes struct {
	stateView
	Resumed bool     `json:"resumed"`
	Credits []string `json:"credits"`
}

// handleNew loads or creates the owner's round for today. Stored state
// from another day or content version, or that fails validation, is
// discarded and replaced by a fresh session.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid := d.ownerID(w, r)
	now := time.Now()
	key := daily.KeyFor(now)
	mapKey := uid + "|" + key.Day

	d.mu.Lock()
	rd, active := d.sessions[mapKey]
	d.mu.Unlock()

	resumed := active
	if !active {
		stored, err := d.store.LoadSession(r.Context(), uid, key)
		if err != nil {
			log.Warn().Err(err).Str("owner", uid).Msg("load session")
		}
		var st *game.State
		st, resumed = game.Restore(stored, key, key)
		rd = game.NewRound(game.Config{
			State:     st,
			Questions: daily.QuestionsFor(now),
			Persist:   &ownerPersister{store: d.store, owner: uid, key: key},
		})

		d.mu.Lock()
		if existing, ok := d.sessions[mapKey]; ok {
			// Lost the race; another request built the round first.
			rd, resumed = existing, true
			d.mu.Unlock()
		} else {
			d.sessions[mapKey] = rd
			d.mu.Unlock()
			rd.Begin()
			d.primeCaches(r.Context(), uid, key, now)
		}
	}

	res := dailyNewRes{
		stateView: d.viewOf(rd, now),
		Resumed:   resumed,
		Credits:   daily.CreditsFor(now),
	}
	_ = json.NewEncoder(w).Encode(res)
}

// primeCaches refreshes the daily question cache and lastPlayed marker.
// Both are best effort.
func (d *dailyServer) primeCaches(ctx context.Context, uid string, key daily.ContentKey, now time.Time) {
	if data, err := json.Marshal(daily.QuestionsFor(now)); err == nil {
		if err := d.store.CacheQuestions(ctx, key, data); err != nil {
			log.Warn().Err(err).Msg("cache daily questions")
		}
	}
	if err := d.store.SetPref(ctx, uid, "lastPlayed", key.Day); err != nil {
		log.Warn().Err(err).Msg("set lastPlayed")
	}
}

// -----------------------------------------------------------------------------
// /daily/state

func (d *dailyServer) handleState(w http.ResponseWriter, r *http.Request) {
	rd := d.round(w, r)
	if rd == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(d.viewOf(rd, time.Now()))
}

// -----------------------------------------------------------------------------
// /daily/pin

type pinReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (d *dailyServer) handlePin(w http.ResponseWriter, r *http.Request) {
	rd := d.round(w, r)
	if rd == nil {
		return
	}
	var p pinReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if err := rd.PlacePin(geo.Point{Lat: p.Lat, Lng: p.Lng}); err != nil {
		writeGameError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// -----------------------------------------------------------------------------
// /daily/submit

func (d *dailyServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	rd := d.round(w, r)
	if rd == nil {
		return
	}
	res, err := rd.Submit()
	if err != nil {
		writeGameError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(res)
}

// -----------------------------------------------------------------------------
// /daily/advance

func (d *dailyServer) handleAdvance(w http.ResponseWriter, r *http.Request) {
	rd := d.round(w, r)
	if rd == nil {
		return
	}
	if err := rd.Advance(); err != nil {
		writeGameError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(d.viewOf(rd, time.Now()))
}

// -----------------------------------------------------------------------------
// /daily/summary

type summaryRes struct {
	summary.Summary
	ShareText string `json:"shareText,omitempty"`
}

// handleSummary computes the results view. The share text is included
// only once the day is completed.
func (d *dailyServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	rd := d.round(w, r)
	if rd == nil {
		return
	}
	now := time.Now()
	st := rd.State()
	sum := summary.Build(daily.QuizNumber(now), st, daily.QuestionsFor(now))
	res := summaryRes{Summary: sum}
	if st.Completed {
		res.ShareText = sum.ShareText()
	}
	_ = json.NewEncoder(w).Encode(res)
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

type lbRes struct {
	Date string                 `json:"date"`
	Top  []store.LeaderboardRow `json:"top"`
}

func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now())
	}
	rows, err := d.store.Leaderboard(r.Context(), date, store.DefaultLeaderboardLimit)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}

// writeGameError maps engine errors to HTTP statuses.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrNoPin):
		http.Error(w, `{"error":"no_pin"}`, http.StatusBadRequest)
	case errors.Is(err, game.ErrNotGuessing):
		http.Error(w, `{"error":"not_guessing"}`, http.StatusConflict)
	case errors.Is(err, game.ErrFinished):
		http.Error(w, `{"error":"finished"}`, http.StatusConflict)
	default:
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
	}
}
