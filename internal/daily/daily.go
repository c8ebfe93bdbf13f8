// internal/daily/daily.go
//
// Deterministic daily selection.
//
// Each calendar day maps to one contiguous group of 5 questions from the
// fixed pool, rotating through all groups and wrapping around. Selection is
// a pure function of the calendar date (local time, midnight-aligned):
// any two timestamps on the same day yield the same questions.

package daily

import (
	"math"
	"time"

	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/questions"
)

// Epoch is the quiz start date. Day index 0 is this calendar day; quiz
// number 1 is shown to the player for it.
var Epoch = time.Date(2025, time.February, 19, 0, 0, 0, 0, time.Local)

// DateKey returns the calendar-date string (YYYY-MM-DD) that scopes all
// persisted state to "today" in t's location.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Midnight returns t truncated to its calendar day in its own location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextMidnight returns the first instant of the calendar day after t.
func NextMidnight(t time.Time) time.Time {
	return Midnight(t).AddDate(0, 0, 1)
}

// DayIndex returns the number of whole calendar days between the epoch and
// t. Negative for dates before the epoch. Rounding absorbs DST-shortened
// and DST-lengthened days.
func DayIndex(t time.Time) int {
	epoch := Midnight(Epoch.In(t.Location()))
	diff := Midnight(t).Sub(epoch)
	return int(math.Round(diff.Hours() / 24))
}

// QuizNumber is the 1-based ordinal shown to the player.
func QuizNumber(t time.Time) int {
	return DayIndex(t) + 1
}

// SegmentIndex maps t to a question group using a Euclidean modulo, so
// dates before the epoch still land on a valid non-negative group.
func SegmentIndex(t time.Time) int {
	n := questions.Groups()
	if n <= 0 {
		return 0
	}
	m := DayIndex(t) % n
	if m < 0 {
		m += n
	}
	return m
}

// QuestionsFor returns today's 5 questions, in pool order.
func QuestionsFor(t time.Time) []questions.Question {
	return questions.Group(SegmentIndex(t))
}

// CreditsFor returns today's 5 image attribution strings.
func CreditsFor(t time.Time) []string {
	return questions.Credits(SegmentIndex(t))
}

// ContentKey identifies the content a persisted record was written against.
// Any mismatch with the expected key means the record is stale and must be
// treated as absent.
type ContentKey struct {
	Day     string `json:"day"`
	Version string `json:"version"`
}

// KeyFor returns the content key for t at the current content version.
func KeyFor(t time.Time) ContentKey {
	return ContentKey{Day: DateKey(t), Version: questions.ContentVersion}
}
