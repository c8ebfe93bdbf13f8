// internal/summary/summary.go
//
// End-of-game results: per-question distance tiers, the aggregate
// accuracy percentage, and the shareable result text.

package summary

import (
	"fmt"
	"math"
	"strings"

	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/game"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/geo"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/questions"
)

const (
	AppName  = "CartoObscura"
	ShareURL = "CartoObscura.com"
)

// Tier is the distance bracket for a single answer, used for result
// iconography and the share-string glyphs.
type Tier string

const (
	TierBullseye Tier = "bullseye" // ≤ 50 km
	TierGreen    Tier = "green"    // ≤ 300 km
	TierYellow   Tier = "yellow"   // ≤ 1000 km
	TierOrange   Tier = "orange"   // ≤ 2000 km
	TierRed      Tier = "red"      // ≤ 4000 km
	TierMiss     Tier = "miss"     // farther, or no guess
)

// TierFor brackets a distance. A nil distance (timed out with no pin)
// is a miss.
func TierFor(distanceKm *float64) Tier {
	if distanceKm == nil {
		return TierMiss
	}
	d := *distanceKm
	switch {
	case d <= 50:
		return TierBullseye
	case d <= 300:
		return TierGreen
	case d <= 1000:
		return TierYellow
	case d <= 2000:
		return TierOrange
	case d <= 4000:
		return TierRed
	default:
		return TierMiss
	}
}

// Emoji returns the share-string glyph for the tier.
func (t Tier) Emoji() string {
	switch t {
	case TierBullseye:
		return "🎯"
	case TierGreen:
		return "🟢"
	case TierYellow:
		return "🟡"
	case TierOrange:
		return "🟠"
	case TierRed:
		return "🔴"
	default:
		return "❌"
	}
}

// Row is one question's line in the results view.
type Row struct {
	QuestionIndex int      `json:"questionIndex"`
	Name          string   `json:"name"`
	DistanceKm    *float64 `json:"distanceKm,omitempty"`
	Points        int      `json:"points"`
	Tier          Tier     `json:"tier"`
}

// Summary is the computed end-of-game view for one day.
type Summary struct {
	QuizNumber  int     `json:"quizNumber"`
	TotalScore  int     `json:"totalScore"`
	TotalGameMs int64   `json:"totalGameMs"`
	Accuracy    float64 `json:"accuracy"`
	Rows        []Row   `json:"rows"`
}

// Build computes the summary for a finished (or partial) session against
// the day's question set. Distances are recomputed from the locked
// guesses, so the summary needs no extra persisted fields.
func Build(quizNumber int, st game.State, qs []questions.Question) Summary {
	s := Summary{
		QuizNumber:  quizNumber,
		TotalScore:  st.TotalScore,
		TotalGameMs: st.TotalGameMs,
	}
	dists := make([]*float64, 0, len(st.Guesses))
	for _, g := range st.Guesses {
		if g.QuestionIndex < 0 || g.QuestionIndex >= len(qs) {
			continue
		}
		q := qs[g.QuestionIndex]
		row := Row{QuestionIndex: g.QuestionIndex, Name: q.Name}
		if g.Coordinate != nil {
			d := geo.DistanceKm(*g.Coordinate, q.Answer)
			row.DistanceKm = &d
			row.Points = geo.Score(d)
		}
		row.Tier = TierFor(row.DistanceKm)
		s.Rows = append(s.Rows, row)
		dists = append(dists, row.DistanceKm)
	}
	s.Accuracy = Accuracy(dists)
	return s
}

// Accuracy maps the mean guess distance to a percentage with a smooth,
// non-linear penalty. Absent guesses count as distance 0 in the mean.
// Exactly 90.0 at mean 0, floored at 0 for very large means.
func Accuracy(distances []*float64) float64 {
	if len(distances) == 0 {
		return 0
	}
	var sum float64
	for _, d := range distances {
		if d != nil {
			sum += *d
		}
	}
	avg := sum / float64(len(distances))
	base := 1 - (avg/12000)*1.2
	if base < 0 {
		return 0
	}
	return 90 * math.Pow(base, 1.5)
}

// FormatCompletionTime renders total game time as "<m>m <s>s", capped at
// the maximum countable game time.
func FormatCompletionTime(ms int64) string {
	if ms > game.MaxGameTime.Milliseconds() {
		ms = game.MaxGameTime.Milliseconds()
	}
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%dm %ds", ms/60000, (ms%60000)/1000)
}

// ShareText renders the fixed share template: quiz number, final score,
// completion time, and one tier glyph per question in play order.
func (s Summary) ShareText() string {
	var glyphs strings.Builder
	for _, row := range s.Rows {
		glyphs.WriteString(row.Tier.Emoji())
	}
	return fmt.Sprintf("%s #%d\n\nFinal Score: %d\nTime: %s\n\n%s\n\nPlay at: %s",
		AppName, s.QuizNumber, s.TotalScore, FormatCompletionTime(s.TotalGameMs),
		glyphs.String(), ShareURL)
}
