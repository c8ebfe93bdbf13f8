package summary_test

import (
	"math"
	"strings"
	"testing"

	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/game"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/geo"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/questions"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/summary"
)

func km(v float64) *float64 { return &v }

func TestTierBrackets(t *testing.T) {
	cases := []struct {
		d    *float64
		want summary.Tier
	}{
		{km(0), summary.TierBullseye},
		{km(50), summary.TierBullseye},
		{km(50.1), summary.TierGreen},
		{km(300), summary.TierGreen},
		{km(301), summary.TierYellow},
		{km(1000), summary.TierYellow},
		{km(1500), summary.TierOrange},
		{km(2000), summary.TierOrange},
		{km(3999), summary.TierRed},
		{km(4000), summary.TierRed},
		{km(4001), summary.TierMiss},
		{km(19000), summary.TierMiss},
		{nil, summary.TierMiss},
	}
	for _, tc := range cases {
		if got := summary.TierFor(tc.d); got != tc.want {
			t.Errorf("TierFor(%v) = %v, want %v", tc.d, got, tc.want)
		}
	}
}

func TestAccuracyEndpoints(t *testing.T) {
	perfect := []*float64{km(0), km(0), km(0), km(0), km(0)}
	if got := summary.Accuracy(perfect); got != 90.0 {
		t.Errorf("accuracy at mean 0 = %v, want exactly 90.0", got)
	}

	hopeless := []*float64{km(20000), km(20000), km(20000), km(20000), km(20000)}
	if got := summary.Accuracy(hopeless); got != 0 {
		t.Errorf("accuracy at huge mean = %v, want 0 (never negative)", got)
	}
}

func TestAccuracyCurve(t *testing.T) {
	// mean 5000 km: 90 * (1 - 5000/12000*1.2)^1.5 = 90 * 0.5^1.5
	ds := []*float64{km(5000), km(5000), km(5000), km(5000), km(5000)}
	want := 90 * math.Pow(0.5, 1.5)
	if got := summary.Accuracy(ds); math.Abs(got-want) > 1e-9 {
		t.Errorf("accuracy at mean 5000 = %v, want %v", got, want)
	}
}

func TestAccuracyAbsentCountsAsZero(t *testing.T) {
	// Two misses pull the mean down, not shrink the denominator.
	ds := []*float64{km(1000), km(1000), km(1000), nil, nil}
	withZeros := []*float64{km(1000), km(1000), km(1000), km(0), km(0)}
	if got, want := summary.Accuracy(ds), summary.Accuracy(withZeros); got != want {
		t.Errorf("absent guesses: %v, explicit zeros: %v", got, want)
	}
}

func TestFormatCompletionTime(t *testing.T) {
	cases := []struct {
		ms   int64
		want string
	}{
		{0, "0m 0s"},
		{59999, "0m 59s"},
		{60000, "1m 0s"},
		{303000, "5m 3s"},
		{600000, "10m 0s"},
		{1234567, "10m 0s"}, // capped
		{-5, "0m 0s"},
	}
	for _, tc := range cases {
		if got := summary.FormatCompletionTime(tc.ms); got != tc.want {
			t.Errorf("FormatCompletionTime(%d) = %q, want %q", tc.ms, got, tc.want)
		}
	}
}

func TestShareTextTemplate(t *testing.T) {
	s := summary.Summary{
		QuizNumber:  132,
		TotalScore:  15250,
		TotalGameMs: 303000,
		Rows: []summary.Row{
			{Tier: summary.TierBullseye},
			{Tier: summary.TierGreen},
			{Tier: summary.TierYellow},
			{Tier: summary.TierRed},
			{Tier: summary.TierMiss},
		},
	}
	want := "CartoObscura #132\n\nFinal Score: 15250\nTime: 5m 3s\n\n🎯🟢🟡🔴❌\n\nPlay at: CartoObscura.com"
	if got := s.ShareText(); got != want {
		t.Errorf("share text:\n%q\nwant:\n%q", got, want)
	}
}

func TestBuildFromSession(t *testing.T) {
	if err := questions.Init(); err != nil {
		t.Fatalf("questions: %v", err)
	}
	qs := questions.Group(0)

	st := game.State{
		DayKey:          "2025-02-19",
		CurrentQuestion: 5,
		TotalScore:      16000,
		TotalGameMs:     250000,
		Completed:       true,
		Guesses: []game.Guess{
			{QuestionIndex: 0, Coordinate: &qs[0].Answer}, // exact
			{QuestionIndex: 1, Coordinate: &qs[1].Answer},
			{QuestionIndex: 2, Coordinate: &qs[2].Answer},
			{QuestionIndex: 3, Coordinate: &qs[3].Answer},
			{QuestionIndex: 4}, // timed out, no pin
		},
	}

	s := summary.Build(7, st, qs)
	if s.QuizNumber != 7 || s.TotalScore != 16000 || s.TotalGameMs != 250000 {
		t.Fatalf("summary header: %+v", s)
	}
	if len(s.Rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(s.Rows))
	}
	for i := 0; i < 4; i++ {
		if s.Rows[i].Tier != summary.TierBullseye || s.Rows[i].Points != geo.MaxScore {
			t.Errorf("row %d: %+v, want bullseye at max score", i, s.Rows[i])
		}
		if s.Rows[i].Name != qs[i].Name {
			t.Errorf("row %d name = %q, want %q", i, s.Rows[i].Name, qs[i].Name)
		}
	}
	if s.Rows[4].Tier != summary.TierMiss || s.Rows[4].DistanceKm != nil || s.Rows[4].Points != 0 {
		t.Errorf("miss row: %+v", s.Rows[4])
	}

	// mean distance 0 over the four exacts plus one absent-as-0 = 0 → 90%.
	if s.Accuracy != 90.0 {
		t.Errorf("accuracy = %v, want 90.0", s.Accuracy)
	}

	share := s.ShareText()
	if !strings.HasPrefix(share, "CartoObscura #7\n\n") {
		t.Errorf("share prefix wrong: %q", share)
	}
	if !strings.Contains(share, "🎯🎯🎯🎯❌") {
		t.Errorf("share glyphs wrong: %q", share)
	}
}
