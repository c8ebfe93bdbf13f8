package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/config"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/game"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/httpserver"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/questions"
	"github.com/Emrethegenius/cartoobscura/apps/go-server/internal/store"
)

// newTestClient spins up the server over the memory store with a cookie
// jar, so the anonymous ID persists across requests like a browser.
func newTestClient(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()
	if err := questions.Init(); err != nil {
		t.Fatalf("questions: %v", err)
	}
	srv := httpserver.New(store.NewMemoryStore(), nil, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return ts, &http.Client{Jar: jar}
}

func postJSON(t *testing.T, c *http.Client, url string, body any, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	resp, err := c.Post(url, "application/json", &buf)
	if err != nil {
		t.Fatal(err)
	}
	decodeBody(t, resp, out)
	return resp
}

func getJSON(t *testing.T, c *http.Client, url string, out any) *http.Response {
	t.Helper()
	resp, err := c.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	decodeBody(t, resp, out)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
}

type stateRes struct {
	Date        string `json:"date"`
	QuizNumber  int    `json:"quizNumber"`
	Phase       string `json:"phase"`
	GuessCount  int    `json:"guessCount"`
	TotalScore  int    `json:"totalScore"`
	RemainingMs int64  `json:"remainingMs"`
	Completed   bool   `json:"completed"`
	Resumed     bool   `json:"resumed"`
	Question    *struct {
		Index  int    `json:"index"`
		Prompt string `json:"prompt"`
		Image  string `json:"image"`
	} `json:"question"`
	Credits []string `json:"credits"`
}

func TestHealth(t *testing.T) {
	ts, c := newTestClient(t)
	var out map[string]bool
	resp := getJSON(t, c, ts.URL+"/health", &out)
	if resp.StatusCode != http.StatusOK || !out["ok"] {
		t.Fatalf("health: %d %v", resp.StatusCode, out)
	}
}

func TestStateWithoutSession(t *testing.T) {
	ts, c := newTestClient(t)
	resp := getJSON(t, c, ts.URL+"/daily/state", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("state without session: %d", resp.StatusCode)
	}
}

func TestDailyNewStartsFresh(t *testing.T) {
	ts, c := newTestClient(t)

	var out stateRes
	resp := postJSON(t, c, ts.URL+"/daily/new", nil, &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("new: %d", resp.StatusCode)
	}
	if out.Resumed || out.Completed {
		t.Fatalf("fresh session flags: %+v", out)
	}
	if out.Phase != string(game.PhaseAwaitingGuess) {
		t.Errorf("phase = %q", out.Phase)
	}
	if out.Question == nil || out.Question.Prompt == "" {
		t.Fatalf("no question in response: %+v", out)
	}
	if out.Question.Index != 0 || out.GuessCount != 0 {
		t.Errorf("position: %+v", out)
	}
	// The round runs a real wall-clock countdown, so a little budget has
	// already elapsed by the time the response is rendered.
	budget := game.RoundBudget.Milliseconds()
	if out.RemainingMs > budget || out.RemainingMs < budget-1000 {
		t.Errorf("remaining = %d, want within 1s of %d", out.RemainingMs, budget)
	}
	if len(out.Credits) != 5 {
		t.Errorf("credits = %d, want 5", len(out.Credits))
	}
	if out.QuizNumber < 1 {
		t.Errorf("quiz number = %d", out.QuizNumber)
	}
}

func TestAnswersNotLeakedBeforeReveal(t *testing.T) {
	ts, c := newTestClient(t)

	resp, err := c.Post(ts.URL+"/daily/new", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatal(err)
	}
	q, ok := raw["question"]
	if !ok {
		t.Fatal("no question field")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(q, &fields); err != nil {
		t.Fatal(err)
	}
	for _, secret := range []string{"answer", "name", "info"} {
		if _, leaked := fields[secret]; leaked {
			t.Errorf("question payload leaks %q before reveal", secret)
		}
	}
}

func TestFullDayOverHTTP(t *testing.T) {
	ts, c := newTestClient(t)

	var st stateRes
	postJSON(t, c, ts.URL+"/daily/new", nil, &st)

	for i := 0; i < 5; i++ {
		resp := postJSON(t, c, ts.URL+"/daily/pin", map[string]float64{"lat": 0, "lng": 0}, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("pin %d: %d", i, resp.StatusCode)
		}
		var res game.Result
		resp = postJSON(t, c, ts.URL+"/daily/submit", nil, &res)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("submit %d: %d", i, resp.StatusCode)
		}
		if res.QuestionIndex != i || res.DistanceKm == nil {
			t.Fatalf("result %d: %+v", i, res)
		}
		if res.Name == "" {
			t.Errorf("reveal %d missing location name", i)
		}
		resp = postJSON(t, c, ts.URL+"/daily/advance", nil, &st)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("advance %d: %d", i, resp.StatusCode)
		}
	}

	if st.Phase != string(game.PhaseFinished) || !st.Completed || st.GuessCount != 5 {
		t.Fatalf("end state: %+v", st)
	}

	var sum struct {
		QuizNumber int     `json:"quizNumber"`
		TotalScore int     `json:"totalScore"`
		Accuracy   float64 `json:"accuracy"`
		Rows       []any   `json:"rows"`
		ShareText  string  `json:"shareText"`
	}
	resp := getJSON(t, c, ts.URL+"/daily/summary", &sum)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary: %d", resp.StatusCode)
	}
	if len(sum.Rows) != 5 {
		t.Errorf("summary rows = %d", len(sum.Rows))
	}
	if sum.ShareText == "" {
		t.Error("completed summary missing share text")
	}

	var lb struct {
		Date string `json:"date"`
		Top  []struct {
			Owner string `json:"owner"`
			Score int    `json:"score"`
		} `json:"top"`
	}
	getJSON(t, c, ts.URL+"/daily/leaderboard", &lb)
	if len(lb.Top) != 1 || lb.Top[0].Score != sum.TotalScore {
		t.Fatalf("leaderboard: %+v (score %d)", lb, sum.TotalScore)
	}
}

func TestSubmitWithoutPinHTTP(t *testing.T) {
	ts, c := newTestClient(t)
	postJSON(t, c, ts.URL+"/daily/new", nil, nil)
	resp := postJSON(t, c, ts.URL+"/daily/submit", nil, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("submit without pin: %d", resp.StatusCode)
	}
}

func TestAdvanceWhileGuessingHTTP(t *testing.T) {
	ts, c := newTestClient(t)
	postJSON(t, c, ts.URL+"/daily/new", nil, nil)
	resp := postJSON(t, c, ts.URL+"/daily/advance", nil, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("advance while guessing: %d", resp.StatusCode)
	}
}

func TestNewResumesActiveSession(t *testing.T) {
	ts, c := newTestClient(t)

	postJSON(t, c, ts.URL+"/daily/new", nil, nil)
	postJSON(t, c, ts.URL+"/daily/pin", map[string]float64{"lat": 10, "lng": 20}, nil)
	postJSON(t, c, ts.URL+"/daily/submit", nil, nil)

	var out stateRes
	resp := postJSON(t, c, ts.URL+"/daily/new", nil, &out)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second new: %d", resp.StatusCode)
	}
	if !out.Resumed {
		t.Error("second new did not resume")
	}
	if out.GuessCount != 1 {
		t.Errorf("guess count after resume = %d", out.GuessCount)
	}
}

func TestSessionsIsolatedByCookie(t *testing.T) {
	ts, a := newTestClient(t)
	jar, _ := cookiejar.New(nil)
	b := &http.Client{Jar: jar}

	postJSON(t, a, ts.URL+"/daily/new", nil, nil)
	postJSON(t, a, ts.URL+"/daily/pin", map[string]float64{"lat": 1, "lng": 1}, nil)
	postJSON(t, a, ts.URL+"/daily/submit", nil, nil)

	var out stateRes
	postJSON(t, b, ts.URL+"/daily/new", nil, &out)
	if out.Resumed || out.GuessCount != 0 {
		t.Fatalf("second visitor saw first visitor's session: %+v", out)
	}
}

func TestThemePref(t *testing.T) {
	ts, c := newTestClient(t)

	var out map[string]string
	getJSON(t, c, ts.URL+"/prefs/theme", &out)
	if out["theme"] != "light" {
		t.Errorf("default theme = %q", out["theme"])
	}

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/prefs/theme",
		bytes.NewBufferString(`{"theme":"dark"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put theme: %d", resp.StatusCode)
	}

	getJSON(t, c, ts.URL+"/prefs/theme", &out)
	if out["theme"] != "dark" {
		t.Errorf("theme after put = %q", out["theme"])
	}

	req, _ = http.NewRequest(http.MethodPut, ts.URL+"/prefs/theme",
		bytes.NewBufferString(`{"theme":"hotpink"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = c.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid theme accepted: %d", resp.StatusCode)
	}
}

func TestConfiguredOriginInCORS(t *testing.T) {
	if err := questions.Init(); err != nil {
		t.Fatalf("questions: %v", err)
	}
	cfg := &config.Config{
		ClientOrigin: "https://cartoobscura.example",
		JWTSecret:    "test_secret",
		CookieName:   "test_token",
	}
	srv := httpserver.New(store.NewMemoryStore(), nil, cfg)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != cfg.ClientOrigin {
		t.Errorf("allowed origin = %q, want %q", got, cfg.ClientOrigin)
	}
	if resp.Header.Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("credentials header missing")
	}
}

func TestNotFoundIsJSON(t *testing.T) {
	ts, c := newTestClient(t)
	resp, err := c.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
