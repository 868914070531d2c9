package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"routesolver/internal/config"
	"routesolver/internal/model"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.RateRPS = 0 // no limiter in tests
	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func TestHealthReady(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != 200 {
		t.Fatalf("health: got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.ReadyHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != 200 {
		t.Fatalf("ready: got %d", rr.Code)
	}
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(body)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	h(rr, req)
	return rr
}

func TestSolveInlineInstance(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{
		"instance": map[string]any{
			"depot":     map[string]any{"x": 0, "y": 0},
			"customers": []map[string]any{{"id": 1, "x": 3, "y": 4, "demand": 1}},
			"capacity":  10,
			"vehicles":  2,
		},
	}
	rr := postJSON(t, s.SolveHandler, "/v1/solve", body)
	if rr.Code != 200 {
		t.Fatalf("solve: got %d body %s", rr.Code, rr.Body.String())
	}
	var run model.Run
	if err := json.Unmarshal(rr.Body.Bytes(), &run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.ID == "" {
		t.Fatalf("run not persisted: %+v", run)
	}
	if run.Result.Cost != 10 {
		t.Fatalf("single-customer cost: got %v, want 10", run.Result.Cost)
	}
	if !run.Result.Feasible {
		t.Fatalf("expected feasible result")
	}
}

func TestSolveGenerated(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{
		"generate": map[string]any{"n": 20, "seed": 42},
		"config":   map[string]any{"saTimeMs": 20, "seed": 42},
	}
	rr := postJSON(t, s.SolveHandler, "/v1/solve", body)
	if rr.Code != 200 {
		t.Fatalf("solve: got %d body %s", rr.Code, rr.Body.String())
	}
	var run model.Run
	_ = json.Unmarshal(rr.Body.Bytes(), &run)
	if len(run.Result.Routes) == 0 {
		t.Fatalf("expected routes, got %+v", run.Result)
	}
}

func TestSolveRejectsBadRequests(t *testing.T) {
	s := newTestServer(t)
	cases := []map[string]any{
		{}, // neither instance nor generate
		{"instance": map[string]any{"capacity": 10, "vehicles": 1}, "generate": map[string]any{"n": 5}}, // both
		{"generate": map[string]any{"n": 5}, "config": map[string]any{"cooling": 1.5}},
		{"generate": map[string]any{"n": 5}, "config": map[string]any{"saTimeMs": -1}},
		{"generate": map[string]any{"n": 5000}},
	}
	for i, c := range cases {
		rr := postJSON(t, s.SolveHandler, "/v1/solve", c)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("case %d: got %d, want 400", i, rr.Code)
		}
	}
}

func TestSolveInvalidInstanceProblem(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{
		"instance": map[string]any{
			"depot":     map[string]any{"x": 0, "y": 0},
			"customers": []map[string]any{{"id": 7, "x": 1, "y": 1, "demand": 1}}, // id must be 1
			"capacity":  10,
			"vehicles":  1,
		},
	}
	rr := postJSON(t, s.SolveHandler, "/v1/solve", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
	var p Problem
	if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode problem: %v", err)
	}
	if p.Status != 400 || p.Title == "" {
		t.Fatalf("bad problem body: %+v", p)
	}
}

func TestRunsListAndGet(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{"generate": map[string]any{"n": 5, "seed": 1}}
	rr := postJSON(t, s.SolveHandler, "/v1/solve", body)
	if rr.Code != 200 {
		t.Fatalf("seed solve: %d", rr.Code)
	}
	var run model.Run
	_ = json.Unmarshal(rr.Body.Bytes(), &run)

	rr = httptest.NewRecorder()
	s.RunsHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/runs?limit=10", nil))
	if rr.Code != 200 {
		t.Fatalf("runs list: %d", rr.Code)
	}
	var page struct {
		Items []model.Run `json:"items"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &page)
	if len(page.Items) != 1 || page.Items[0].ID != run.ID {
		t.Fatalf("list items wrong: %+v", page.Items)
	}

	rr = httptest.NewRecorder()
	s.RunByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/runs/"+run.ID, nil))
	if rr.Code != 200 {
		t.Fatalf("run get: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.RunByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/runs/does-not-exist", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing run: got %d, want 404", rr.Code)
	}
}

func TestSweepEndpoint(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{"sizes": []int{5, 10}, "trials": 2, "seedBase": 42}
	rr := postJSON(t, s.SweepHandler, "/v1/sweep", body)
	if rr.Code != 200 {
		t.Fatalf("sweep: got %d body %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Rows    []model.SweepRow `json:"rows"`
		Summary []any            `json:"summary"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Rows) != 4 {
		t.Fatalf("rows: got %d, want 4", len(resp.Rows))
	}
	if len(resp.Summary) != 2 {
		t.Fatalf("summary: got %d, want 2", len(resp.Summary))
	}

	// trials are persisted as runs
	rr = httptest.NewRecorder()
	s.RunsHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/runs", nil))
	var page struct {
		Items []model.Run `json:"items"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &page)
	if len(page.Items) != 4 {
		t.Fatalf("persisted trials: got %d, want 4", len(page.Items))
	}
}

func TestSolveWebSocketStream(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(http.HandlerFunc(s.SolveWSHandler))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/solve/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	req := model.SolveRequest{
		Generate: &model.GeneratorSpec{N: 15, Seed: 42},
		Config:   model.SolverConfig{SATimeMs: 50, Seed: 42},
	}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("write request: %v", err)
	}

	sawResult := false
	for i := 0; i < 1000; i++ {
		var evt Event
		if err := conn.ReadJSON(&evt); err != nil {
			t.Fatalf("read event %d: %v", i, err)
		}
		switch evt.Type {
		case "solve.progress":
			// keep reading
		case "solve.result":
			sawResult = true
		case "solve.error":
			t.Fatalf("solve.error: %v", evt.Data)
		}
		if sawResult {
			break
		}
	}
	if !sawResult {
		t.Fatalf("never received solve.result")
	}
}

func TestRateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.RateRPS = 1
	cfg.RateBurst = 1
	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	h := s.Middleware(http.HandlerFunc(s.HealthHandler))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != 200 {
		t.Fatalf("first request: got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want 429", rr.Code)
	}
}
