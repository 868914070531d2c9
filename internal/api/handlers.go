package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"routesolver/internal/buildinfo"
	"routesolver/internal/metrics"
	"routesolver/internal/model"
	"routesolver/internal/solver"
	"routesolver/internal/store"
	"routesolver/internal/sweep"
)

// resolveInstance applies generator specs and fills solver defaults from
// the service config.
func (s *Server) resolveInstance(req *model.SolveRequest) *model.Instance {
	if req.Config.InitTemp == 0 {
		req.Config.InitTemp = s.Cfg.Solver.InitTemp
	}
	if req.Config.Cooling == 0 {
		req.Config.Cooling = s.Cfg.Solver.Cooling
	}
	if req.Instance != nil {
		return req.Instance
	}
	return solver.Generate(*req.Generate)
}

func solveMode(cfg solver.Config) string {
	mode := "cw"
	if !cfg.SkipLocalSearch {
		mode += "+ls"
	}
	if cfg.SATime > 0 || cfg.SAMaxIters > 0 {
		mode += "+sa"
	}
	return mode
}

// SolveHandler handles POST /v1/solve: solve synchronously, persist the
// run, and return the stored record.
func (s *Server) SolveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateSolveRequest(&req, s.Cfg.Limits); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid solve request", err.Error(), r.URL.Path)
		return
	}
	inst := s.resolveInstance(&req)
	cfg := solver.ConfigFromWire(req.Config)

	res, err := solver.Solve(inst, cfg)
	if err != nil {
		if errors.Is(err, solver.ErrInvalidInstance) {
			writeProblem(w, http.StatusBadRequest, "Invalid instance", err.Error(), r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Solve failed", err.Error(), r.URL.Path)
		return
	}

	mode := solveMode(cfg)
	metrics.SolveRuns.WithLabelValues(mode, strconv.FormatBool(res.Feasible)).Inc()
	metrics.SolveDuration.WithLabelValues(mode).Observe(res.Runtime.Seconds())
	metrics.SolveCost.Observe(res.Cost)
	metrics.SAIterations.Add(float64(res.Iterations))

	run, err := s.Store.CreateRun(r.Context(), model.Run{Request: req, Result: res.Wire()})
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Persist run failed", err.Error(), r.URL.Path)
		return
	}
	s.Broker.Publish(run.ID, Event{Type: "solve.completed", Data: map[string]any{
		"runId": run.ID, "cost": run.Result.Cost, "feasible": run.Result.Feasible,
	}})
	writeJSON(w, http.StatusOK, run)
}

// RunsHandler handles GET /v1/runs with cursor pagination.
func (s *Server) RunsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cursor := r.URL.Query().Get("cursor")
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	items, next, err := s.Store.ListRuns(r.Context(), cursor, limit)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusBadRequest, "Invalid cursor", cursor, r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "List runs failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// RunByIDHandler handles GET /v1/runs/{id}.
func (s *Server) RunByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	if id == "" || strings.Contains(id, "/") {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	run, err := s.Store.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Run not found", id, r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Get run failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// SweepHandler handles POST /v1/sweep: run the size/trial grid and return
// per-trial rows plus per-size aggregates.
func (s *Server) SweepHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.SweepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateSweepRequest(&req, s.Cfg.Limits); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid sweep request", err.Error(), r.URL.Path)
		return
	}
	if req.Config.InitTemp == 0 {
		req.Config.InitTemp = s.Cfg.Solver.InitTemp
	}
	if req.Config.Cooling == 0 {
		req.Config.Cooling = s.Cfg.Solver.Cooling
	}
	cfg := sweep.FromWire(req)
	cfg.OnTrial = func(spec model.GeneratorSpec, res model.SolveResult) {
		sp := spec
		if _, err := s.Store.CreateRun(r.Context(), model.Run{
			Request: model.SolveRequest{Generate: &sp, Config: req.Config},
			Result:  res,
		}); err != nil {
			log.Printf("persist sweep trial n=%d seed=%d: %v", spec.N, spec.Seed, err)
		}
	}
	rows, err := sweep.Run(cfg)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Sweep failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows, "summary": sweep.Summarize(rows)})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// DebugHandler returns build and runtime info for operators.
func (s *Server) DebugHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"build": buildinfo.Info(),
		"time":  time.Now().UTC().Format(time.RFC3339),
		"config": map[string]any{
			"addr":         s.Cfg.Addr,
			"hasDatabase":  s.Cfg.DatabaseURL != "",
			"hasRedis":     s.Cfg.RedisURL != "",
			"maxCustomers": s.Cfg.Limits.MaxCustomers,
			"maxSaTimeMs":  s.Cfg.Limits.MaxSATimeMs,
		},
	})
}
