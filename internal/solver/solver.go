// Package solver implements the CVRP/VRPTW optimization engine: a
// Clarke-Wright savings constructor, a 2-opt + relocate local search with
// incremental cost deltas, and a time-budgeted simulated annealer. The
// package performs no I/O; callers hand it an Instance and consume a
// Result.
package solver

import (
	"time"

	"routesolver/internal/model"
)

// Config selects the solve pipeline stages. The zero value runs
// Clarke-Wright plus local search with no annealing.
type Config struct {
	SATime          time.Duration // 0 disables the SA stage
	SAMaxIters      int           // optional iteration cap for the SA stage
	SkipLocalSearch bool          // true yields the construction-only ablation
	Seed            int64
	InitTemp        float64
	Cooling         float64
	Progress        func(ProgressEvent)
}

// ConfigFromWire maps the JSON config onto solver terms.
func ConfigFromWire(w model.SolverConfig) Config {
	return Config{
		SATime:          time.Duration(w.SATimeMs) * time.Millisecond,
		SkipLocalSearch: w.NoLocalSearch,
		Seed:            w.Seed,
		InitTemp:        w.InitTemp,
		Cooling:         w.Cooling,
	}
}

// Result is the solve outcome: final depot-anchored routes, objective cost,
// wall time, and a feasibility flag. Infeasibility (total demand beyond the
// fleet, or a construction that cannot merge below K routes) is reported
// here, never as an error.
type Result struct {
	Routes     [][]int
	Cost       float64
	Feasible   bool
	Runtime    time.Duration
	Iterations int
	Accepted   int
	Improved   int
}

// Wire converts a Result to its JSON form.
func (r *Result) Wire() model.SolveResult {
	return model.SolveResult{
		Routes:     r.Routes,
		Cost:       r.Cost,
		Feasible:   r.Feasible,
		RuntimeMs:  r.Runtime.Milliseconds(),
		Iterations: r.Iterations,
		Accepted:   r.Accepted,
		Improved:   r.Improved,
	}
}

// Solve runs the full pipeline: distance matrix, Clarke-Wright
// construction, optional local-search descent, optional time-budgeted
// annealing. The instance is never mutated; identical (instance, config)
// pairs produce identical results for a fixed iteration cap.
func Solve(inst *model.Instance, cfg Config) (*Result, error) {
	start := time.Now()
	m, err := NewMatrix(inst)
	if err != nil {
		return nil, err
	}
	eval := NewEvaluator(inst, m)

	s := NewSolution(inst, m, ClarkeWright(inst, m))
	if !cfg.SkipLocalSearch {
		NewLocalSearch(eval).Descend(s)
	}

	var st AnnealStats
	if cfg.SATime > 0 || cfg.SAMaxIters > 0 {
		s, st = Anneal(s, eval, AnnealConfig{
			Budget:   cfg.SATime,
			MaxIters: cfg.SAMaxIters,
			InitTemp: cfg.InitTemp,
			Cooling:  cfg.Cooling,
			Seed:     cfg.Seed,
			Progress: cfg.Progress,
		})
	}

	return &Result{
		Routes:     s.RouteSeqs(),
		Cost:       eval.Cost(s),
		Feasible:   s.Feasible(),
		Runtime:    time.Since(start),
		Iterations: st.Iterations,
		Accepted:   st.Accepted,
		Improved:   st.Improved,
	}, nil
}
