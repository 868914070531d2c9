// Package sweep runs the solver across a grid of instance sizes and
// trials, producing per-trial rows and aggregate summaries for benchmark
// tables.
package sweep

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"routesolver/internal/model"
	"routesolver/internal/solver"
)

// Config enumerates the grid. Trial t of any size uses seed SeedBase+t for
// both instance generation and the annealer, so a sweep is reproducible
// end to end.
type Config struct {
	Sizes       []int
	Trials      int
	Vehicles    int
	Capacity    int
	TimeWindows bool
	LambdaTW    float64
	MuFair      float64
	SeedBase    int64
	Solver      solver.Config
	Logf        func(format string, args ...any) // optional progress lines
	// OnTrial observes each finished trial with the generator spec that
	// produced it. The API server uses this to persist sweep trials as runs.
	OnTrial func(spec model.GeneratorSpec, res model.SolveResult)
}

// FromWire maps a SweepRequest onto a Config.
func FromWire(req model.SweepRequest) Config {
	return Config{
		Sizes:       req.Sizes,
		Trials:      req.Trials,
		Vehicles:    req.Vehicles,
		Capacity:    req.Capacity,
		TimeWindows: req.TW,
		LambdaTW:    req.LambdaTW,
		MuFair:      req.MuFair,
		SeedBase:    req.SeedBase,
		Solver:      solver.ConfigFromWire(req.Config),
	}
}

// Run executes the whole grid sequentially. Each trial is an independent
// solver run with its own seeded generator, so there is no shared mutable
// state between trials.
func Run(cfg Config) ([]model.SweepRow, error) {
	trials := cfg.Trials
	if trials <= 0 {
		trials = 3
	}
	seedBase := cfg.SeedBase
	if seedBase == 0 {
		seedBase = 42
	}

	rows := make([]model.SweepRow, 0, len(cfg.Sizes)*trials)
	for _, n := range cfg.Sizes {
		for t := 0; t < trials; t++ {
			seed := seedBase + int64(t)
			spec := model.GeneratorSpec{
				N:           n,
				Seed:        seed,
				Capacity:    cfg.Capacity,
				Vehicles:    cfg.Vehicles,
				TimeWindows: cfg.TimeWindows,
				LambdaTW:    cfg.LambdaTW,
				MuFair:      cfg.MuFair,
			}
			inst := solver.Generate(spec)
			scfg := cfg.Solver
			scfg.Seed = seed

			start := time.Now()
			res, err := solver.Solve(inst, scfg)
			if err != nil {
				return rows, fmt.Errorf("sweep n=%d trial=%d: %w", n, t+1, err)
			}
			row := model.SweepRow{
				N:          n,
				Trial:      t + 1,
				Seed:       seed,
				Cost:       res.Cost,
				RuntimeSec: time.Since(start).Seconds(),
				Feasible:   res.Feasible,
			}
			rows = append(rows, row)
			if cfg.OnTrial != nil {
				cfg.OnTrial(spec, res.Wire())
			}
			if cfg.Logf != nil {
				cfg.Logf("n=%d trial=%d/%d cost=%.2f runtime=%.2fs", n, t+1, trials, row.Cost, row.RuntimeSec)
			}
		}
	}
	return rows, nil
}

// WriteCSV emits the sweep table with a header row.
func WriteCSV(w io.Writer, rows []model.SweepRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"n", "trial", "seed", "cost", "runtime_sec", "feasible"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.N),
			strconv.Itoa(r.Trial),
			strconv.FormatInt(r.Seed, 10),
			strconv.FormatFloat(r.Cost, 'f', 4, 64),
			strconv.FormatFloat(r.RuntimeSec, 'f', 4, 64),
			strconv.FormatBool(r.Feasible),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Summary aggregates the trials of one instance size.
type Summary struct {
	N              int     `json:"n"`
	Trials         int     `json:"trials"`
	MeanCost       float64 `json:"meanCost"`
	MeanRuntimeSec float64 `json:"meanRuntimeSec"`
}

// Summarize averages cost and runtime per size, in first-seen size order.
func Summarize(rows []model.SweepRow) []Summary {
	order := []int{}
	bucket := map[int][]model.SweepRow{}
	for _, r := range rows {
		if _, ok := bucket[r.N]; !ok {
			order = append(order, r.N)
		}
		bucket[r.N] = append(bucket[r.N], r)
	}
	out := make([]Summary, 0, len(order))
	for _, n := range order {
		rs := bucket[n]
		s := Summary{N: n, Trials: len(rs)}
		for _, r := range rs {
			s.MeanCost += r.Cost
			s.MeanRuntimeSec += r.RuntimeSec
		}
		s.MeanCost /= float64(len(rs))
		s.MeanRuntimeSec /= float64(len(rs))
		out = append(out, s)
	}
	return out
}
