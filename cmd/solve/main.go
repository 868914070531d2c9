package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"routesolver/internal/buildinfo"
	"routesolver/internal/model"
	"routesolver/internal/solver"
	"routesolver/internal/sweep"
)

type options struct {
	n       int
	k       int
	cap     int
	seed    int64
	tw      bool
	saTime  float64
	lambda  float64
	mu      float64
	noLocal bool

	outdir    string
	tag       string
	stamp     bool
	outstem   string
	perRunEnv bool

	sweepMode bool
	sizes     string
	trials    int
}

func main() {
	var o options
	flag.IntVar(&o.n, "n", 250, "number of customers")
	flag.IntVar(&o.k, "k", 20, "number of vehicles")
	flag.IntVar(&o.cap, "cap", 100, "vehicle capacity")
	flag.Int64Var(&o.seed, "seed", 42, "random seed")
	flag.BoolVar(&o.tw, "tw", false, "enable time windows")
	flag.Float64Var(&o.saTime, "sa-time", 20.0, "SA time budget (seconds)")
	flag.Float64Var(&o.lambda, "lambda", 0.0, "time-window penalty weight")
	flag.Float64Var(&o.mu, "mu", 0.0, "fairness penalty weight")
	flag.BoolVar(&o.noLocal, "no-local", false, "skip local search after construction")
	flag.StringVar(&o.outdir, "outdir", "results", "output directory")
	flag.StringVar(&o.tag, "tag", "", "optional label appended to output filenames")
	flag.BoolVar(&o.stamp, "stamp", false, "append timestamp to output filenames")
	flag.StringVar(&o.outstem, "outstem", "", "override filename stem entirely")
	flag.BoolVar(&o.perRunEnv, "per-run-env", false, "write env_<stem>.json instead of env.json")
	flag.BoolVar(&o.sweepMode, "sweep", false, "run a size/trial sweep instead of a single solve")
	flag.StringVar(&o.sizes, "sizes", "100,250,500", "comma-separated instance sizes for -sweep")
	flag.IntVar(&o.trials, "trials", 3, "trials per size for -sweep")
	flag.Parse()

	if err := os.MkdirAll(o.outdir, 0o755); err != nil {
		log.Fatalf("create outdir: %v", err)
	}

	stem := o.outstem
	if stem == "" {
		stem = buildStem(o)
	}
	if err := writeEnvLog(o, stem); err != nil {
		log.Fatalf("write env log: %v", err)
	}

	if o.sweepMode {
		runSweep(o, stem)
		return
	}
	runOnce(o, stem)
}

func buildStem(o options) string {
	parts := []string{
		fmt.Sprintf("n%d", o.n),
		fmt.Sprintf("k%d", o.k),
		fmt.Sprintf("cap%d", o.cap),
		fmt.Sprintf("seed%d", o.seed),
		fmt.Sprintf("sa%d", int(o.saTime)),
	}
	if o.tw {
		parts = append(parts, "tw")
	}
	if o.noLocal {
		parts = append(parts, "nolocal")
	}
	if o.tag != "" {
		parts = append(parts, o.tag)
	}
	if o.stamp {
		parts = append(parts, time.Now().Format("20060102-150405"))
	}
	return strings.Join(parts, "_")
}

// writeEnvLog records the toolchain and platform so result files can be
// traced back to the machine that produced them.
func writeEnvLog(o options, stem string) error {
	env := map[string]any{
		"go":     runtime.Version(),
		"system": runtime.GOOS + "/" + runtime.GOARCH,
		"cpus":   runtime.NumCPU(),
		"build":  buildinfo.Info(),
		"seed":   o.seed,
	}
	name := "env.json"
	if o.perRunEnv {
		name = "env_" + stem + ".json"
	}
	return writeJSONFile(filepath.Join(o.outdir, name), env)
}

func runOnce(o options, stem string) {
	cfg := solver.Config{
		SATime:          time.Duration(o.saTime * float64(time.Second)),
		SkipLocalSearch: o.noLocal,
		Seed:            o.seed,
	}
	inst := solver.Generate(model.GeneratorSpec{
		N:           o.n,
		Seed:        o.seed,
		Capacity:    o.cap,
		Vehicles:    o.k,
		TimeWindows: o.tw,
		LambdaTW:    o.lambda,
		MuFair:      o.mu,
	})

	res, err := solver.Solve(inst, cfg)
	if err != nil {
		log.Fatalf("solve: %v", err)
	}

	result := map[string]any{
		"n": o.n, "k": o.k, "cap": o.cap, "seed": o.seed,
		"tw": o.tw, "sa_time": o.saTime,
		"lambda_tw": o.lambda, "mu_fair": o.mu,
		"no_local": o.noLocal,
		"tag":      o.tag, "stamp": o.stamp,
		"cost":        res.Cost,
		"runtime_sec": res.Runtime.Seconds(),
		"feasible":    res.Feasible,
		"routes":      res.Routes,
	}
	jsonPath := filepath.Join(o.outdir, "run_"+stem+".json")
	if err := writeJSONFile(jsonPath, result); err != nil {
		log.Fatalf("write result: %v", err)
	}
	fmt.Printf("[OK] cost=%.2f runtime=%.2fs -> %s\n", res.Cost, res.Runtime.Seconds(), jsonPath)
}

func runSweep(o options, stem string) {
	sizes, err := parseSizes(o.sizes)
	if err != nil {
		log.Fatalf("parse -sizes: %v", err)
	}
	rows, err := sweep.Run(sweep.Config{
		Sizes:       sizes,
		Trials:      o.trials,
		Vehicles:    o.k,
		Capacity:    o.cap,
		TimeWindows: o.tw,
		LambdaTW:    o.lambda,
		MuFair:      o.mu,
		SeedBase:    o.seed,
		Solver: solver.Config{
			SATime:          time.Duration(o.saTime * float64(time.Second)),
			SkipLocalSearch: o.noLocal,
		},
		Logf: log.Printf,
	})
	if err != nil {
		log.Fatalf("sweep: %v", err)
	}

	csvPath := filepath.Join(o.outdir, "sweep_"+stem+".csv")
	f, err := os.Create(csvPath)
	if err != nil {
		log.Fatalf("create csv: %v", err)
	}
	if err := sweep.WriteCSV(f, rows); err != nil {
		f.Close()
		log.Fatalf("write csv: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("close csv: %v", err)
	}

	for _, s := range sweep.Summarize(rows) {
		fmt.Printf("[OK] n=%d trials=%d mean_cost=%.2f mean_runtime=%.2fs\n",
			s.N, s.Trials, s.MeanCost, s.MeanRuntimeSec)
	}
	fmt.Printf("[OK] sweep -> %s\n", csvPath)
}

func parseSizes(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("bad size %q", p)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no sizes given")
	}
	return out, nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
