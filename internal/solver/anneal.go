package solver

import (
	"math"
	"math/rand"
	"time"
)

const (
	tempFloor     = 1e-12 // keeps exp(-delta/T) well-defined
	clockEvery    = 64    // iterations between monotonic-clock polls
	progressEvery = 256
)

// AnnealConfig controls the simulated-annealing stage. Termination is
// time-driven; MaxIters is an additional cap used when exact
// reproducibility across machines matters (the wall clock is the only
// nondeterministic input).
type AnnealConfig struct {
	Budget   time.Duration
	MaxIters int
	InitTemp float64 // default 1.0
	Cooling  float64 // default 0.997, geometric
	Seed     int64
	Progress func(ProgressEvent)
}

// ProgressEvent is a periodic snapshot of the annealing state.
type ProgressEvent struct {
	Iteration int     `json:"iteration"`
	Temp      float64 `json:"temp"`
	Current   float64 `json:"current"`
	Best      float64 `json:"best"`
}

// AnnealStats counts what the run did.
type AnnealStats struct {
	Iterations int
	Accepted   int
	Improved   int
}

// Anneal explores beyond the local optimum under a wall-clock budget.
// Proposals alternate between the 2-opt and relocate neighborhoods against
// the current solution; uphill moves are accepted with probability
// exp(-delta/T) under geometric cooling. The best solution seen is
// snapshotted on every strict improvement and returned, so the result is
// never worse than the input. All randomness comes from the single seeded
// generator, never from package-level state.
func Anneal(s *Solution, eval *Evaluator, cfg AnnealConfig) (*Solution, AnnealStats) {
	var st AnnealStats
	if cfg.Budget <= 0 && cfg.MaxIters <= 0 {
		return s, st
	}

	T := cfg.InitTemp
	if T <= 0 {
		T = 1.0
	}
	alpha := cfg.Cooling
	if alpha <= 0 || alpha >= 1 {
		alpha = 0.997
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	cur := s
	curCost := eval.Cost(cur)
	best := cur.Clone()
	bestCost := curCost

	deadline := time.Now().Add(cfg.Budget)
	for it := 0; ; it++ {
		if cfg.MaxIters > 0 && it >= cfg.MaxIters {
			break
		}
		if it%clockEvery == 0 && cfg.Budget > 0 && !time.Now().Before(deadline) {
			break
		}
		st.Iterations++

		var (
			delta float64
			have  bool
			isRev bool
			rev   twoOptMove
			rel   relocateMove
		)
		if it%2 == 0 {
			rev, have = proposeTwoOpt(cur, rng)
			if have {
				delta = eval.TwoOptDelta(cur, rev.route, rev.i, rev.k)
				isRev = true
			}
		} else {
			rel, have = proposeRelocate(cur, rng)
			if have {
				delta, have = eval.RelocateDelta(cur, rel.from, rel.i, rel.to, rel.j)
			}
		}

		if have && (delta <= 0 || rng.Float64() < math.Exp(-delta/T)) {
			if isRev {
				cur.applyTwoOpt(rev)
			} else {
				cur.applyRelocate(rel)
			}
			curCost += delta
			st.Accepted++
			if curCost < bestCost-improveEps {
				// Resync against float drift before trusting the snapshot.
				curCost = eval.Cost(cur)
				if curCost < bestCost-improveEps {
					best = cur.Clone()
					bestCost = curCost
					st.Improved++
				}
			}
		}

		T *= alpha
		if T < tempFloor {
			T = tempFloor
		}
		if cfg.Progress != nil && it%progressEvery == 0 {
			cfg.Progress(ProgressEvent{Iteration: it, Temp: T, Current: curCost, Best: bestCost})
		}
	}
	return best, st
}

func proposeTwoOpt(s *Solution, rng *rand.Rand) (twoOptMove, bool) {
	eligible := make([]int, 0, len(s.Routes))
	for ri, r := range s.Routes {
		if len(r.Seq) >= 2 {
			eligible = append(eligible, ri)
		}
	}
	if len(eligible) == 0 {
		return twoOptMove{}, false
	}
	ri := eligible[rng.Intn(len(eligible))]
	l := len(s.Routes[ri].Seq)
	i := rng.Intn(l - 1)
	k := i + 1 + rng.Intn(l-i-1)
	return twoOptMove{route: ri, i: i, k: k}, true
}

func proposeRelocate(s *Solution, rng *rand.Rand) (relocateMove, bool) {
	n := len(s.demand) - 1
	if n == 0 || len(s.Routes) == 0 {
		return relocateMove{}, false
	}
	cust := 1 + rng.Intn(n)
	p := s.pos[cust]
	to := rng.Intn(len(s.Routes))
	slots := len(s.Routes[to].Seq)
	if to != p.route {
		slots++
	}
	if slots == 0 {
		return relocateMove{}, false
	}
	j := rng.Intn(slots)
	if to == p.route && j == p.idx {
		return relocateMove{}, false // reinserts in place
	}
	return relocateMove{from: p.route, i: p.idx, to: to, j: j}, true
}
