package solver

// improveEps is the strict-improvement threshold; moves with deltas inside
// the tolerance are treated as no-ops so the descent cannot cycle on
// floating-point noise.
const improveEps = 1e-9

// LocalSearch is the deterministic greedy descent over the 2-opt and
// relocate neighborhoods. Every accepted move strictly decreases the
// objective, which bounds the loop: cost is non-negative and decreases by
// at least improveEps per move.
type LocalSearch struct {
	eval *Evaluator
}

func NewLocalSearch(eval *Evaluator) *LocalSearch {
	return &LocalSearch{eval: eval}
}

// Descend applies improving moves until a full pass over both neighborhoods
// accepts nothing. Returns the number of accepted moves.
func (ls *LocalSearch) Descend(s *Solution) int {
	applied := 0
	for {
		n := ls.twoOptPass(s)
		if ls.relocatePass(s) {
			n++
		}
		applied += n
		if n == 0 {
			return applied
		}
	}
}

// twoOptPass applies, per route, the single best improving segment reversal.
// Candidates are scanned in ascending (route, i, k) order; ties keep the
// earliest candidate, so the pass is deterministic.
func (ls *LocalSearch) twoOptPass(s *Solution) int {
	applied := 0
	for ri, r := range s.Routes {
		if len(r.Seq) < 2 {
			continue // nothing to reverse
		}
		best := twoOptMove{delta: -improveEps}
		found := false
		for i := 0; i < len(r.Seq)-1; i++ {
			for k := i + 1; k < len(r.Seq); k++ {
				delta := ls.eval.TwoOptDelta(s, ri, i, k)
				if delta < best.delta {
					best = twoOptMove{route: ri, i: i, k: k, delta: delta}
					found = true
				}
			}
		}
		if found {
			s.applyTwoOpt(best)
			applied++
		}
	}
	return applied
}

// relocatePass applies the single best improving relocation across the
// whole solution. Candidate order is ascending source route, source
// position, destination route, insertion slot (slots index the destination
// after removal); the first-lowest delta wins, which pins down determinism.
func (ls *LocalSearch) relocatePass(s *Solution) bool {
	best := relocateMove{delta: -improveEps}
	found := false
	for from, fr := range s.Routes {
		for i := range fr.Seq {
			for to, tr := range s.Routes {
				slots := len(tr.Seq)
				if to != from {
					slots++ // removal does not shorten the destination
				}
				for j := 0; j < slots; j++ {
					if to == from && j == i {
						continue // reinserts in place
					}
					delta, ok := ls.eval.RelocateDelta(s, from, i, to, j)
					if !ok {
						continue
					}
					if delta < best.delta {
						best = relocateMove{from: from, i: i, to: to, j: j, delta: delta}
						found = true
					}
				}
			}
		}
	}
	if found {
		s.applyRelocate(best)
	}
	return found
}
