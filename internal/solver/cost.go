package solver

import (
	"routesolver/internal/model"
)

// Evaluator is the stateless objective function
//
//	cost = total distance + lambda * time-window lateness + mu * fairness
//
// used both for full recomputation and as the ground truth the incremental
// move deltas must match. With lambda = mu = 0 (the default) the objective
// reduces to pure distance and every delta is O(1); with lambda > 0 the
// lateness of the affected routes is recomputed in O(route length), with
// mu > 0 the load-variance term is recomputed in O(routes).
type Evaluator struct {
	m       *Matrix
	lambda  float64
	mu      float64
	windows []*model.TimeWindow // by customer id, nil when unconstrained
	hasTW   bool
}

// NewEvaluator captures the instance's weights and time windows.
func NewEvaluator(inst *model.Instance, m *Matrix) *Evaluator {
	e := &Evaluator{
		m:       m,
		lambda:  inst.LambdaTW,
		mu:      inst.MuFair,
		windows: make([]*model.TimeWindow, m.Customers()+1),
	}
	for _, c := range inst.Customers {
		if c.Window != nil {
			e.windows[c.ID] = c.Window
			e.hasTW = true
		}
	}
	return e
}

// Cost fully recomputes the objective for a solution.
func (e *Evaluator) Cost(s *Solution) float64 {
	total := 0.0
	for _, r := range s.Routes {
		total += e.routeDistance(r.Seq)
	}
	if e.lateActive() {
		for _, r := range s.Routes {
			total += e.lambda * e.lateness(r.Seq)
		}
	}
	if e.mu > 0 {
		total += e.mu * e.fairness(s.Loads())
	}
	return total
}

func (e *Evaluator) routeDistance(seq []int) float64 {
	if len(seq) == 0 {
		return 0
	}
	d := e.m.Dist(0, seq[0])
	for i := 1; i < len(seq); i++ {
		d += e.m.Dist(seq[i-1], seq[i])
	}
	return d + e.m.Dist(seq[len(seq)-1], 0)
}

func (e *Evaluator) lateActive() bool { return e.lambda > 0 && e.hasTW }

// lateness accumulates max(0, arrival - close) along the visit order.
// Travel time equals distance; waiting before a window opens is free.
func (e *Evaluator) lateness(seq []int) float64 {
	t := 0.0
	penalty := 0.0
	prev := 0
	for _, c := range seq {
		t += e.m.Dist(prev, c)
		if w := e.windows[c]; w != nil {
			if t < w.Open {
				t = w.Open
			}
			if t > w.Close {
				penalty += t - w.Close
			}
			t += w.Service
		}
		prev = c
	}
	return penalty
}

// latenessReversed walks seq as if seq[i..k] were reversed, without
// materializing the candidate order.
func (e *Evaluator) latenessReversed(seq []int, i, k int) float64 {
	t := 0.0
	penalty := 0.0
	prev := 0
	for idx := range seq {
		c := seq[idx]
		if idx >= i && idx <= k {
			c = seq[k-(idx-i)]
		}
		t += e.m.Dist(prev, c)
		if w := e.windows[c]; w != nil {
			if t < w.Open {
				t = w.Open
			}
			if t > w.Close {
				penalty += t - w.Close
			}
			t += w.Service
		}
		prev = c
	}
	return penalty
}

// fairness is the population variance of delivered load across non-empty
// routes. Empty routes are spare vehicles and do not count.
func (e *Evaluator) fairness(loads []int) float64 {
	n := 0
	sum := 0.0
	for _, l := range loads {
		if l > 0 {
			n++
			sum += float64(l)
		}
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	v := 0.0
	for _, l := range loads {
		if l > 0 {
			d := float64(l) - mean
			v += d * d
		}
	}
	return v / float64(n)
}

// TwoOptDelta prices reversing Seq[i..k] of route ri. Only the two boundary
// edges change, so the distance part is four matrix lookups.
func (e *Evaluator) TwoOptDelta(s *Solution, ri, i, k int) float64 {
	r := s.Routes[ri]
	a, b := r.node(i-1), r.Seq[i]
	c, d := r.Seq[k], r.node(k+1)
	delta := e.m.Dist(a, c) + e.m.Dist(b, d) - e.m.Dist(a, b) - e.m.Dist(c, d)
	if e.lateActive() {
		delta += e.lambda * (e.latenessReversed(r.Seq, i, k) - e.lateness(r.Seq))
	}
	// Loads are untouched by 2-opt, so the fairness term cancels.
	return delta
}

// RelocateDelta prices moving the customer at (from, i) to slot j of route
// to, where j indexes the destination sequence after removal. The second
// return is false when the destination would exceed capacity; such moves
// are rejected locally and never applied.
func (e *Evaluator) RelocateDelta(s *Solution, from, i, to, j int) (float64, bool) {
	fr := s.Routes[from]
	cust := fr.Seq[i]
	if to != from && s.Routes[to].Load+s.demand[cust] > s.cap {
		return 0, false
	}

	p, n := fr.node(i-1), fr.node(i+1)
	removeGain := e.m.Dist(p, cust) + e.m.Dist(cust, n) - e.m.Dist(p, n)

	var u, v int
	if to == from {
		// Neighbors in the source sequence with position i skipped.
		last := len(fr.Seq) - 1 // length after removal
		u, v = 0, 0
		if j > 0 {
			u = fr.Seq[skipIdx(j-1, i)]
		}
		if j < last {
			v = fr.Seq[skipIdx(j, i)]
		}
	} else {
		tr := s.Routes[to]
		u, v = tr.node(j-1), tr.node(j)
	}
	insertCost := e.m.Dist(u, cust) + e.m.Dist(cust, v) - e.m.Dist(u, v)
	delta := insertCost - removeGain

	if e.lateActive() {
		without := removeAt(fr.Seq, i)
		if to == from {
			after := insertAt(without, j, cust)
			delta += e.lambda * (e.lateness(after) - e.lateness(fr.Seq))
		} else {
			toAfter := insertAt(s.Routes[to].Seq, j, cust)
			delta += e.lambda * (e.lateness(without) + e.lateness(toAfter) -
				e.lateness(fr.Seq) - e.lateness(s.Routes[to].Seq))
		}
	}
	if e.mu > 0 && to != from {
		before := s.Loads()
		after := append([]int(nil), before...)
		after[from] -= s.demand[cust]
		after[to] += s.demand[cust]
		delta += e.mu * (e.fairness(after) - e.fairness(before))
	}
	return delta, true
}

// skipIdx maps an index over a sequence with position skip removed back to
// the original sequence.
func skipIdx(idx, skip int) int {
	if idx >= skip {
		return idx + 1
	}
	return idx
}

func removeAt(seq []int, i int) []int {
	out := make([]int, 0, len(seq)-1)
	out = append(out, seq[:i]...)
	return append(out, seq[i+1:]...)
}

func insertAt(seq []int, j, c int) []int {
	out := make([]int, 0, len(seq)+1)
	out = append(out, seq[:j]...)
	out = append(out, c)
	return append(out, seq[j:]...)
}
