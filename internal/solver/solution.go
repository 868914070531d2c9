package solver

import (
	"fmt"

	"routesolver/internal/model"
)

// Route is an ordered customer-id sequence with the depot implicit at both
// ends. Load and Dist are caches maintained under every mutation.
type Route struct {
	Seq  []int
	Load int
	Dist float64
}

type position struct {
	route int
	idx   int
}

// Solution is the mutable state shared by the constructor, the local search,
// and the annealer. It keeps an explicit customer -> (route, position) index
// so moves never need a linear scan to find a customer. A Solution is owned
// by exactly one component at a time.
type Solution struct {
	m      *Matrix
	cap    int
	fleet  int
	demand []int // by customer id, demand[0] unused
	Routes []*Route
	pos    []position // by customer id, pos[0] unused
}

// NewSolution assembles a Solution from raw route sequences, computing
// loads, cached distances, and the position index.
func NewSolution(inst *model.Instance, m *Matrix, seqs [][]int) *Solution {
	n := m.Customers()
	s := &Solution{
		m:      m,
		cap:    inst.Capacity,
		fleet:  inst.Vehicles,
		demand: make([]int, n+1),
		pos:    make([]position, n+1),
	}
	for _, c := range inst.Customers {
		s.demand[c.ID] = c.Demand
	}
	s.Routes = make([]*Route, len(seqs))
	for ri, seq := range seqs {
		r := &Route{Seq: append([]int(nil), seq...)}
		for idx, c := range r.Seq {
			r.Load += s.demand[c]
			s.pos[c] = position{route: ri, idx: idx}
		}
		r.Dist = s.routeDist(r.Seq)
		s.Routes[ri] = r
	}
	return s
}

func (s *Solution) routeDist(seq []int) float64 {
	if len(seq) == 0 {
		return 0
	}
	d := s.m.Dist(0, seq[0])
	for i := 1; i < len(seq); i++ {
		d += s.m.Dist(seq[i-1], seq[i])
	}
	return d + s.m.Dist(seq[len(seq)-1], 0)
}

// node returns the id at index i of route r, with out-of-range indices
// mapping to the implicit depot.
func (r *Route) node(i int) int {
	if i < 0 || i >= len(r.Seq) {
		return 0
	}
	return r.Seq[i]
}

// TotalDist sums the cached route distances.
func (s *Solution) TotalDist() float64 {
	t := 0.0
	for _, r := range s.Routes {
		t += r.Dist
	}
	return t
}

// Loads returns the per-route loads, including empty routes.
func (s *Solution) Loads() []int {
	out := make([]int, len(s.Routes))
	for i, r := range s.Routes {
		out[i] = r.Load
	}
	return out
}

// NonEmpty counts routes that serve at least one customer.
func (s *Solution) NonEmpty() int {
	n := 0
	for _, r := range s.Routes {
		if len(r.Seq) > 0 {
			n++
		}
	}
	return n
}

// Feasible reports whether every route respects capacity and the non-empty
// routes fit the fleet.
func (s *Solution) Feasible() bool {
	for _, r := range s.Routes {
		if r.Load > s.cap {
			return false
		}
	}
	return s.NonEmpty() <= s.fleet
}

// RouteSeqs returns copies of the non-empty route sequences, in route order.
func (s *Solution) RouteSeqs() [][]int {
	out := make([][]int, 0, len(s.Routes))
	for _, r := range s.Routes {
		if len(r.Seq) > 0 {
			out = append(out, append([]int(nil), r.Seq...))
		}
	}
	return out
}

// Clone snapshots the whole solution so the annealer can roll back to the
// best state found.
func (s *Solution) Clone() *Solution {
	c := &Solution{
		m:      s.m,
		cap:    s.cap,
		fleet:  s.fleet,
		demand: s.demand, // read-only, shared
		Routes: make([]*Route, len(s.Routes)),
		pos:    append([]position(nil), s.pos...),
	}
	for i, r := range s.Routes {
		c.Routes[i] = &Route{
			Seq:  append([]int(nil), r.Seq...),
			Load: r.Load,
			Dist: r.Dist,
		}
	}
	return c
}

// twoOptMove reverses Seq[i..k] of one route, replacing edges (a,b) and
// (c,d) with (a,c) and (b,d). delta is the precomputed objective change.
type twoOptMove struct {
	route int
	i, k  int
	delta float64
}

// relocateMove extracts the customer at (from, i) and reinserts it at slot j
// of route to, where j indexes the destination sequence after removal.
type relocateMove struct {
	from, i int
	to, j   int
	delta   float64
}

func (s *Solution) applyTwoOpt(mv twoOptMove) {
	r := s.Routes[mv.route]
	a, b := r.node(mv.i-1), r.Seq[mv.i]
	c, d := r.Seq[mv.k], r.node(mv.k+1)
	for lo, hi := mv.i, mv.k; lo < hi; lo, hi = lo+1, hi-1 {
		r.Seq[lo], r.Seq[hi] = r.Seq[hi], r.Seq[lo]
	}
	for idx := mv.i; idx <= mv.k; idx++ {
		s.pos[r.Seq[idx]].idx = idx
	}
	// Only the two boundary edges change length; the reversed segment's
	// internal edges are symmetric.
	r.Dist += s.m.Dist(a, c) + s.m.Dist(b, d) - s.m.Dist(a, b) - s.m.Dist(c, d)
}

func (s *Solution) applyRelocate(mv relocateMove) {
	from := s.Routes[mv.from]
	cust := from.Seq[mv.i]

	from.Seq = append(from.Seq[:mv.i], from.Seq[mv.i+1:]...)
	from.Load -= s.demand[cust]

	to := s.Routes[mv.to]
	to.Seq = append(to.Seq, 0)
	copy(to.Seq[mv.j+1:], to.Seq[mv.j:])
	to.Seq[mv.j] = cust
	to.Load += s.demand[cust]

	from.Dist = s.routeDist(from.Seq)
	if mv.to != mv.from {
		to.Dist = s.routeDist(to.Seq)
	}

	for idx := mv.i; idx < len(from.Seq); idx++ {
		s.pos[from.Seq[idx]] = position{route: mv.from, idx: idx}
	}
	for idx := mv.j; idx < len(to.Seq); idx++ {
		s.pos[to.Seq[idx]] = position{route: mv.to, idx: idx}
	}
}

// Validate checks the solution invariants: every customer on exactly one
// route at its indexed position, loads and cached distances matching a full
// recompute, and no route over capacity. Used by tests and as a consistency
// check after construction.
func (s *Solution) Validate() error {
	seen := make([]bool, len(s.demand))
	for ri, r := range s.Routes {
		load := 0
		for idx, c := range r.Seq {
			if c < 1 || c >= len(s.demand) {
				return fmt.Errorf("route %d: bad customer id %d", ri, c)
			}
			if seen[c] {
				return fmt.Errorf("customer %d appears in more than one position", c)
			}
			seen[c] = true
			if p := s.pos[c]; p.route != ri || p.idx != idx {
				return fmt.Errorf("customer %d: index says (%d,%d), found at (%d,%d)", c, p.route, p.idx, ri, idx)
			}
			load += s.demand[c]
		}
		if load != r.Load {
			return fmt.Errorf("route %d: cached load %d, actual %d", ri, r.Load, load)
		}
		if load > s.cap {
			return fmt.Errorf("route %d: load %d exceeds capacity %d", ri, load, s.cap)
		}
		if want := s.routeDist(r.Seq); !closeEnough(r.Dist, want) {
			return fmt.Errorf("route %d: cached dist %g, actual %g", ri, r.Dist, want)
		}
	}
	for c := 1; c < len(s.demand); c++ {
		if !seen[c] {
			return fmt.Errorf("customer %d not on any route", c)
		}
	}
	return nil
}

func closeEnough(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	scale := 1.0
	if b > 1 || b < -1 {
		if b < 0 {
			scale = -b
		} else {
			scale = b
		}
	}
	return diff <= 1e-7*scale
}
