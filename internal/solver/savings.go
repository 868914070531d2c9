package solver

import (
	"sort"

	"routesolver/internal/model"
)

// saving scores serving customers i and j consecutively on one route
// instead of two depot round trips.
type saving struct {
	val  float64
	i, j int
}

// ClarkeWright runs the classic sequential savings construction: one route
// per customer, then merges in descending-savings order whenever both
// customers sit at route endpoints and the combined load fits the vehicle.
// Ties are broken by ascending (i, j) so the construction is deterministic.
//
// The returned sequences may number more than the fleet size; that is the
// caller's feasibility signal, routes are never silently dropped.
func ClarkeWright(inst *model.Instance, m *Matrix) [][]int {
	n := m.Customers()
	if n == 0 {
		return nil
	}

	seqs := make([][]int, n) // nil marks a merged-away route
	loads := make([]int, n)
	routeOf := make([]int, n+1)
	for _, c := range inst.Customers {
		ri := c.ID - 1
		seqs[ri] = []int{c.ID}
		loads[ri] = c.Demand
		routeOf[c.ID] = ri
	}

	savings := make([]saving, 0, n*(n-1)/2)
	for i := 1; i <= n; i++ {
		for j := i + 1; j <= n; j++ {
			savings = append(savings, saving{
				val: m.Dist(0, i) + m.Dist(0, j) - m.Dist(i, j),
				i:   i,
				j:   j,
			})
		}
	}
	sort.Slice(savings, func(a, b int) bool {
		if savings[a].val != savings[b].val {
			return savings[a].val > savings[b].val
		}
		if savings[a].i != savings[b].i {
			return savings[a].i < savings[b].i
		}
		return savings[a].j < savings[b].j
	})

	for _, sv := range savings {
		ri, rj := routeOf[sv.i], routeOf[sv.j]
		if ri == rj {
			continue
		}
		a, b := seqs[ri], seqs[rj]
		if a[0] != sv.i && a[len(a)-1] != sv.i {
			continue
		}
		if b[0] != sv.j && b[len(b)-1] != sv.j {
			continue
		}
		if loads[ri]+loads[rj] > inst.Capacity {
			continue
		}

		// Orient so i is the tail of its route and j the head of the
		// other, then splice: [.. i] + [j ..].
		if a[0] == sv.i {
			reverseInts(a)
		}
		if b[len(b)-1] == sv.j {
			reverseInts(b)
		}
		seqs[ri] = append(a, b...)
		seqs[rj] = nil
		loads[ri] += loads[rj]
		for _, c := range b {
			routeOf[c] = ri
		}
	}

	out := make([][]int, 0, n)
	for _, seq := range seqs {
		if seq != nil {
			out = append(out, seq)
		}
	}
	return out
}

func reverseInts(s []int) {
	for lo, hi := 0, len(s)-1; lo < hi; lo, hi = lo+1, hi-1 {
		s[lo], s[hi] = s[hi], s[lo]
	}
}
