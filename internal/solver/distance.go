package solver

import (
	"errors"
	"fmt"
	"math"

	"routesolver/internal/model"
)

// ErrInvalidInstance marks malformed input: bad coordinates, non-positive
// capacity or fleet size, negative demand, or customer IDs that are not 1..N.
var ErrInvalidInstance = errors.New("invalid instance")

// Matrix is a dense symmetric Euclidean distance matrix over the instance's
// nodes. Index 0 is the depot; customers occupy 1..N. Built once per
// instance and read-only afterwards, so it is safe to share across solver
// runs.
type Matrix struct {
	n int // customers, excluding depot
	d [][]float64
}

// NewMatrix validates the instance and precomputes all pairwise distances
// in O(N^2). N=0 is legal (an empty instance solves trivially).
func NewMatrix(inst *model.Instance) (*Matrix, error) {
	if inst == nil {
		return nil, fmt.Errorf("%w: nil instance", ErrInvalidInstance)
	}
	if inst.Vehicles <= 0 {
		return nil, fmt.Errorf("%w: vehicles must be > 0, got %d", ErrInvalidInstance, inst.Vehicles)
	}
	if inst.Capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be > 0, got %d", ErrInvalidInstance, inst.Capacity)
	}
	if !finite(inst.Depot.X) || !finite(inst.Depot.Y) {
		return nil, fmt.Errorf("%w: depot coordinates not finite", ErrInvalidInstance)
	}
	for i, c := range inst.Customers {
		if c.ID != i+1 {
			return nil, fmt.Errorf("%w: customer %d has id %d, want %d", ErrInvalidInstance, i, c.ID, i+1)
		}
		if !finite(c.X) || !finite(c.Y) {
			return nil, fmt.Errorf("%w: customer %d coordinates not finite", ErrInvalidInstance, c.ID)
		}
		if c.Demand < 0 {
			return nil, fmt.Errorf("%w: customer %d has negative demand %d", ErrInvalidInstance, c.ID, c.Demand)
		}
		if w := c.Window; w != nil && (w.Close < w.Open || w.Service < 0) {
			return nil, fmt.Errorf("%w: customer %d has malformed time window", ErrInvalidInstance, c.ID)
		}
	}

	n := len(inst.Customers)
	xs := make([]float64, n+1)
	ys := make([]float64, n+1)
	xs[0], ys[0] = inst.Depot.X, inst.Depot.Y
	for _, c := range inst.Customers {
		xs[c.ID], ys[c.ID] = c.X, c.Y
	}

	d := make([][]float64, n+1)
	for i := range d {
		d[i] = make([]float64, n+1)
	}
	for i := 0; i <= n; i++ {
		for j := i + 1; j <= n; j++ {
			dx := xs[i] - xs[j]
			dy := ys[i] - ys[j]
			v := math.Sqrt(dx*dx + dy*dy)
			d[i][j] = v
			d[j][i] = v
		}
	}
	return &Matrix{n: n, d: d}, nil
}

// Dist returns the distance between nodes i and j in O(1).
func (m *Matrix) Dist(i, j int) float64 { return m.d[i][j] }

// Customers returns N, the number of customer nodes.
func (m *Matrix) Customers() int { return m.n }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
