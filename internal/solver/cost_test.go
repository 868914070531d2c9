package solver

import (
	"math"
	"testing"

	"routesolver/internal/model"
)

func buildSolution(t *testing.T, inst *model.Instance) (*Solution, *Evaluator) {
	t.Helper()
	m := mustMatrix(t, inst)
	eval := NewEvaluator(inst, m)
	s := NewSolution(inst, m, ClarkeWright(inst, m))
	if err := s.Validate(); err != nil {
		t.Fatalf("constructed solution invalid: %v", err)
	}
	return s, eval
}

func TestCostPureDistance(t *testing.T) {
	inst := &model.Instance{
		Depot:     model.Point{X: 0, Y: 0},
		Customers: []model.Customer{{ID: 1, X: 3, Y: 4, Demand: 1}},
		Capacity:  10,
		Vehicles:  1,
	}
	s, eval := buildSolution(t, inst)
	if got := eval.Cost(s); math.Abs(got-10) > 1e-9 {
		t.Fatalf("cost = %g, want 10 (depot round trip)", got)
	}
}

func TestLatenessHandComputed(t *testing.T) {
	// One customer at distance 5 whose window closed at time 3:
	// arrival 5, lateness 2.
	inst := &model.Instance{
		Depot: model.Point{X: 0, Y: 0},
		Customers: []model.Customer{
			{ID: 1, X: 3, Y: 4, Demand: 1, Window: &model.TimeWindow{Open: 0, Close: 3}},
		},
		Capacity: 10,
		Vehicles: 1,
		LambdaTW: 2,
	}
	s, eval := buildSolution(t, inst)
	want := 10 + 2*2.0
	if got := eval.Cost(s); math.Abs(got-want) > 1e-9 {
		t.Fatalf("cost = %g, want %g", got, want)
	}
}

func TestWaitingIsFree(t *testing.T) {
	inst := &model.Instance{
		Depot: model.Point{X: 0, Y: 0},
		Customers: []model.Customer{
			{ID: 1, X: 3, Y: 4, Demand: 1, Window: &model.TimeWindow{Open: 50, Close: 60}},
		},
		Capacity: 10,
		Vehicles: 1,
		LambdaTW: 1,
	}
	s, eval := buildSolution(t, inst)
	if got := eval.Cost(s); math.Abs(got-10) > 1e-9 {
		t.Fatalf("cost = %g, want 10 (early arrival waits for free)", got)
	}
}

func TestServiceTimePropagates(t *testing.T) {
	// Two customers on a line; a long service at the first makes the
	// second late even though travel alone would arrive in time.
	inst := &model.Instance{
		Depot: model.Point{X: 0, Y: 0},
		Customers: []model.Customer{
			{ID: 1, X: 1, Y: 0, Demand: 1, Window: &model.TimeWindow{Open: 0, Close: 100, Service: 10}},
			{ID: 2, X: 2, Y: 0, Demand: 1, Window: &model.TimeWindow{Open: 0, Close: 5}},
		},
		Capacity: 10,
		Vehicles: 1,
		LambdaTW: 1,
	}
	m := mustMatrix(t, inst)
	eval := NewEvaluator(inst, m)
	// Visit 1 then 2: arrive 1 at t=1, serve until 11, arrive 2 at t=12,
	// lateness 7.
	if got := eval.lateness([]int{1, 2}); math.Abs(got-7) > 1e-9 {
		t.Fatalf("lateness = %g, want 7", got)
	}
}

func TestFairnessVariance(t *testing.T) {
	e := &Evaluator{}
	if got := e.fairness([]int{4, 6}); math.Abs(got-1) > 1e-9 {
		t.Errorf("fairness(4,6) = %g, want 1", got)
	}
	if got := e.fairness([]int{5, 5, 0}); got != 0 {
		t.Errorf("fairness(5,5,empty) = %g, want 0 (empty routes excluded)", got)
	}
	if got := e.fairness(nil); got != 0 {
		t.Errorf("fairness(nil) = %g, want 0", got)
	}
}

// Deltas must agree with full recomputation for every candidate move,
// including under active time-window and fairness terms.
func TestDeltaMatchesFullRecompute(t *testing.T) {
	instances := map[string]*model.Instance{
		"distance only": Generate(model.GeneratorSpec{N: 20, Seed: 5, Vehicles: 6, Capacity: 40}),
		"tw and fair": Generate(model.GeneratorSpec{
			N: 20, Seed: 5, Vehicles: 6, Capacity: 40,
			TimeWindows: true, LambdaTW: 1.5, MuFair: 0.25,
		}),
	}
	for name, inst := range instances {
		t.Run(name, func(t *testing.T) {
			s, eval := buildSolution(t, inst)
			before := eval.Cost(s)

			for ri, r := range s.Routes {
				for i := 0; i < len(r.Seq)-1; i++ {
					for k := i + 1; k < len(r.Seq); k++ {
						delta := eval.TwoOptDelta(s, ri, i, k)
						c := s.Clone()
						c.applyTwoOpt(twoOptMove{route: ri, i: i, k: k})
						got := eval.Cost(c) - before
						if math.Abs(got-delta) > 1e-7 {
							t.Fatalf("2-opt (%d,%d,%d): delta %g, recompute %g", ri, i, k, delta, got)
						}
					}
				}
			}

			for from, fr := range s.Routes {
				for i := range fr.Seq {
					for to, tr := range s.Routes {
						slots := len(tr.Seq)
						if to != from {
							slots++
						}
						for j := 0; j < slots; j++ {
							if to == from && j == i {
								continue
							}
							delta, ok := eval.RelocateDelta(s, from, i, to, j)
							if !ok {
								continue
							}
							c := s.Clone()
							c.applyRelocate(relocateMove{from: from, i: i, to: to, j: j})
							if err := c.Validate(); err != nil {
								t.Fatalf("relocate (%d,%d)->(%d,%d): %v", from, i, to, j, err)
							}
							got := eval.Cost(c) - before
							if math.Abs(got-delta) > 1e-7 {
								t.Fatalf("relocate (%d,%d)->(%d,%d): delta %g, recompute %g", from, i, to, j, delta, got)
							}
						}
					}
				}
			}
		})
	}
}
