package solver

import (
	"errors"
	"math"
	"testing"

	"routesolver/internal/model"
)

func validInstance() *model.Instance {
	return &model.Instance{
		Depot: model.Point{X: 0, Y: 0},
		Customers: []model.Customer{
			{ID: 1, X: 3, Y: 4, Demand: 2},
			{ID: 2, X: 0, Y: 5, Demand: 3},
		},
		Capacity: 10,
		Vehicles: 2,
	}
}

func TestNewMatrixValidation(t *testing.T) {
	cases := map[string]func(*model.Instance){
		"zero vehicles":   func(i *model.Instance) { i.Vehicles = 0 },
		"zero capacity":   func(i *model.Instance) { i.Capacity = 0 },
		"nan depot":       func(i *model.Instance) { i.Depot.X = math.NaN() },
		"inf coordinate":  func(i *model.Instance) { i.Customers[1].Y = math.Inf(1) },
		"negative demand": func(i *model.Instance) { i.Customers[0].Demand = -1 },
		"bad id":          func(i *model.Instance) { i.Customers[0].ID = 7 },
		"inverted window": func(i *model.Instance) { i.Customers[0].Window = &model.TimeWindow{Open: 5, Close: 1} },
	}
	for name, mutate := range cases {
		inst := validInstance()
		mutate(inst)
		if _, err := NewMatrix(inst); !errors.Is(err, ErrInvalidInstance) {
			t.Errorf("%s: got %v, want ErrInvalidInstance", name, err)
		}
	}
	if _, err := NewMatrix(nil); !errors.Is(err, ErrInvalidInstance) {
		t.Errorf("nil instance: got %v", err)
	}
}

func TestMatrixValues(t *testing.T) {
	m, err := NewMatrix(validInstance())
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	if got := m.Dist(0, 1); got != 5 {
		t.Errorf("Dist(0,1) = %g, want 5", got)
	}
	for i := 0; i <= 2; i++ {
		if m.Dist(i, i) != 0 {
			t.Errorf("Dist(%d,%d) = %g, want 0", i, i, m.Dist(i, i))
		}
		for j := 0; j <= 2; j++ {
			if m.Dist(i, j) != m.Dist(j, i) {
				t.Errorf("asymmetry at (%d,%d)", i, j)
			}
		}
	}
}

func TestMatrixEmptyInstance(t *testing.T) {
	inst := &model.Instance{Capacity: 10, Vehicles: 1}
	m, err := NewMatrix(inst)
	if err != nil {
		t.Fatalf("empty instance should be valid: %v", err)
	}
	if m.Customers() != 0 {
		t.Errorf("Customers() = %d, want 0", m.Customers())
	}
}
