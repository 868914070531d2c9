package solver

import (
	"math/rand"

	"routesolver/internal/model"
)

// Generate draws a synthetic instance: depot at (50,50), customers uniform
// on [0,100]^2, demands uniform in [1, max(2, C/5)). With time windows
// enabled each customer gets open = U(0,200), a width of U(20,60), and a
// service time of U(0.5,2.0). The draw is fully determined by the seed.
func Generate(spec model.GeneratorSpec) *model.Instance {
	capacity := spec.Capacity
	if capacity <= 0 {
		capacity = 100
	}
	vehicles := spec.Vehicles
	if vehicles <= 0 {
		vehicles = 10
	}
	rng := rand.New(rand.NewSource(spec.Seed))

	demandHi := capacity / 5
	if demandHi < 2 {
		demandHi = 2
	}

	customers := make([]model.Customer, 0, spec.N)
	for i := 1; i <= spec.N; i++ {
		c := model.Customer{
			ID:     i,
			X:      rng.Float64() * 100,
			Y:      rng.Float64() * 100,
			Demand: 1 + rng.Intn(demandHi-1),
		}
		if spec.TimeWindows {
			open := rng.Float64() * 200
			c.Window = &model.TimeWindow{
				Open:    open,
				Close:   open + 20 + rng.Float64()*40,
				Service: 0.5 + rng.Float64()*1.5,
			}
		}
		customers = append(customers, c)
	}
	return &model.Instance{
		Depot:     model.Point{X: 50, Y: 50},
		Customers: customers,
		Capacity:  capacity,
		Vehicles:  vehicles,
		LambdaTW:  spec.LambdaTW,
		MuFair:    spec.MuFair,
	}
}
