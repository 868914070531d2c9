package model

// Wire and domain types shared by the solver core, the HTTP API, and storage.

// Point is a 2D planar coordinate. Distances are Euclidean.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TimeWindow bounds a customer visit. Arriving before Open means waiting
// for free; arriving after Close accrues linear lateness. Units are the
// same as travel time, which equals Euclidean distance.
type TimeWindow struct {
	Open    float64 `json:"open"`
	Close   float64 `json:"close"`
	Service float64 `json:"service,omitempty"`
}

// Customer is a single delivery stop. IDs are 1..N and double as node
// indices into the distance matrix (node 0 is the depot).
type Customer struct {
	ID     int         `json:"id"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Demand int         `json:"demand"`
	Window *TimeWindow `json:"window,omitempty"`
}

// Instance is a full CVRP/VRPTW problem: one depot, N customers, K vehicles
// of capacity C, and objective weights. Immutable once handed to the solver.
type Instance struct {
	Depot     Point      `json:"depot"`
	Customers []Customer `json:"customers"`
	Capacity  int        `json:"capacity"`
	Vehicles  int        `json:"vehicles"`
	LambdaTW  float64    `json:"lambdaTw,omitempty"`
	MuFair    float64    `json:"muFair,omitempty"`
}

// GeneratorSpec describes a synthetic instance draw.
type GeneratorSpec struct {
	N           int     `json:"n"`
	Seed        int64   `json:"seed"`
	Capacity    int     `json:"capacity,omitempty"`
	Vehicles    int     `json:"vehicles,omitempty"`
	TimeWindows bool    `json:"timeWindows,omitempty"`
	LambdaTW    float64 `json:"lambdaTw,omitempty"`
	MuFair      float64 `json:"muFair,omitempty"`
}

// SolverConfig mirrors solver.Config on the wire.
type SolverConfig struct {
	SATimeMs      int     `json:"saTimeMs,omitempty"`
	NoLocalSearch bool    `json:"noLocalSearch,omitempty"`
	Seed          int64   `json:"seed,omitempty"`
	InitTemp      float64 `json:"initTemp,omitempty"`
	Cooling       float64 `json:"cooling,omitempty"`
}

// SolveRequest carries either an inline instance or a generator spec,
// plus solver configuration. Exactly one of Instance/Generate must be set.
type SolveRequest struct {
	Instance *Instance      `json:"instance,omitempty"`
	Generate *GeneratorSpec `json:"generate,omitempty"`
	Config   SolverConfig   `json:"config"`
}

// SolveResult is the outcome reported to callers and persisted per run.
type SolveResult struct {
	Routes     [][]int `json:"routes"`
	Cost       float64 `json:"cost"`
	Feasible   bool    `json:"feasible"`
	RuntimeMs  int64   `json:"runtimeMs"`
	Iterations int     `json:"iterations,omitempty"`
	Accepted   int     `json:"accepted,omitempty"`
	Improved   int     `json:"improved,omitempty"`
}

// Run is a persisted solve invocation.
type Run struct {
	ID        string       `json:"id"`
	CreatedAt string       `json:"createdAt"`
	Request   SolveRequest `json:"request"`
	Result    SolveResult  `json:"result"`
}

// SweepRequest runs the solver across instance sizes and trials.
type SweepRequest struct {
	Sizes    []int        `json:"sizes"`
	Trials   int          `json:"trials"`
	Vehicles int          `json:"vehicles,omitempty"`
	Capacity int          `json:"capacity,omitempty"`
	TW       bool         `json:"tw,omitempty"`
	LambdaTW float64      `json:"lambdaTw,omitempty"`
	MuFair   float64      `json:"muFair,omitempty"`
	SeedBase int64        `json:"seedBase,omitempty"`
	Config   SolverConfig `json:"config"`
}

// SweepRow is one trial of a sweep.
type SweepRow struct {
	N          int     `json:"n"`
	Trial      int     `json:"trial"`
	Seed       int64   `json:"seed"`
	Cost       float64 `json:"cost"`
	RuntimeSec float64 `json:"runtimeSec"`
	Feasible   bool    `json:"feasible"`
}
