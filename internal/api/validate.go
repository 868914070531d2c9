package api

import (
	"fmt"

	"routesolver/internal/config"
	"routesolver/internal/model"
)

func validateSolveRequest(req *model.SolveRequest, lim config.Limits) error {
	if (req.Instance == nil) == (req.Generate == nil) {
		return fmt.Errorf("exactly one of instance or generate must be set")
	}
	if req.Instance != nil && lim.MaxCustomers > 0 && len(req.Instance.Customers) > lim.MaxCustomers {
		return fmt.Errorf("instance has %d customers, limit is %d", len(req.Instance.Customers), lim.MaxCustomers)
	}
	if g := req.Generate; g != nil {
		if g.N < 0 {
			return fmt.Errorf("generate.n must be >= 0")
		}
		if lim.MaxCustomers > 0 && g.N > lim.MaxCustomers {
			return fmt.Errorf("generate.n is %d, limit is %d", g.N, lim.MaxCustomers)
		}
		if g.LambdaTW < 0 || g.MuFair < 0 {
			return fmt.Errorf("lambdaTw and muFair must be >= 0")
		}
	}
	if req.Instance != nil && (req.Instance.LambdaTW < 0 || req.Instance.MuFair < 0) {
		return fmt.Errorf("lambdaTw and muFair must be >= 0")
	}
	return validateSolverConfig(req.Config, lim)
}

func validateSolverConfig(c model.SolverConfig, lim config.Limits) error {
	if c.SATimeMs < 0 {
		return fmt.Errorf("saTimeMs must be >= 0")
	}
	if lim.MaxSATimeMs > 0 && c.SATimeMs > lim.MaxSATimeMs {
		return fmt.Errorf("saTimeMs is %d, limit is %d", c.SATimeMs, lim.MaxSATimeMs)
	}
	if c.InitTemp < 0 {
		return fmt.Errorf("initTemp must be >= 0")
	}
	if c.Cooling != 0 && (c.Cooling <= 0 || c.Cooling >= 1) {
		return fmt.Errorf("cooling must be in (0,1)")
	}
	return nil
}

func validateSweepRequest(req *model.SweepRequest, lim config.Limits) error {
	if len(req.Sizes) == 0 {
		return fmt.Errorf("sizes must not be empty")
	}
	for _, n := range req.Sizes {
		if n < 0 {
			return fmt.Errorf("sizes must be >= 0")
		}
		if lim.MaxCustomers > 0 && n > lim.MaxCustomers {
			return fmt.Errorf("size %d exceeds limit %d", n, lim.MaxCustomers)
		}
	}
	if req.Trials < 0 {
		return fmt.Errorf("trials must be >= 0")
	}
	if req.LambdaTW < 0 || req.MuFair < 0 {
		return fmt.Errorf("lambdaTw and muFair must be >= 0")
	}
	return validateSolverConfig(req.Config, lim)
}
