package config

import (
	"fmt"

	"github.com/kilianp07/transship/core/mdp"
	"github.com/kilianp07/transship/core/model"
	"github.com/kilianp07/transship/core/solver"
)

// DefaultPeriods is the horizon used when none is configured.
const DefaultPeriods = 2

// StoreDemand holds the demand parameters of one store. Param1 is the
// Poisson mean or the negative binomial r, Param2 the negative binomial p.
type StoreDemand struct {
	Param1 float64  `json:"param1"`
	Param2 *float64 `json:"param2"`
}

type DemandConfig struct {
	// Kind is "poisson" or "negative_binomial".
	Kind   string      `json:"kind"`
	StoreA StoreDemand `json:"store_a"`
	StoreB StoreDemand `json:"store_b"`
}

// SolverConfig describes the model and how the engine runs it.
type SolverConfig struct {
	Demand   DemandConfig `json:"demand"`
	Costs    mdp.Costs    `json:"costs"`
	Capacity mdp.Capacity `json:"capacity"`
	// FulfilProb and Gamma are pointers so that an explicit zero is kept.
	FulfilProb   *float64 `json:"fulfil_prob"`
	Gamma        *float64 `json:"gamma"`
	TerminalCost float64  `json:"terminal_cost"`
	Periods      int      `json:"periods"`
	Workers      int      `json:"workers"`
	Chunk        int      `json:"chunk"`
}

// SetDefaults applies the model defaults.
func (c *SolverConfig) SetDefaults() {
	if c.Demand.Kind == "" {
		c.Demand.Kind = model.Poisson.String()
	}
	if c.Capacity.Warehouse == 0 {
		c.Capacity.Warehouse = mdp.DefaultWarehouseCapacity
	}
	if c.Capacity.StoreA == 0 {
		c.Capacity.StoreA = mdp.DefaultStoreCapacity
	}
	if c.Capacity.StoreB == 0 {
		c.Capacity.StoreB = mdp.DefaultStoreCapacity
	}
	if c.FulfilProb == nil {
		p := mdp.DefaultFulfilProb
		c.FulfilProb = &p
	}
	if c.Gamma == nil {
		g := mdp.DefaultGamma
		c.Gamma = &g
	}
	if c.Periods == 0 {
		c.Periods = DefaultPeriods
	}
	if c.Workers == 0 {
		c.Workers = solver.DefaultWorkers
	}
}

// Validate checks the run settings and the model parameters. Demand laws are
// checked again when the model context is built.
func (c SolverConfig) Validate() error {
	if c.Periods < 1 {
		return fmt.Errorf("%w: periods must be at least 1, got %d", solver.ErrInvalidHorizon, c.Periods)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", mdp.ErrInvalidParameter, c.Workers)
	}
	if c.Chunk < 0 {
		return fmt.Errorf("%w: negative chunk %d", mdp.ErrInvalidParameter, c.Chunk)
	}
	p, err := c.Params()
	if err != nil {
		return err
	}
	return p.Validate()
}

// Params converts the section into model parameters. SetDefaults must have
// been called.
func (c SolverConfig) Params() (mdp.Params, error) {
	kind, err := model.ParseDemandKind(c.Demand.Kind)
	if err != nil {
		return mdp.Params{}, err
	}
	p := mdp.DefaultParams()
	p.Demand = mdp.Demand{
		Kind:   kind,
		StoreA: model.DemandParams{Param1: c.Demand.StoreA.Param1, Param2: c.Demand.StoreA.Param2},
		StoreB: model.DemandParams{Param1: c.Demand.StoreB.Param1, Param2: c.Demand.StoreB.Param2},
	}
	p.Costs = c.Costs
	p.Capacity = c.Capacity
	if c.FulfilProb != nil {
		p.FulfilProb = *c.FulfilProb
	}
	if c.Gamma != nil {
		p.Gamma = *c.Gamma
	}
	p.TerminalCost = c.TerminalCost
	return p, nil
}

// EngineOptions returns the worker settings of the section.
func (c SolverConfig) EngineOptions() solver.Options {
	return solver.Options{Workers: c.Workers, Chunk: c.Chunk}
}
