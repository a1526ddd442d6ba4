package mdp

import (
	"errors"
	"fmt"
	"math"

	"github.com/kilianp07/transship/core/model"
)

var (
	// ErrInvalidCapacity is returned when a capacity leaves the state or
	// action space empty.
	ErrInvalidCapacity = errors.New("invalid capacity")
	// ErrInvalidParameter is returned for out of range costs or
	// probabilities.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInfeasibleAction is returned when an action breaks a capacity or
	// stock constraint of its state.
	ErrInfeasibleAction = errors.New("infeasible action")
)

// Costs are the per-unit cost coefficients of the model.
type Costs struct {
	// HoldingStore is charged per unit left in a store after demand (h_s).
	HoldingStore float64 `json:"h_s" koanf:"h_s"`
	// HoldingWarehouse is charged per unit left in the warehouse (h_w).
	HoldingWarehouse float64 `json:"h_w" koanf:"h_w"`
	// Shortage is the penalty per unit of unmet store demand (c_u_s).
	Shortage float64 `json:"c_u_s" koanf:"c_u_s"`
	// Expedite is charged per unit of shortfall served by the warehouse (c_p).
	Expedite float64 `json:"c_p" koanf:"c_p"`
	// Transship is charged per unit moved between the stores (c_ts).
	Transship float64 `json:"c_ts" koanf:"c_ts"`
}

// Capacity bounds the stock of each location. Stock levels range over
// [0, capacity).
type Capacity struct {
	Warehouse int `json:"warehouse" koanf:"warehouse"`
	StoreA    int `json:"store_a" koanf:"store_a"`
	StoreB    int `json:"store_b" koanf:"store_b"`
}

// Demand selects the demand law shared by both stores and each store's
// parameters.
type Demand struct {
	Kind   model.DemandKind   `json:"kind"`
	StoreA model.DemandParams `json:"store_a"`
	StoreB model.DemandParams `json:"store_b"`
}

// Params is the full parameter set of a run.
type Params struct {
	Demand   Demand
	Costs    Costs
	Capacity Capacity
	// FulfilProb is the probability that a unit requested from the
	// warehouse is delivered.
	FulfilProb float64
	// Gamma discounts next-period costs.
	Gamma float64
	// TerminalCost is the value of every state at the end of the horizon.
	TerminalCost float64
}

// Defaults used when a parameter is not supplied.
const (
	DefaultFulfilProb        = 0.8
	DefaultGamma             = 0.99
	DefaultWarehouseCapacity = 20
	DefaultStoreCapacity     = 10
)

// DefaultParams returns Poisson demand with the default probabilities and
// capacities. Costs and demand means are left at zero.
func DefaultParams() Params {
	return Params{
		Demand:     Demand{Kind: model.Poisson},
		FulfilProb: DefaultFulfilProb,
		Gamma:      DefaultGamma,
		Capacity: Capacity{
			Warehouse: DefaultWarehouseCapacity,
			StoreA:    DefaultStoreCapacity,
			StoreB:    DefaultStoreCapacity,
		},
	}
}

// Validate checks capacities, costs and probabilities. Demand parameters are
// checked when the distributions are built.
func (p Params) Validate() error {
	c := p.Capacity
	if c.Warehouse < 1 || c.StoreA < 1 || c.StoreB < 1 {
		return fmt.Errorf("%w: capacities must be at least 1, got %d/%d/%d", ErrInvalidCapacity, c.Warehouse, c.StoreA, c.StoreB)
	}
	costs := map[string]float64{
		"h_s":   p.Costs.HoldingStore,
		"h_w":   p.Costs.HoldingWarehouse,
		"c_u_s": p.Costs.Shortage,
		"c_p":   p.Costs.Expedite,
		"c_ts":  p.Costs.Transship,
	}
	for name, v := range costs {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s = %v", ErrInvalidParameter, name, v)
		}
	}
	if p.FulfilProb < 0 || p.FulfilProb > 1 || math.IsNaN(p.FulfilProb) {
		return fmt.Errorf("%w: fulfilment probability %v", ErrInvalidParameter, p.FulfilProb)
	}
	if p.Gamma < 0 || math.IsNaN(p.Gamma) || math.IsInf(p.Gamma, 0) {
		return fmt.Errorf("%w: discount %v", ErrInvalidParameter, p.Gamma)
	}
	if math.IsNaN(p.TerminalCost) || math.IsInf(p.TerminalCost, 0) {
		return fmt.Errorf("%w: terminal cost %v", ErrInvalidParameter, p.TerminalCost)
	}
	return nil
}
