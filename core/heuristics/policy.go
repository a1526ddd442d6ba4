package heuristics

import (
	"errors"
	"fmt"

	"github.com/kilianp07/transship/core/mdp"
	"github.com/kilianp07/transship/core/model"
)

var (
	// ErrInvalidTarget is returned for order-up-to levels outside the state
	// space.
	ErrInvalidTarget = errors.New("invalid order-up-to level")
	// ErrUnknownPolicy is returned when no policy is registered under a name.
	ErrUnknownPolicy = errors.New("unknown policy")
	// ErrInvariant marks internal consistency failures. They abort a run.
	ErrInvariant = errors.New("invariant violated")
)

// Stage identifies the decision period an action is taken in.
type Stage struct {
	Period int
	// Terminal is set in the last decision period of the horizon.
	Terminal bool
}

// Policy maps a pre-decision state to an action.
type Policy interface {
	Name() string
	Decide(stage Stage, s model.State) (model.Action, error)
}

// Targets are the order-up-to levels of the three locations.
type Targets struct {
	Warehouse int `json:"warehouse"`
	StoreA    int `json:"store_a"`
	StoreB    int `json:"store_b"`
}

// Store returns the target of a store.
func (t Targets) Store(st model.Store) int {
	if st == model.StoreA {
		return t.StoreA
	}
	return t.StoreB
}

// Validate checks that every target lies strictly below its capacity, which
// keeps every order-up-to decision inside the state space.
func (t Targets) Validate(cp mdp.Capacity) error {
	switch {
	case t.Warehouse < 0 || t.Warehouse >= cp.Warehouse:
		return fmt.Errorf("%w: warehouse %d with capacity %d", ErrInvalidTarget, t.Warehouse, cp.Warehouse)
	case t.StoreA < 0 || t.StoreA >= cp.StoreA:
		return fmt.Errorf("%w: store A %d with capacity %d", ErrInvalidTarget, t.StoreA, cp.StoreA)
	case t.StoreB < 0 || t.StoreB >= cp.StoreB:
		return fmt.Errorf("%w: store B %d with capacity %d", ErrInvalidTarget, t.StoreB, cp.StoreB)
	}
	return nil
}

// withOrders applies base-stock ordering to the state left by a
// transshipment and merges both decisions.
func withOrders(s model.State, aToB, bToA int, t Targets) model.Action {
	post := model.State{
		Warehouse: s.Warehouse,
		StoreA:    s.StoreA - aToB + bToA,
		StoreB:    s.StoreB - bToA + aToB,
	}
	act := BaseStockAction(post, t)
	act.ShipAToB, act.ShipBToA = aToB, bToA
	return act
}
