package mdp

import (
	"fmt"
	"iter"
	"slices"

	"github.com/kilianp07/transship/core/model"
)

// States yields every state in row-major (warehouse, store A, store B) order.
// The sequence can be ranged over any number of times.
func (c *Context) States() iter.Seq[model.State] {
	cp := c.params.Capacity
	return func(yield func(model.State) bool) {
		for w := 0; w < cp.Warehouse; w++ {
			for a := 0; a < cp.StoreA; a++ {
				for b := 0; b < cp.StoreB; b++ {
					if !yield(model.State{Warehouse: w, StoreA: a, StoreB: b}) {
						return
					}
				}
			}
		}
	}
}

// Contains reports whether s lies inside the state space.
func (c *Context) Contains(s model.State) bool {
	cp := c.params.Capacity
	return s.Warehouse >= 0 && s.Warehouse < cp.Warehouse &&
		s.StoreA >= 0 && s.StoreA < cp.StoreA &&
		s.StoreB >= 0 && s.StoreB < cp.StoreB
}

// Index maps a state onto [0, Size()). The mapping follows the order of
// States.
func (c *Context) Index(s model.State) int {
	cp := c.params.Capacity
	return (s.Warehouse*cp.StoreA+s.StoreA)*cp.StoreB + s.StoreB
}

func (c *Context) index(w, a, b int) int {
	cp := c.params.Capacity
	return (w*cp.StoreA+a)*cp.StoreB + b
}

// StateAt is the inverse of Index.
func (c *Context) StateAt(i int) model.State {
	cp := c.params.Capacity
	b := i % cp.StoreB
	i /= cp.StoreB
	return model.State{Warehouse: i / cp.StoreA, StoreA: i % cp.StoreA, StoreB: b}
}

// Actions yields the feasible actions of s: every transshipment option
// (none, A to B, B to A), then every pair of store orders the warehouse
// can cover without pushing a store to capacity, then every warehouse order
// that keeps the warehouse below capacity.
func (c *Context) Actions(s model.State) iter.Seq[model.Action] {
	cp := c.params.Capacity
	type transfer struct{ aToB, bToA int }
	return func(yield func(model.Action) bool) {
		options := []transfer{{}}
		for i := 1; i < min(s.StoreA+1, cp.StoreB-s.StoreB); i++ {
			options = append(options, transfer{aToB: i})
		}
		for i := 1; i < min(s.StoreB+1, cp.StoreA-s.StoreA); i++ {
			options = append(options, transfer{bToA: i})
		}
		for _, t := range options {
			a := s.StoreA - t.aToB + t.bToA
			b := s.StoreB - t.bToA + t.aToB
			for oa := 0; oa <= s.Warehouse && oa+a < cp.StoreA; oa++ {
				for ob := 0; ob <= s.Warehouse-oa && ob+b < cp.StoreB; ob++ {
					for wh := 0; wh < cp.Warehouse-s.Warehouse; wh++ {
						act := model.Action{
							WarehouseOrder: wh,
							OrderA:         oa,
							OrderB:         ob,
							ShipAToB:       t.aToB,
							ShipBToA:       t.bToA,
						}
						if !yield(act) {
							return
						}
					}
				}
			}
		}
	}
}

// ActionSpace collects Actions(s) into a slice.
func (c *Context) ActionSpace(s model.State) []model.Action {
	return slices.Collect(c.Actions(s))
}

// Feasible checks that act can be executed from s and that every state it can
// lead to stays inside the state space. Warehouse orders are only bounded by
// the stock left after store orders, which is looser than the bound used by
// Actions and admits order-up-to rules.
func (c *Context) Feasible(s model.State, act model.Action) error {
	cp := c.params.Capacity
	if !c.Contains(s) {
		return fmt.Errorf("%w: state %s outside the state space", ErrInfeasibleAction, s)
	}
	if act.WarehouseOrder < 0 || act.OrderA < 0 || act.OrderB < 0 || act.ShipAToB < 0 || act.ShipBToA < 0 {
		return fmt.Errorf("%w: negative quantity in %s", ErrInfeasibleAction, act)
	}
	if act.ShipAToB > 0 && act.ShipBToA > 0 {
		return fmt.Errorf("%w: %s ships in both directions", ErrInfeasibleAction, act)
	}
	if act.ShipAToB > s.StoreA || act.ShipBToA > s.StoreB {
		return fmt.Errorf("%w: %s ships more than the store holds in %s", ErrInfeasibleAction, act, s)
	}
	post := act.PostDecision(s)
	if post.Warehouse < 0 {
		return fmt.Errorf("%w: %s orders more than the warehouse holds in %s", ErrInfeasibleAction, act, s)
	}
	if post.StoreA+act.OrderA >= cp.StoreA || post.StoreB+act.OrderB >= cp.StoreB {
		return fmt.Errorf("%w: %s exceeds a store capacity from %s", ErrInfeasibleAction, act, s)
	}
	if post.Warehouse+act.WarehouseOrder >= cp.Warehouse {
		return fmt.Errorf("%w: %s exceeds the warehouse capacity from %s", ErrInfeasibleAction, act, s)
	}
	return nil
}
