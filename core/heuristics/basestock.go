package heuristics

import (
	"github.com/kilianp07/transship/core/mdp"
	"github.com/kilianp07/transship/core/model"
)

// AllocateStock splits available units between two requests one unit at a
// time, always serving the larger outstanding request. Ties go to store B.
func AllocateStock(available, requestA, requestB int) (int, int) {
	var allocA, allocB int
	for ; available > 0; available-- {
		if requestA-allocA > requestB-allocB {
			allocA++
		} else {
			allocB++
		}
	}
	return allocA, allocB
}

// BaseStockAction orders every store up to its target and the warehouse up
// to its target net of the store orders. When the warehouse cannot cover
// both stores its stock is split with AllocateStock. Nothing is shipped
// between stores.
func BaseStockAction(s model.State, t Targets) model.Action {
	wantA := max(t.StoreA-s.StoreA, 0)
	wantB := max(t.StoreB-s.StoreB, 0)
	act := model.Action{
		WarehouseOrder: max(t.Warehouse-max(s.Warehouse-wantA-wantB, 0), 0),
		OrderA:         wantA,
		OrderB:         wantB,
	}
	if s.Warehouse < wantA+wantB {
		act.OrderA, act.OrderB = AllocateStock(s.Warehouse, wantA, wantB)
	}
	return act
}

// BaseStock is the plain order-up-to policy.
type BaseStock struct {
	targets Targets
}

// NewBaseStock validates t against the capacities of m.
func NewBaseStock(m *mdp.Context, t Targets) (*BaseStock, error) {
	if err := t.Validate(m.Capacity()); err != nil {
		return nil, err
	}
	return &BaseStock{targets: t}, nil
}

func (*BaseStock) Name() string { return "base_stock" }

func (p *BaseStock) Decide(_ Stage, s model.State) (model.Action, error) {
	return BaseStockAction(s, p.targets), nil
}
