package heuristics

import (
	"context"
	"fmt"

	"github.com/kilianp07/transship/core/mdp"
	"github.com/kilianp07/transship/core/model"
)

// atWarehouse views a lookahead table at a fixed warehouse level.
type atWarehouse struct {
	tbl *mdp.LookaheadTable
	w   int
}

func (v atWarehouse) At(st model.Store, x int) mdp.MarginalEntry {
	return v.tbl.At(v.w, st, x).MarginalEntry
}

// Lookahead rebalances like ESR against the lookahead table of the current
// warehouse level, orders for each store the quantity the table holds for
// its rebalanced stock and orders the warehouse up to its target.
type Lookahead struct {
	m         *mdp.Context
	target    int
	threshold float64
	regular   *mdp.LookaheadTable
	terminal  *mdp.LookaheadTable
}

// NewLookahead builds the regular and terminal lookahead tables. Only the
// warehouse target of t is used; store orders come from the tables.
func NewLookahead(ctx context.Context, m *mdp.Context, t Targets, workers int) (*Lookahead, error) {
	if err := t.Validate(m.Capacity()); err != nil {
		return nil, err
	}
	costs := m.Costs()
	if costs.Shortage <= 0 {
		return nil, fmt.Errorf("%w: lookahead needs a positive shortage cost", mdp.ErrInvalidParameter)
	}
	regular, err := m.NewLookaheadTable(ctx, workers, false)
	if err != nil {
		return nil, err
	}
	terminal, err := m.NewLookaheadTable(ctx, workers, true)
	if err != nil {
		return nil, err
	}
	return &Lookahead{
		m:         m,
		target:    t.Warehouse,
		threshold: costs.Transship / costs.Shortage,
		regular:   regular,
		terminal:  terminal,
	}, nil
}

func (*Lookahead) Name() string { return "lookahead" }

func (p *Lookahead) Decide(stage Stage, s model.State) (model.Action, error) {
	tbl := p.regular
	if stage.Terminal {
		tbl = p.terminal
	}
	w := s.Warehouse
	var act model.Action
	if s.StoreA > 0 || s.StoreB > 0 {
		act.ShipAToB, act.ShipBToA = ESRTransfer(s.StoreA, s.StoreB, atWarehouse{tbl: tbl, w: w},
			p.m.StoreCapacity(model.StoreA), p.m.StoreCapacity(model.StoreB), p.threshold)
	}
	post := act.PostDecision(s)
	act.OrderA = tbl.At(w, model.StoreA, post.StoreA).Order
	act.OrderB = tbl.At(w, model.StoreB, post.StoreB).Order
	if act.OrderA+act.OrderB > w {
		act.OrderA, act.OrderB = AllocateStock(w, act.OrderA, act.OrderB)
	}
	act.WarehouseOrder = max(p.target-max(w-act.OrderA-act.OrderB, 0), 0)
	return act, nil
}
