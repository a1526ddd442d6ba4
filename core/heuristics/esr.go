package heuristics

import (
	"fmt"

	"github.com/kilianp07/transship/core/mdp"
	"github.com/kilianp07/transship/core/model"
)

// MarginalTable gives the expected shortage of a store at a stock level.
type MarginalTable interface {
	At(st model.Store, x int) mdp.MarginalEntry
}

// sourceStore picks the store that gives up stock. An empty store always
// receives and a full store never does. Otherwise the store losing less by
// giving up one unit is the source.
func sourceStore(a, b int, tbl MarginalTable, capA, capB int) model.Store {
	switch {
	case a < 1:
		return model.StoreB
	case b < 1:
		return model.StoreA
	case a == capA-1:
		return model.StoreA
	case b == capB-1:
		return model.StoreB
	}
	alphaA := tbl.At(model.StoreA, a-1).Value - tbl.At(model.StoreA, a).Value
	alphaB := tbl.At(model.StoreB, b-1).Value - tbl.At(model.StoreB, b).Value
	if alphaA < alphaB {
		return model.StoreA
	}
	return model.StoreB
}

// ESRTransfer moves units one at a time from the source store to the other
// while the shortage the receiver avoids exceeds the shortage the source
// incurs by more than threshold and the receiver's current-period gain is at
// least the source's current-period loss. It stops when the receiver reaches
// capacity-1 or the source runs out. It returns the units shipped A to B and
// B to A.
func ESRTransfer(a, b int, tbl MarginalTable, capA, capB int, threshold float64) (int, int) {
	src := sourceStore(a, b, tbl, capA, capB)
	dst := src.Other()
	stock := model.State{StoreA: a, StoreB: b}
	srcX, dstX := stock.Stock(src), stock.Stock(dst)
	dstCap := capB
	if dst == model.StoreA {
		dstCap = capA
	}

	for dstX < dstCap-1 && srcX > 0 {
		srcLo, srcHi := tbl.At(src, srcX-1), tbl.At(src, srcX)
		dstLo, dstHi := tbl.At(dst, dstX), tbl.At(dst, dstX+1)
		alpha := srcLo.Value - srcHi.Value
		delta := dstLo.Value - dstHi.Value
		if !(delta-alpha > threshold) {
			break
		}
		if dstLo.FirstStage-dstHi.FirstStage < srcLo.FirstStage-srcHi.FirstStage {
			break
		}
		srcX--
		dstX++
	}

	moved := stock.Stock(src) - srcX
	if src == model.StoreA {
		return moved, 0
	}
	return 0, moved
}

// ESR rebalances with ESRTransfer against the one-step-ahead tables and then
// applies base-stock ordering.
type ESR struct {
	m         *mdp.Context
	targets   Targets
	threshold float64
	regular   *mdp.OneStepTable
	terminal  *mdp.OneStepTable
}

// NewESR builds the one-step-ahead tables at the store targets of t.
func NewESR(m *mdp.Context, t Targets) (*ESR, error) {
	if err := t.Validate(m.Capacity()); err != nil {
		return nil, err
	}
	costs := m.Costs()
	if costs.Shortage <= 0 {
		return nil, fmt.Errorf("%w: ESR needs a positive shortage cost", mdp.ErrInvalidParameter)
	}
	regular, err := m.NewOneStepTable(t.StoreA, t.StoreB, false)
	if err != nil {
		return nil, err
	}
	terminal, err := m.NewOneStepTable(t.StoreA, t.StoreB, true)
	if err != nil {
		return nil, err
	}
	return &ESR{
		m:         m,
		targets:   t,
		threshold: costs.Transship / costs.Shortage,
		regular:   regular,
		terminal:  terminal,
	}, nil
}

func (*ESR) Name() string { return "esr" }

func (p *ESR) Decide(stage Stage, s model.State) (model.Action, error) {
	tbl := p.regular
	if stage.Terminal {
		tbl = p.terminal
	}
	aToB, bToA := ESRTransfer(s.StoreA, s.StoreB, tbl,
		p.m.StoreCapacity(model.StoreA), p.m.StoreCapacity(model.StoreB), p.threshold)
	return withOrders(s, aToB, bToA, p.targets), nil
}
