package heuristics

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/kilianp07/transship/core/mdp"
	"github.com/kilianp07/transship/core/model"
)

// TIETransfer rebalances the stock of both stores in proportion to their
// demand means, each target capped at capacity-1. Fractional targets are
// floored and the leftover unit goes to the store that is not at its cap,
// or to store A when coin returns true. It returns the units shipped A to B
// and B to A.
func TIETransfer(a, b int, meanA, meanB float64, capA, capB int, coin func() bool) (int, int, error) {
	total := float64(a + b)
	if total == 0 || meanA+meanB <= 0 {
		return 0, 0, nil
	}
	limitA, limitB := float64(capA-1), float64(capB-1)
	targetA := math.Min(meanA/(meanA+meanB)*total, limitA)
	targetB := math.Min(meanB/(meanA+meanB)*total, limitB)

	floorA, fracA := math.Modf(targetA)
	floorB, fracB := math.Modf(targetB)
	if fracA != 0 || fracB != 0 {
		if excess := int(fracA + fracB); excess > 1 {
			return 0, 0, fmt.Errorf("%w: TIE fractional excess %d for stocks %d/%d", ErrInvariant, excess, a, b)
		}
		var toA bool
		switch {
		case floorA == limitA:
			toA = false
		case floorB == limitB:
			toA = true
		default:
			toA = coin()
		}
		targetA, targetB = floorA, floorB
		if toA {
			targetA++
		} else {
			targetB++
		}
	}
	bToA := max(int(targetA)-a, 0)
	aToB := max(int(targetB)-b, 0)
	return aToB, bToA, nil
}

// TIE rebalances with TIETransfer and then applies base-stock ordering. The
// coin used for leftover units is derived from the seed, the period and the
// state so runs are reproducible and independent of scheduling.
type TIE struct {
	m       *mdp.Context
	targets Targets
	seed    uint64
}

// NewTIE validates t against the capacities of m.
func NewTIE(m *mdp.Context, t Targets, seed uint64) (*TIE, error) {
	if err := t.Validate(m.Capacity()); err != nil {
		return nil, err
	}
	return &TIE{m: m, targets: t, seed: seed}, nil
}

func (*TIE) Name() string { return "tie" }

func (p *TIE) Decide(stage Stage, s model.State) (model.Action, error) {
	coin := func() bool {
		stream := uint64(stage.Period)<<32 | uint64(p.m.Index(s))
		return rand.New(rand.NewPCG(p.seed, stream)).IntN(2) == 0
	}
	aToB, bToA, err := TIETransfer(s.StoreA, s.StoreB,
		p.m.Mean(model.StoreA), p.m.Mean(model.StoreB),
		p.m.StoreCapacity(model.StoreA), p.m.StoreCapacity(model.StoreB), coin)
	if err != nil {
		return model.Action{}, err
	}
	return withOrders(s, aToB, bToA, p.targets), nil
}
