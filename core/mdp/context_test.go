package mdp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/transship/core/distribution"
	"github.com/kilianp07/transship/core/model"
)

func testParams(wh, sa, sb int) Params {
	p := DefaultParams()
	p.Demand.StoreA = model.DemandParams{Param1: 2}
	p.Demand.StoreB = model.DemandParams{Param1: 3}
	p.Costs = Costs{HoldingStore: 1, HoldingWarehouse: 0.5, Shortage: 19, Expedite: 4, Transship: 1}
	p.Capacity = Capacity{Warehouse: wh, StoreA: sa, StoreB: sb}
	return p
}

func newTestContext(t *testing.T, wh, sa, sb int) *Context {
	t.Helper()
	c, err := NewContext(testParams(wh, sa, sb))
	require.NoError(t, err)
	return c
}

func TestNewContextErrors(t *testing.T) {
	half := 0.5
	cases := []struct {
		name   string
		mutate func(*Params)
		want   error
	}{
		{"zero-warehouse", func(p *Params) { p.Capacity.Warehouse = 0 }, ErrInvalidCapacity},
		{"negative-cost", func(p *Params) { p.Costs.Shortage = -1 }, ErrInvalidParameter},
		{"bad-probability", func(p *Params) { p.FulfilProb = 1.5 }, ErrInvalidParameter},
		{"large-mean", func(p *Params) { p.Demand.StoreB.Param1 = 6 }, distribution.ErrSupportOverflow},
		{"negbin-missing", func(p *Params) { p.Demand.Kind = model.NegativeBinomial; p.Demand.StoreA.Param2 = &half }, distribution.ErrMissingParameter},
		{"unknown-kind", func(p *Params) { p.Demand.Kind = model.DemandKind(42) }, distribution.ErrUnknownKind},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := testParams(4, 3, 3)
			tc.mutate(&p)
			_, err := NewContext(p)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v got %v", tc.want, err)
			}
		})
	}
}

func TestStatesAndIndex(t *testing.T) {
	c := newTestContext(t, 4, 3, 5)
	require.Equal(t, 60, c.Size())
	i := 0
	for s := range c.States() {
		if got := c.Index(s); got != i {
			t.Fatalf("index of %s = %d, want %d", s, got, i)
		}
		if back := c.StateAt(i); back != s {
			t.Fatalf("StateAt(%d) = %s, want %s", i, back, s)
		}
		i++
	}
	assert.Equal(t, c.Size(), i)

	// The sequence restarts and stops early on request.
	n := 0
	for range c.States() {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}

func TestActionSpaceInvariants(t *testing.T) {
	c := newTestContext(t, 5, 4, 3)
	cp := c.Capacity()
	for s := range c.States() {
		actions := c.ActionSpace(s)
		seen := make(map[model.Action]bool, len(actions))
		hasZero := false
		for _, act := range actions {
			if seen[act] {
				t.Fatalf("duplicate action %s for %s", act, s)
			}
			seen[act] = true
			hasZero = hasZero || act.IsZero()
			require.NoError(t, c.Feasible(s, act), "state %s action %s", s, act)
			if s.Warehouse+act.WarehouseOrder >= cp.Warehouse {
				t.Fatalf("warehouse order %d too large for %s", act.WarehouseOrder, s)
			}
		}
		if !hasZero {
			t.Fatalf("zero action missing for %s", s)
		}
	}
}

func TestActionSpaceEnumeration(t *testing.T) {
	c := newTestContext(t, 2, 2, 2)
	// (1,1,0): ship A->B 1 or none; B has nothing to ship.
	got := c.ActionSpace(model.State{Warehouse: 1, StoreA: 1, StoreB: 0})
	want := []model.Action{
		{},
		{OrderB: 1},
		{ShipAToB: 1},
		{ShipAToB: 1, OrderA: 1},
	}
	assert.Equal(t, want, got)
}

func TestFeasibleRejects(t *testing.T) {
	c := newTestContext(t, 5, 4, 4)
	s := model.State{Warehouse: 2, StoreA: 1, StoreB: 3}
	cases := map[string]model.Action{
		"both-directions":  {ShipAToB: 1, ShipBToA: 1},
		"ship-too-much":    {ShipAToB: 2},
		"over-order":       {OrderA: 2, OrderB: 1},
		"store-capacity":   {OrderB: 1},
		"warehouse-cap":    {WarehouseOrder: 3},
		"negative-order":   {OrderA: -1},
		"receiver-overrun": {ShipAToB: 1},
	}
	for name, act := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, c.Feasible(s, act), ErrInfeasibleAction)
		})
	}
	assert.NoError(t, c.Feasible(s, model.Action{WarehouseOrder: 2, OrderA: 2}))
	assert.ErrorIs(t, c.Feasible(model.State{Warehouse: 5}, model.Action{}), ErrInfeasibleAction)
}

func TestExpectationWarehouseZeroStock(t *testing.T) {
	c := newTestContext(t, 4, 4, 4)
	for s := range c.States() {
		if s.Warehouse != 0 {
			continue
		}
		if v := c.ExpectationWarehouse(s); v != 0 {
			t.Fatalf("warehouse cost of %s = %v, want 0", s, v)
		}
	}
}

func TestExpectationStoreNoDemand(t *testing.T) {
	p := testParams(3, 4, 4)
	p.Demand.StoreA.Param1 = 0
	p.Demand.StoreB.Param1 = 0
	c, err := NewContext(p)
	require.NoError(t, err)
	got := c.ExpectationStore(model.State{Warehouse: 1, StoreA: 2, StoreB: 3})
	assert.InDelta(t, 5.0, got, 1e-2)
	assert.InDelta(t, 0.5*2, c.ExpectationWarehouse(model.State{Warehouse: 2, StoreA: 1, StoreB: 1}), 1e-2)
}

func TestStageCostMonotone(t *testing.T) {
	base := testParams(4, 4, 4)
	bumps := map[string]func(*Costs){
		"h_s":   func(c *Costs) { c.HoldingStore += 2 },
		"h_w":   func(c *Costs) { c.HoldingWarehouse += 2 },
		"c_u_s": func(c *Costs) { c.Shortage += 2 },
		"c_p":   func(c *Costs) { c.Expedite += 2 },
	}
	lo, err := NewContext(base)
	require.NoError(t, err)
	for name, bump := range bumps {
		t.Run(name, func(t *testing.T) {
			p := base
			bump(&p.Costs)
			hi, err := NewContext(p)
			require.NoError(t, err)
			for s := range lo.States() {
				before := lo.ExpectationWarehouse(s) + lo.ExpectationStore(s)
				after := hi.ExpectationWarehouse(s) + hi.ExpectationStore(s)
				if after < before-1e-12 {
					t.Fatalf("cost of %s decreased from %v to %v", s, before, after)
				}
			}
		})
	}
}

func TestStageCostsCache(t *testing.T) {
	c := newTestContext(t, 4, 3, 3)
	sc, err := c.StageCosts(context.Background(), 3)
	require.NoError(t, err)
	for s := range c.States() {
		i := c.Index(s)
		assert.Equal(t, c.ExpectationWarehouse(s), sc.Warehouse[i])
		assert.Equal(t, c.ExpectationStore(s), sc.Store[i])
		assert.Equal(t, sc.Warehouse[i]+sc.Store[i], sc.At(i))
	}
}

func TestFutureCostConstantTable(t *testing.T) {
	c := newTestContext(t, 6, 5, 5)
	next := make([]float64, c.Size())
	for i := range next {
		next[i] = 7
	}
	want := 7 * c.PMF(model.StoreA).Mass() * c.PMF(model.StoreB).Mass()
	s := model.State{Warehouse: 3, StoreA: 2, StoreB: 1}
	for _, act := range c.ActionSpace(s) {
		post := act.PostDecision(s)
		assert.InDelta(t, want, c.FutureCost(post, act, next), 1e-9, "action %s", act)
	}
}

func TestActionValueZeroNext(t *testing.T) {
	c := newTestContext(t, 4, 3, 3)
	sc, err := c.StageCosts(context.Background(), 1)
	require.NoError(t, err)
	next := make([]float64, c.Size())
	s := model.State{Warehouse: 2, StoreA: 2, StoreB: 0}
	act := model.Action{ShipAToB: 1, OrderA: 1}
	post := act.PostDecision(s)
	want := c.Costs().Transship + sc.At(c.Index(post))
	assert.InDelta(t, want, c.ActionValue(s, act, sc, next), 1e-12)
}
