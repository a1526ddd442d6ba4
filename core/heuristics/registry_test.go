package heuristics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/transship/core/factory"
	"github.com/kilianp07/transship/core/model"
)

func module(name string, conf map[string]any) factory.ModuleConfig {
	return factory.ModuleConfig{Type: name, Conf: conf}
}

func TestRegistryNames(t *testing.T) {
	assert.Equal(t, []string{"base_stock", "esr", "lookahead", "replay", "tie"}, Registry.Names())
}

func TestNewErrors(t *testing.T) {
	c := newTestContext(t)
	ctx := context.Background()
	_, err := New(ctx, Env{MDP: c}, module("oracle", nil))
	assert.ErrorIs(t, err, ErrUnknownPolicy)

	_, err = New(ctx, Env{MDP: c}, module("base_stock", map[string]any{"warehouse": 99}))
	assert.ErrorIs(t, err, ErrInvalidTarget)

	_, err = New(ctx, Env{MDP: c}, module("replay", nil))
	assert.Error(t, err)

	_, err = New(ctx, Env{}, module("base_stock", nil))
	assert.Error(t, err)
}

func TestNewLookaheadCanceled(t *testing.T) {
	c := newTestContext(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(ctx, Env{MDP: c, Workers: 2}, module("lookahead", map[string]any{"warehouse": 5}))
	require.ErrorIs(t, err, context.Canceled)

	p, err := Registry.Create(Env{MDP: c, Workers: 2}, module("lookahead", map[string]any{"warehouse": 5}))
	require.NoError(t, err)
	assert.Equal(t, "lookahead", p.Name())
}

// Every built-in policy must produce actions the solver accepts, in every
// state and in both regular and terminal periods.
func TestPoliciesProduceFeasibleActions(t *testing.T) {
	c := newTestContext(t)
	conf := map[string]any{"warehouse": 9, "store_a": 5, "store_b": "4", "seed": 3}
	recorded := MapLookup{{Period: 1, State: model.State{Warehouse: 2, StoreA: 1}}: {OrderA: 1}}
	env := Env{MDP: c, Lookup: recorded, Workers: 2}
	for _, name := range Registry.Names() {
		t.Run(name, func(t *testing.T) {
			p, err := New(context.Background(), env, module(name, conf))
			require.NoError(t, err)
			require.Equal(t, name, p.Name())
			for _, terminal := range []bool{false, true} {
				for s := range c.States() {
					act, err := p.Decide(Stage{Period: 1, Terminal: terminal}, s)
					require.NoError(t, err)
					if err := c.Feasible(s, act); err != nil {
						t.Fatalf("%s in %s (terminal=%v): %v", name, s, terminal, err)
					}
				}
			}
		})
	}
}

func TestReplay(t *testing.T) {
	s := model.State{Warehouse: 3, StoreA: 1, StoreB: 2}
	want := model.Action{WarehouseOrder: 2, OrderA: 1, ShipBToA: 1}
	p := NewReplay(MapLookup{{Period: 4, State: s}: want})

	got, err := p.Decide(Stage{Period: 4}, s)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = p.Decide(Stage{Period: 3}, s)
	require.NoError(t, err)
	assert.True(t, got.IsZero(), "missing entries do nothing")

	got, err = NewReplay(nil).Decide(Stage{Period: 4}, s)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}
