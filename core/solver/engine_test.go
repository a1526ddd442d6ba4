package solver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/transship/core/factory"
	"github.com/kilianp07/transship/core/heuristics"
	"github.com/kilianp07/transship/core/mdp"
	"github.com/kilianp07/transship/core/metrics"
	"github.com/kilianp07/transship/core/model"
	"github.com/kilianp07/transship/internal/eventbus"
)

func newTestContext(t *testing.T, mutate ...func(*mdp.Params)) *mdp.Context {
	t.Helper()
	p := mdp.DefaultParams()
	p.Demand.StoreA = model.DemandParams{Param1: 1.5}
	p.Demand.StoreB = model.DemandParams{Param1: 2}
	p.Costs = mdp.Costs{HoldingStore: 1, HoldingWarehouse: 0.5, Shortage: 19, Expedite: 4, Transship: 1}
	p.Capacity = mdp.Capacity{Warehouse: 4, StoreA: 3, StoreB: 3}
	for _, f := range mutate {
		f(&p)
	}
	c, err := mdp.NewContext(p)
	require.NoError(t, err)
	return c
}

func TestSinglePeriodIsTerminal(t *testing.T) {
	e := NewEngine(newTestContext(t), Options{})
	res, err := e.SolveOptimal(context.Background(), 1)
	require.NoError(t, err)
	for s, v := range res.Values.All() {
		if v != 0 {
			t.Fatalf("value of %s = %v, want 0", s, v)
		}
	}
	assert.Zero(t, res.Policy.Len())

	withTerminal := NewEngine(newTestContext(t, func(p *mdp.Params) { p.TerminalCost = 5 }), Options{})
	res, err = withTerminal.SolveOptimal(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5.0, res.Values.Mean())
}

func TestInvalidHorizon(t *testing.T) {
	e := NewEngine(newTestContext(t), Options{})
	_, err := e.SolveOptimal(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidHorizon)
}

func TestTwoPeriodValueIsBestStageCost(t *testing.T) {
	c := newTestContext(t)
	e := NewEngine(c, Options{Workers: 2})
	res, err := e.SolveOptimal(context.Background(), 2)
	require.NoError(t, err)
	sc, err := e.StageCosts(context.Background())
	require.NoError(t, err)

	s := model.State{Warehouse: 2, StoreA: 0, StoreB: 2}
	want := -1.0
	for _, act := range c.ActionSpace(s) {
		post := act.PostDecision(s)
		v := c.Costs().Transship*float64(act.Transshipped()) + sc.At(c.Index(post))
		if want < 0 || v < want {
			want = v
		}
	}
	assert.InDelta(t, want, res.Values.At(s), 1e-12)

	act, ok := res.Policy.Lookup(1, s)
	require.True(t, ok)
	require.NoError(t, c.Feasible(s, act))
	assert.Equal(t, c.Size(), res.Policy.Len())
}

func TestReplayReproducesOptimalValues(t *testing.T) {
	c := newTestContext(t)
	e := NewEngine(c, Options{Workers: 3})
	opt, err := e.SolveOptimal(context.Background(), 4)
	require.NoError(t, err)

	replayed, err := e.Evaluate(context.Background(), 4, heuristics.NewReplay(opt.Policy))
	require.NoError(t, err)
	assert.Nil(t, replayed.Policy)
	assert.Equal(t, opt.Values.Values(), replayed.Values.Values())
}

func TestWorkerCountDoesNotChangeResults(t *testing.T) {
	c := newTestContext(t)
	seq, err := NewEngine(c, Options{Workers: 1}).SolveOptimal(context.Background(), 3)
	require.NoError(t, err)
	par, err := NewEngine(c, Options{Workers: 4, Chunk: 5}).SolveOptimal(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, seq.Values.Values(), par.Values.Values())
	assert.Equal(t, collect(seq.Policy), collect(par.Policy))
}

func collect(p *PolicyTable) []Entry {
	var out []Entry
	for e := range p.All() {
		out = append(out, e)
	}
	return out
}

func TestEvaluateHeuristics(t *testing.T) {
	c := newTestContext(t)
	e := NewEngine(c, Options{RecordActions: true})

	for _, name := range []string{"base_stock", "tie", "esr", "lookahead"} {
		t.Run(name, func(t *testing.T) {
			p, err := heuristics.New(context.Background(), heuristics.Env{MDP: c, Workers: 2}, factory.ModuleConfig{
				Type: name,
				Conf: map[string]any{"warehouse": 3, "store_a": 2, "store_b": 2, "seed": 11},
			})
			require.NoError(t, err)
			res, err := e.Evaluate(context.Background(), 3, p)
			require.NoError(t, err)
			require.NotNil(t, res.Policy)
			assert.Equal(t, 2*c.Size(), res.Policy.Len())
			for s, v := range res.Values.All() {
				if v < 0 {
					t.Fatalf("negative %s value %v at %s", name, v, s)
				}
				act, ok := res.Policy.Lookup(1, s)
				require.True(t, ok)
				require.NoError(t, c.Feasible(s, act))
			}
		})
	}
}

type overOrder struct{}

func (overOrder) Name() string { return "over-order" }

func (overOrder) Decide(heuristics.Stage, model.State) (model.Action, error) {
	return model.Action{OrderA: 100}, nil
}

type failing struct{}

func (failing) Name() string { return "failing" }

func (failing) Decide(heuristics.Stage, model.State) (model.Action, error) {
	return model.Action{}, errors.New("lookup failed")
}

func TestEvaluateRejectsBadPolicies(t *testing.T) {
	e := NewEngine(newTestContext(t), Options{})
	_, err := e.Evaluate(context.Background(), 2, overOrder{})
	assert.ErrorIs(t, err, ErrInvariant)
	assert.ErrorIs(t, err, mdp.ErrInfeasibleAction)

	_, err = e.Evaluate(context.Background(), 2, failing{})
	assert.ErrorContains(t, err, "lookup failed")

	_, err = e.Evaluate(context.Background(), 2, nil)
	assert.Error(t, err)
}

func TestCancelledRun(t *testing.T) {
	e := NewEngine(newTestContext(t), Options{})
	_, err := e.StageCosts(context.Background())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.SolveOptimal(ctx, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEventsPublished(t *testing.T) {
	bus := eventbus.New[metrics.Event]()
	sub := bus.Subscribe()
	e := NewEngine(newTestContext(t), Options{RunID: "run-1", Events: bus})
	_, err := e.SolveOptimal(context.Background(), 3)
	require.NoError(t, err)
	bus.Close()

	var periods []int
	var runs []metrics.RunEvent
	for ev := range sub {
		switch ev := ev.(type) {
		case metrics.PeriodEvent:
			assert.Equal(t, "run-1", ev.RunID)
			assert.Equal(t, ModeOptimal, ev.Mode)
			periods = append(periods, ev.Period)
		case metrics.RunEvent:
			runs = append(runs, ev)
		}
	}
	assert.Equal(t, []int{2, 1}, periods)
	require.Len(t, runs, 1)
	assert.Equal(t, "ok", runs[0].Status())
	assert.Equal(t, 3, runs[0].Periods)
}

func TestPolicyTableLookupBounds(t *testing.T) {
	c := newTestContext(t)
	res, err := NewEngine(c, Options{}).SolveOptimal(context.Background(), 2)
	require.NoError(t, err)
	_, ok := res.Policy.Lookup(0, model.State{})
	assert.False(t, ok)
	_, ok = res.Policy.Lookup(5, model.State{})
	assert.False(t, ok)
	_, ok = res.Policy.Lookup(1, model.State{Warehouse: 9})
	assert.False(t, ok)

	best, v := res.Values.Min()
	assert.True(t, c.Contains(best))
	assert.LessOrEqual(t, v, res.Values.Mean())
}
