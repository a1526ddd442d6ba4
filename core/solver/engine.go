package solver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/transship/core/heuristics"
	"github.com/kilianp07/transship/core/logger"
	"github.com/kilianp07/transship/core/mdp"
	"github.com/kilianp07/transship/core/metrics"
	"github.com/kilianp07/transship/core/model"
	"github.com/kilianp07/transship/internal/eventbus"
	"github.com/kilianp07/transship/internal/workpool"
)

// DefaultWorkers is the worker pool size used when Options.Workers is unset.
const DefaultWorkers = 4

var (
	// ErrInvariant wraps internal consistency failures such as a policy
	// producing an infeasible action.
	ErrInvariant = heuristics.ErrInvariant
	// ErrInvalidHorizon is returned when the number of periods is below 1.
	ErrInvalidHorizon = errors.New("invalid horizon")
)

// Mode names used in events and logs.
const (
	ModeOptimal    = "optimal"
	ModeEvaluation = "evaluation"
)

// Options tune an Engine.
type Options struct {
	// Workers bounds the goroutines evaluating states. Values below 1 select
	// DefaultWorkers.
	Workers int
	// Chunk is the number of states handed to a worker at once.
	Chunk int
	// RecordActions keeps the executed actions when evaluating a policy.
	RecordActions bool
	// RunID tags events and logs.
	RunID  string
	Logger logger.Logger
	// Events receives a PeriodEvent per period and a RunEvent per run.
	Events *eventbus.Bus[metrics.Event]
}

// Result is the outcome of a run.
type Result struct {
	Values *ValueTable
	// Policy is nil when a policy evaluation did not record actions.
	Policy   *PolicyTable
	Periods  int
	Duration time.Duration
}

// Engine runs backward induction over a Context.
type Engine struct {
	m    *mdp.Context
	opts Options
	log  logger.Logger

	mu    sync.Mutex
	stage *mdp.StageCosts
}

// NewEngine returns an Engine for m.
func NewEngine(m *mdp.Context, opts Options) *Engine {
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}
	if opts.Chunk < 1 {
		opts.Chunk = workpool.DefaultChunk
	}
	log := opts.Logger
	if log == nil {
		log = m.Logger()
	}
	return &Engine{m: m, opts: opts, log: log}
}

// Context returns the problem the engine solves.
func (e *Engine) Context() *mdp.Context { return e.m }

// StageCosts returns the single-period cost caches, computing them on first
// use.
func (e *Engine) StageCosts(ctx context.Context) (*mdp.StageCosts, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stage != nil {
		return e.stage, nil
	}
	sc, err := e.m.StageCosts(ctx, e.opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("stage costs: %w", err)
	}
	e.stage = sc
	return sc, nil
}

// evaluator returns the action and value chosen for s in a period.
type evaluator func(st heuristics.Stage, s model.State, sc *mdp.StageCosts, next []float64) (model.Action, float64, error)

// SolveOptimal computes the optimal value table and policy over periods.
func (e *Engine) SolveOptimal(ctx context.Context, periods int) (*Result, error) {
	best := func(_ heuristics.Stage, s model.State, sc *mdp.StageCosts, next []float64) (model.Action, float64, error) {
		var (
			bestAct model.Action
			bestVal float64
			found   bool
		)
		for act := range e.m.Actions(s) {
			v := e.m.ActionValue(s, act, sc, next)
			if !found || v < bestVal {
				bestAct, bestVal, found = act, v, true
			}
		}
		if !found {
			return model.Action{}, 0, fmt.Errorf("%w: empty action space for %s", ErrInvariant, s)
		}
		return bestAct, bestVal, nil
	}
	return e.run(ctx, periods, ModeOptimal, "", true, best)
}

// Evaluate computes the value table of following p over periods. Every
// action p returns is checked for feasibility.
func (e *Engine) Evaluate(ctx context.Context, periods int, p heuristics.Policy) (*Result, error) {
	if p == nil {
		return nil, errors.New("evaluate: nil policy")
	}
	name := p.Name()
	eval := func(st heuristics.Stage, s model.State, sc *mdp.StageCosts, next []float64) (model.Action, float64, error) {
		act, err := p.Decide(st, s)
		if err != nil {
			return model.Action{}, 0, fmt.Errorf("policy %s in period %d at %s: %w", name, st.Period, s, err)
		}
		if err := e.m.Feasible(s, act); err != nil {
			return model.Action{}, 0, fmt.Errorf("%w: policy %s in period %d: %w", ErrInvariant, name, st.Period, err)
		}
		return act, e.m.ActionValue(s, act, sc, next), nil
	}
	return e.run(ctx, periods, ModeEvaluation, name, e.opts.RecordActions, eval)
}

func (e *Engine) run(ctx context.Context, periods int, mode, policy string, record bool, eval evaluator) (res *Result, err error) {
	start := time.Now()
	defer func() {
		e.publishRun(mode, policy, periods, time.Since(start), res, err)
	}()

	if periods < 1 {
		return nil, fmt.Errorf("%w: %d periods", ErrInvalidHorizon, periods)
	}
	sc, err := e.StageCosts(ctx)
	if err != nil {
		return nil, err
	}

	size := e.m.Size()
	next := make([]float64, size)
	if tc := e.m.Params().TerminalCost; tc != 0 {
		for i := range next {
			next[i] = tc
		}
	}
	var table *PolicyTable
	if record {
		table = newPolicyTable(e.m, periods)
	}

	e.log.Infof("%s run started: %d periods, %d states, %d workers", mode, periods, size, e.opts.Workers)
	for t := periods - 1; t >= 1; t-- {
		periodStart := time.Now()
		st := heuristics.Stage{Period: t, Terminal: t == periods-1}
		cur := make([]float64, size)
		if table != nil {
			table.prepare(t)
		}
		frozen := next
		err := workpool.Run(ctx, size, e.opts.Workers, e.opts.Chunk, func(ctx context.Context, lo, hi int) error {
			for i := lo; i < hi; i++ {
				act, v, err := eval(st, e.m.StateAt(i), sc, frozen)
				if err != nil {
					return err
				}
				cur[i] = v
				if table != nil {
					table.set(t, i, act)
				}
			}
			return ctx.Err()
		})
		if err != nil {
			return nil, fmt.Errorf("period %d: %w", t, err)
		}
		next = cur
		e.publishPeriod(mode, policy, t, time.Since(periodStart), cur)
	}

	return &Result{
		Values:   &ValueTable{m: e.m, values: next},
		Policy:   table,
		Periods:  periods,
		Duration: time.Since(start),
	}, nil
}

func (e *Engine) publishPeriod(mode, policy string, t int, d time.Duration, values []float64) {
	ev := metrics.PeriodEvent{
		RunID:     e.opts.RunID,
		Mode:      mode,
		Policy:    policy,
		Period:    t,
		States:    len(values),
		Duration:  d,
		MinValue:  floats.Min(values),
		MeanValue: floats.Sum(values) / float64(len(values)),
		Time:      time.Now(),
	}
	e.log.Infof("period %d done in %s (min value %.4f)", t, d, ev.MinValue)
	if e.opts.Events != nil {
		e.opts.Events.Publish(ev)
	}
}

func (e *Engine) publishRun(mode, policy string, periods int, d time.Duration, res *Result, err error) {
	ev := metrics.RunEvent{
		RunID:    e.opts.RunID,
		Mode:     mode,
		Policy:   policy,
		Periods:  periods,
		States:   e.m.Size(),
		Workers:  e.opts.Workers,
		Duration: d,
		Time:     time.Now(),
	}
	if err != nil {
		ev.Err = err.Error()
		e.log.Errorf("%s run failed after %s: %v", mode, d, err)
	} else if res != nil {
		ev.MinState, ev.MinValue = res.Values.Min()
		e.log.Infof("%s run finished in %s, best state %s value %.4f", mode, d, ev.MinState, ev.MinValue)
	}
	if e.opts.Events != nil {
		e.opts.Events.Publish(ev)
	}
}
