package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kilianp07/transship/config"
	"github.com/kilianp07/transship/core/heuristics"
	"github.com/kilianp07/transship/core/mdp"
	coremetrics "github.com/kilianp07/transship/core/metrics"
	"github.com/kilianp07/transship/core/solver"
	"github.com/kilianp07/transship/infra/logger"
	"github.com/kilianp07/transship/infra/metrics"
	"github.com/kilianp07/transship/internal/eventbus"
	"github.com/kilianp07/transship/pkg/export"
)

// Runner wires the configuration to the model, the engine and the metrics
// sinks for a single run.
type Runner struct {
	cfg    *config.Config
	log    logger.Logger
	runID  string
	m      *mdp.Context
	engine *solver.Engine

	sink      coremetrics.MetricsSink
	bus       *eventbus.Bus[coremetrics.Event]
	collected <-chan struct{}
	stop      context.CancelFunc
}

// New builds the model context and the engine. Demand and capacity errors
// are reported here, before any computation starts.
func New(cfg *config.Config) (*Runner, error) {
	log, err := logger.NewWithConfig("runner", cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	runID := uuid.NewString()
	if zl, ok := log.(*logger.ZerologLogger); ok {
		log = zl.With("run_id", runID)
	}

	params, err := cfg.Solver.Params()
	if err != nil {
		return nil, fmt.Errorf("solver params: %w", err)
	}
	m, err := mdp.NewContext(params, mdp.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	sink, err := coremetrics.NewMetricsSink(coremetrics.Env{Log: log}, cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	bus := eventbus.New[coremetrics.Event]()
	r := &Runner{
		cfg:       cfg,
		log:       log,
		runID:     runID,
		m:         m,
		sink:      sink,
		bus:       bus,
		collected: metrics.StartEventCollector(ctx, bus, sink, log),
		stop:      stop,
	}
	if addr := cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr, log); err != nil {
				log.Errorf("prom server: %v", err)
			}
		}()
	}

	opts := cfg.Solver.EngineOptions()
	opts.RunID = runID
	opts.Logger = log
	opts.Events = bus
	opts.RecordActions = cfg.Output.Policy
	r.engine = solver.NewEngine(m, opts)
	return r, nil
}

// RunID identifies the run in logs and metrics.
func (r *Runner) RunID() string { return r.runID }

// Model returns the model context of the run.
func (r *Runner) Model() *mdp.Context { return r.m }

// Solve computes the optimal values and policy and writes them to the
// output directory.
func (r *Runner) Solve(ctx context.Context) (*solver.Result, error) {
	res, err := r.engine.SolveOptimal(ctx, r.cfg.Solver.Periods)
	if err != nil {
		return nil, err
	}
	if err := r.writeResult(res); err != nil {
		return nil, err
	}
	s, v := res.Values.Min()
	r.log.Infof("optimal run finished in %s: min value %.4f at %s", res.Duration, v, s)
	return res, nil
}

// Evaluate computes the values of the configured policy and writes them to
// the output directory.
func (r *Runner) Evaluate(ctx context.Context) (*solver.Result, error) {
	pcfg := r.cfg.Policy
	if pcfg.Type == "" {
		return nil, fmt.Errorf("%w: no policy configured", heuristics.ErrUnknownPolicy)
	}
	env := heuristics.Env{MDP: r.m, Workers: r.cfg.Solver.Workers}
	if pcfg.Table != "" {
		lookup, err := readPolicy(pcfg.Table)
		if err != nil {
			return nil, err
		}
		env.Lookup = lookup
	}
	p, err := heuristics.New(ctx, env, pcfg.Module())
	if err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}
	res, err := r.engine.Evaluate(ctx, r.cfg.Solver.Periods, p)
	if err != nil {
		return nil, err
	}
	if err := r.writeResult(res); err != nil {
		return nil, err
	}
	r.log.Infof("policy %s evaluated in %s: mean value %.4f", p.Name(), res.Duration, res.Values.Mean())
	return res, nil
}

// StageCosts computes the single-period cost caches and writes them to the
// output directory.
func (r *Runner) StageCosts(ctx context.Context) (*mdp.StageCosts, error) {
	sc, err := r.engine.StageCosts(ctx)
	if err != nil {
		return nil, err
	}
	err = r.writeFile("stage_costs", func(f *os.File) error {
		return export.WriteStageCosts(f, r.cfg.Output.Format, r.m, sc)
	})
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// Close flushes pending events to the sinks and stops the metrics server.
func (r *Runner) Close() error {
	r.bus.Close()
	<-r.collected
	r.stop()
	if c, ok := r.sink.(interface{ Close() }); ok {
		c.Close()
	}
	if n := r.bus.Dropped(); n > 0 {
		r.log.Warnf("%d metrics events dropped", n)
	}
	return nil
}

func (r *Runner) writeResult(res *solver.Result) error {
	err := r.writeFile("values", func(f *os.File) error {
		return export.WriteValues(f, r.cfg.Output.Format, res.Values.All())
	})
	if err != nil || res.Policy == nil || !r.cfg.Output.Policy {
		return err
	}
	return r.writeFile("policy", func(f *os.File) error {
		return export.WritePolicy(f, r.cfg.Output.Format, res.Policy.All())
	})
}

func (r *Runner) writeFile(name string, write func(f *os.File) error) (err error) {
	dir := r.cfg.Output.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}
	path := filepath.Join(dir, name+"."+r.cfg.Output.Format)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	r.log.Debugf("wrote %s", path)
	return nil
}

func readPolicy(path string) (heuristics.MapLookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open policy table: %w", err)
	}
	defer f.Close()
	format := export.JSON
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		format = export.CSV
	}
	lookup, err := export.ReadPolicy(f, format)
	if err != nil {
		return nil, fmt.Errorf("policy table %s: %w", path, err)
	}
	return lookup, nil
}
