package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/transship/core/heuristics"
	"github.com/kilianp07/transship/core/mdp"
	"github.com/kilianp07/transship/core/model"
	"github.com/kilianp07/transship/core/solver"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `solver:
  demand:
    kind: negative_binomial
    store_a:
      param1: 2
      param2: 0.5
    store_b:
      param1: 3
      param2: 0.6
  costs:
    h_s: 1
    h_w: 0.5
    c_u_s: 19
    c_p: 10
    c_ts: 2
  capacity:
    warehouse: 6
    store_a: 4
    store_b: 5
  fulfil_prob: 0
  periods: 5
  workers: 2
policy:
  type: tie
  conf:
    warehouse: 5
    store_a: 2
    store_b: 3
    seed: 7
metrics:
  sinks:
    - type: "nop"
output:
  format: csv
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"kind", cfg.Solver.Demand.Kind, "negative_binomial"},
		{"store_b.param1", cfg.Solver.Demand.StoreB.Param1, 3.0},
		{"c_u_s", cfg.Solver.Costs.Shortage, 19.0},
		{"capacity.store_b", cfg.Solver.Capacity.StoreB, 5},
		{"fulfil_prob", *cfg.Solver.FulfilProb, 0.0},
		{"gamma", *cfg.Solver.Gamma, mdp.DefaultGamma},
		{"periods", cfg.Solver.Periods, 5},
		{"workers", cfg.Solver.Workers, 2},
		{"policy.type", cfg.Policy.Type, "tie"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"output.format", cfg.Output.Format, FormatCSV},
		{"output.dir", cfg.Output.Dir, "out"},
		{"logging.level", cfg.Logging.Level, "info"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}

	p, err := cfg.Solver.Params()
	require.NoError(t, err)
	assert.Equal(t, model.NegativeBinomial, p.Demand.Kind)
	require.NotNil(t, p.Demand.StoreA.Param2)
	assert.InDelta(t, 0.5, *p.Demand.StoreA.Param2, 1e-12)

	m, err := mdp.NewContext(p)
	require.NoError(t, err)
	pol, err := heuristics.New(context.Background(), heuristics.Env{MDP: m, Workers: 1}, cfg.Policy.Module())
	require.NoError(t, err)
	assert.Equal(t, "tie", pol.Name())
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.json", `{"solver": {"demand": {"store_a": {"param1": 2}, "store_b": {"param1": 3}}}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	p, err := cfg.Solver.Params()
	require.NoError(t, err)
	assert.Equal(t, model.Poisson, p.Demand.Kind)
	assert.Equal(t, mdp.Capacity{Warehouse: 20, StoreA: 10, StoreB: 10}, p.Capacity)
	assert.Equal(t, mdp.DefaultFulfilProb, p.FulfilProb)
	assert.Equal(t, DefaultPeriods, cfg.Solver.Periods)
	assert.Equal(t, solver.DefaultWorkers, cfg.Solver.Workers)
	assert.Equal(t, FormatJSON, cfg.Output.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "solver:\n  workers: 2\n")
	t.Setenv("TS_SOLVER__WORKERS", "8")
	t.Setenv("TS_SOLVER__COSTS__C_TS", "1.5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Solver.Workers)
	assert.Equal(t, 1.5, cfg.Solver.Costs.Transship)
}

func TestLoad_DotEnv(t *testing.T) {
	const key = "TS_SOLVER__PERIODS"
	if _, ok := os.LookupEnv(key); ok {
		t.Skipf("%s already set", key)
	}
	t.Cleanup(func() { _ = os.Unsetenv(key) })
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "solver:\n  periods: 3\n")
	writeFile(t, dir, ".env", key+"=7\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Solver.Periods)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		file string
		data string
		want error
	}{
		{"unknown kind", "a.yaml", "solver:\n  demand:\n    kind: gamma\n", model.ErrUnknownDemandKind},
		{"bad periods", "b.yaml", "solver:\n  periods: -1\n", solver.ErrInvalidHorizon},
		{"bad capacity", "c.yaml", "solver:\n  capacity:\n    store_a: -2\n", mdp.ErrInvalidCapacity},
		{"bad cost", "d.yaml", "solver:\n  costs:\n    c_ts: -1\n", mdp.ErrInvalidParameter},
		{"unknown policy", "e.yaml", "policy:\n  type: magic\n", heuristics.ErrUnknownPolicy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, dir, tt.file, tt.data))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := Load(writeFile(t, dir, "f.toml", "")); err == nil {
		t.Fatal("expected unsupported format error")
	}
	if _, err := Load(writeFile(t, dir, "g.yaml", "policy:\n  type: replay\n")); err == nil {
		t.Fatal("expected missing replay table error")
	}
	if _, err := Load(writeFile(t, dir, "h.yaml", "output:\n  format: xml\n")); err == nil {
		t.Fatal("expected bad output format error")
	}
}
