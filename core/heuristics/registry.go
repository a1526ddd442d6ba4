package heuristics

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/transship/core/factory"
	"github.com/kilianp07/transship/core/mdp"
)

// Env carries what a policy factory needs besides its own settings.
type Env struct {
	// Ctx bounds table construction. A nil Ctx never cancels.
	Ctx context.Context
	MDP *mdp.Context
	// Lookup is the recorded policy executed by "replay".
	Lookup ActionLookup
	// Workers bounds the goroutines used to build policy tables.
	Workers int
}

// Conf is the raw configuration shared by the built-in policies.
type Conf struct {
	Warehouse int    `json:"warehouse"`
	StoreA    int    `json:"store_a"`
	StoreB    int    `json:"store_b"`
	Seed      uint64 `json:"seed"`
}

// Targets returns the order-up-to levels of c.
func (c Conf) Targets() Targets {
	return Targets{Warehouse: c.Warehouse, StoreA: c.StoreA, StoreB: c.StoreB}
}

// Registry holds the built-in policies under their configuration names.
var Registry = factory.NewRegistry[Env, Policy]()

func init() {
	must(Registry.Register("replay", func(env Env, _ map[string]any) (Policy, error) {
		if env.Lookup == nil {
			return nil, errors.New("replay policy needs a recorded policy table")
		}
		return NewReplay(env.Lookup), nil
	}))
	must(Registry.Register("base_stock", func(env Env, conf map[string]any) (Policy, error) {
		c, err := decodeConf(conf)
		if err != nil {
			return nil, err
		}
		return build(NewBaseStock(env.MDP, c.Targets()))
	}))
	must(Registry.Register("tie", func(env Env, conf map[string]any) (Policy, error) {
		c, err := decodeConf(conf)
		if err != nil {
			return nil, err
		}
		return build(NewTIE(env.MDP, c.Targets(), c.Seed))
	}))
	must(Registry.Register("esr", func(env Env, conf map[string]any) (Policy, error) {
		c, err := decodeConf(conf)
		if err != nil {
			return nil, err
		}
		return build(NewESR(env.MDP, c.Targets()))
	}))
	must(Registry.Register("lookahead", func(env Env, conf map[string]any) (Policy, error) {
		c, err := decodeConf(conf)
		if err != nil {
			return nil, err
		}
		return build(NewLookahead(env.context(), env.MDP, c.Targets(), env.Workers))
	}))
}

// New builds the policy described by mc. Tables built on the way stop when
// ctx is canceled.
func New(ctx context.Context, env Env, mc factory.ModuleConfig) (Policy, error) {
	if env.MDP == nil {
		return nil, errors.New("policy environment has no context")
	}
	env.Ctx = ctx
	p, err := Registry.Create(env, mc)
	if errors.Is(err, factory.ErrUnknownType) {
		return nil, fmt.Errorf("%w %q (known: %v)", ErrUnknownPolicy, mc.Type, Registry.Names())
	}
	return p, err
}

func (e Env) context() context.Context {
	if e.Ctx == nil {
		return context.Background()
	}
	return e.Ctx
}

func decodeConf(conf map[string]any) (Conf, error) {
	var c Conf
	if err := factory.Decode(conf, &c); err != nil {
		return c, fmt.Errorf("decode policy conf: %w", err)
	}
	return c, nil
}

// build avoids returning a typed nil inside the Policy interface.
func build[P Policy](p P, err error) (Policy, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
