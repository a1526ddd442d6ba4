// Package heuristics implements decision rules that replace the exhaustive
// action search of the solver: base-stock ordering with greedy allocation,
// proportional rebalancing (TIE), marginal-value threshold rebalancing (ESR),
// one-step lookahead rebalancing and replay of a recorded policy.
//
// Every rule satisfies Policy and is a pure function of the stage, the state
// and tables built once at construction. Policies are built by name through
// Registry:
//
//	p, err := heuristics.New(ctx, heuristics.Env{MDP: m}, factory.ModuleConfig{
//	    Type: "esr",
//	    Conf: map[string]any{"warehouse": 12, "store_a": 6, "store_b": 6},
//	})
package heuristics
