// Package factory provides a small generic registry used to instantiate
// modules from configuration. A module is named by a type string and carries a
// map of raw settings; its factory also receives a shared environment value,
// such as the solver context a decision policy reads from.
//
// Example usage:
//
//	reg := factory.NewRegistry[*mdp.Context, heuristics.Policy]()
//	reg.Register("base_stock", func(ctx *mdp.Context, conf map[string]any) (heuristics.Policy, error) {
//	    var c heuristics.Targets
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return heuristics.NewBaseStock(ctx, c)
//	})
//	p, err := reg.Create(ctx, factory.ModuleConfig{Type: "base_stock", Conf: conf})
package factory
