// Package mdp holds the immutable context of a two-echelon inventory problem:
// one warehouse supplying two stores under random demand, with lateral
// transshipment between the stores.
//
// A Context owns the run parameters and the precomputed probability tables.
// From them it derives the state space, the feasible action space of each
// state, the single-period expected costs of a post-decision state and the
// expected cost-to-go of an action against a next-period value table. The
// auxiliary tables used by the marginal-value (ESR) and lookahead heuristics
// are also built here.
//
// States are mapped onto a dense index so value tables can be flat slices:
//
//	idx := ctx.Index(model.State{Warehouse: w, StoreA: a, StoreB: b})
//	v := next[idx]
//
// A Context is safe for concurrent use once constructed.
package mdp
