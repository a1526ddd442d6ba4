package mdp

import "github.com/kilianp07/transship/core/model"

// FutureCost is the expected next-period value of a post-decision state
// given the orders of act, which arrive before the next period starts. next
// is indexed by Index. Store shortfalls consume warehouse stock in the same
// A-then-B order as the stage costs, which fixes the next warehouse level.
func (c *Context) FutureCost(post model.State, act model.Action, next []float64) float64 {
	w, a, b := post.Warehouse, post.StoreA, post.StoreB
	bin := c.binom
	var exp float64
	for db, pb := range c.pmfB {
		nextB := max(b-db, 0) + act.OrderB
		if b >= db {
			for da, pa := range c.pmfA {
				nextA := max(a-da, 0) + act.OrderA
				if a >= da {
					exp += pa * pb * next[c.index(w+act.WarehouseOrder, nextA, nextB)]
					continue
				}
				nA := min(da-a, w)
				for j := 0; j <= nA; j++ {
					exp += pa * pb * bin[nA][j] * next[c.index(w-j+act.WarehouseOrder, nextA, nextB)]
				}
			}
			continue
		}

		excess := db - b
		for da, pa := range c.pmfA {
			nextA := max(a-da, 0) + act.OrderA
			if a >= da {
				nB := min(excess, w)
				for j := 0; j <= nB; j++ {
					exp += pa * pb * bin[nB][j] * next[c.index(w-j+act.WarehouseOrder, nextA, nextB)]
				}
				continue
			}
			nA := min(da-a, w)
			for j := 0; j <= nA; j++ {
				nB := min(excess, w-j)
				for k := 0; k <= nB; k++ {
					exp += pa * pb * bin[nA][j] * bin[nB][k] * next[c.index(w-j-k+act.WarehouseOrder, nextA, nextB)]
				}
			}
		}
	}
	return exp
}

// ActionValue is the expected discounted cost of taking act in s: the
// transshipment cost, the stage cost of the post-decision state and the
// discounted future cost against next.
func (c *Context) ActionValue(s model.State, act model.Action, stage *StageCosts, next []float64) float64 {
	post := act.PostDecision(s)
	idx := c.Index(post)
	immediate := c.params.Costs.Transship*float64(act.Transshipped()) + stage.Warehouse[idx] + stage.Store[idx]
	return immediate + c.params.Gamma*c.FutureCost(post, act, next)
}
