package mdp

import (
	"context"
	"time"

	"github.com/kilianp07/transship/core/model"
	"github.com/kilianp07/transship/internal/workpool"
)

// Store shortfalls are served by the warehouse in a fixed order: store A is
// rationed first and store B draws on whatever A left. Both stores share
// costs and lead times so the order does not bias the expectation.

// ExpectationWarehouse is the expected warehouse holding cost of a
// post-decision state: units left after both stores' shortfalls have been
// rationed from the warehouse, times h_w.
func (c *Context) ExpectationWarehouse(s model.State) float64 {
	w, hw := s.Warehouse, c.params.Costs.HoldingWarehouse
	if w == 0 || hw == 0 {
		return 0
	}
	bin := c.binom
	var exp float64
	for da, pa := range c.pmfA {
		nA := min(max(da-s.StoreA, 0), w)
		for db, pb := range c.pmfB {
			for j := 0; j <= nA; j++ {
				nB := min(max(db-s.StoreB, 0), w-j)
				for k := 0; k <= nB; k++ {
					exp += pa * pb * bin[nA][j] * bin[nB][k] * hw * float64(w-j-k)
				}
			}
		}
	}
	return exp
}

// ExpectationStore is the expected store cost of a post-decision state:
// holding on leftover stock, c_p per unit of shortfall the warehouse serves
// and c_u_s per unit left unserved.
func (c *Context) ExpectationStore(s model.State) float64 {
	costs := c.params.Costs
	bin := c.binom
	w, a, b := s.Warehouse, s.StoreA, s.StoreB
	var exp float64

	for da, pa := range c.pmfA {
		if a >= da {
			exp += pa * costs.HoldingStore * float64(a-da)
			continue
		}
		excess := da - a
		nA := min(excess, w)
		for j := 0; j <= nA; j++ {
			exp += pa * bin[nA][j] * (costs.Expedite*float64(j) + costs.Shortage*float64(excess-j))
		}
	}

	for db, pb := range c.pmfB {
		if b >= db {
			exp += pb * costs.HoldingStore * float64(b-db)
			continue
		}
		excess := db - b
		for da, pa := range c.pmfA {
			if a >= da {
				nB := min(excess, w)
				for k := 0; k <= nB; k++ {
					exp += pa * pb * bin[nB][k] * (costs.Expedite*float64(k) + costs.Shortage*float64(excess-k))
				}
				continue
			}
			// Store A is short as well: B is served from what A's draw left.
			// Each of A's outcomes is counted with unit weight.
			nA := min(da-a, w)
			for j := 0; j <= nA; j++ {
				nB := min(excess, w-j)
				for k := 0; k <= nB; k++ {
					exp += pa * pb * bin[nB][k] * (costs.Expedite*float64(k) + costs.Shortage*float64(excess-k))
				}
			}
		}
	}
	return exp
}

// StageCosts caches both single-period expectations for every state, indexed
// like the value tables.
type StageCosts struct {
	Warehouse []float64
	Store     []float64
}

// At returns the total single-period cost of a post-decision state index.
func (sc *StageCosts) At(idx int) float64 {
	return sc.Warehouse[idx] + sc.Store[idx]
}

// StageCosts evaluates ExpectationWarehouse and ExpectationStore over the
// whole state space on up to workers goroutines.
func (c *Context) StageCosts(ctx context.Context, workers int) (*StageCosts, error) {
	start := time.Now()
	sc := &StageCosts{
		Warehouse: make([]float64, c.size),
		Store:     make([]float64, c.size),
	}
	err := workpool.Run(ctx, c.size, workers, workpool.DefaultChunk, func(_ context.Context, lo, hi int) error {
		for i := lo; i < hi; i++ {
			s := c.StateAt(i)
			sc.Warehouse[i] = c.ExpectationWarehouse(s)
			sc.Store[i] = c.ExpectationStore(s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.log.Infof("stage costs computed for %d states in %s", c.size, time.Since(start))
	return sc, nil
}
