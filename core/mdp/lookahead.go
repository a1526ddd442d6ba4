package mdp

import (
	"context"
	"fmt"

	"github.com/kilianp07/transship/core/distribution"
	"github.com/kilianp07/transship/core/model"
	"github.com/kilianp07/transship/internal/workpool"
)

// LookaheadEntry is the best order of a store for a given warehouse level and
// store stock, with its two-period cost.
type LookaheadEntry struct {
	MarginalEntry
	Order int
}

// LookaheadTable holds a LookaheadEntry per (warehouse level, store, stock).
type LookaheadTable struct {
	terminal bool
	a        [][]LookaheadEntry
	b        [][]LookaheadEntry
}

// Terminal reports whether the table was built for the last decision period.
func (t *LookaheadTable) Terminal() bool { return t.terminal }

// At returns the entry of store st holding x units while the warehouse holds w.
func (t *LookaheadTable) At(w int, st model.Store, x int) LookaheadEntry {
	if st == model.StoreA {
		return t.a[w][x]
	}
	return t.b[w][x]
}

// lookaheadCost returns the current-period and next-period costs, in
// shortage units, of a store holding x units that orders q units from a
// warehouse holding w. Holding is priced at ratio per unit. The order
// reserves q warehouse units, so the current shortfall is rationed from w-q.
func (c *Context) lookaheadCost(pmf *distribution.PMF, w, x, q int, ratio float64, terminal bool) (float64, float64) {
	var first, second float64
	for d1, p1 := range pmf {
		short1 := max(d1-x, 0)
		left := max(x-d1, 0)
		first += p1 * (c.expectedUnserved(short1, w-q) + ratio*float64(left))

		stock := left + q
		if terminal {
			second += p1 * ratio * float64(stock)
			continue
		}
		for d2, p2 := range pmf {
			short2 := max(d2-stock, 0)
			second += p1 * p2 * (c.expectedUnserved(short2, short2) + ratio*float64(max(stock-d2, 0)))
		}
	}
	return first, second
}

func (c *Context) bestOrder(pmf *distribution.PMF, w, x, capacity int, ratio float64, terminal bool) LookaheadEntry {
	var best LookaheadEntry
	for q := 0; q <= min(w, capacity-1-x); q++ {
		first, second := c.lookaheadCost(pmf, w, x, q, ratio, terminal)
		if q == 0 || first+second < best.Value {
			best = LookaheadEntry{MarginalEntry: MarginalEntry{Value: first + second, FirstStage: first}, Order: q}
		}
	}
	return best
}

// NewLookaheadTable builds the lookahead table for every warehouse level on
// up to workers goroutines. The shortage cost must be positive since holding
// is expressed relative to it.
func (c *Context) NewLookaheadTable(ctx context.Context, workers int, terminal bool) (*LookaheadTable, error) {
	costs := c.params.Costs
	if costs.Shortage <= 0 {
		return nil, fmt.Errorf("%w: lookahead needs a positive shortage cost, got %v", ErrInvalidParameter, costs.Shortage)
	}
	ratio := costs.HoldingStore / costs.Shortage
	cp := c.params.Capacity
	t := &LookaheadTable{
		terminal: terminal,
		a:        make([][]LookaheadEntry, cp.Warehouse),
		b:        make([][]LookaheadEntry, cp.Warehouse),
	}
	err := workpool.Run(ctx, cp.Warehouse, workers, 1, func(_ context.Context, lo, hi int) error {
		for w := lo; w < hi; w++ {
			t.a[w] = make([]LookaheadEntry, cp.StoreA)
			for x := range t.a[w] {
				t.a[w][x] = c.bestOrder(&c.pmfA, w, x, cp.StoreA, ratio, terminal)
			}
			t.b[w] = make([]LookaheadEntry, cp.StoreB)
			for x := range t.b[w] {
				t.b[w][x] = c.bestOrder(&c.pmfB, w, x, cp.StoreB, ratio, terminal)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}
