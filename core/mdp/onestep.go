package mdp

import (
	"fmt"

	"github.com/kilianp07/transship/core/model"
)

// expectedUnserved is the expected number of short units left unserved when
// short units are requested from a warehouse holding avail units.
func (c *Context) expectedUnserved(short, avail int) float64 {
	n := min(short, avail)
	row := &c.binom[n]
	var exp float64
	for j := 0; j <= n; j++ {
		exp += row[j] * float64(short-j)
	}
	return exp
}

// OneStepAhead is the expected unserved demand of a store over the current
// and the next period when it holds x units and orders up to target. The
// second return value is the current-period part alone. When terminal is
// set the next period has no demand.
func (c *Context) OneStepAhead(x int, st model.Store, target int, terminal bool) (float64, float64) {
	q := max(target-x, 0)
	pmf := c.PMF(st)
	var exp, first float64
	for d1, p1 := range pmf {
		short1 := max(d1-x, 0)
		fs := p1 * c.expectedUnserved(short1, short1)
		first += fs
		exp += fs

		left := max(x-d1, 0)
		if terminal {
			// d2 = 0 always leaves no shortage.
			continue
		}
		for d2, p2 := range pmf {
			short2 := max(d2-left-q, 0)
			exp += p1 * p2 * c.expectedUnserved(short2, short2)
		}
	}
	return exp, first
}

// MarginalEntry is one row of a marginal-value table.
type MarginalEntry struct {
	// Value is the two-period expected shortage.
	Value float64
	// FirstStage is the current-period part of Value.
	FirstStage float64
}

// OneStepTable holds OneStepAhead for every stock level of both stores at
// fixed order-up-to levels.
type OneStepTable struct {
	a []MarginalEntry
	b []MarginalEntry
}

// At returns the entry for store st holding x units.
func (t *OneStepTable) At(st model.Store, x int) MarginalEntry {
	if st == model.StoreA {
		return t.a[x]
	}
	return t.b[x]
}

// Len returns the number of stock levels tabulated for st.
func (t *OneStepTable) Len(st model.Store) int {
	if st == model.StoreA {
		return len(t.a)
	}
	return len(t.b)
}

// NewOneStepTable tabulates OneStepAhead for stock levels below each store's
// capacity.
func (c *Context) NewOneStepTable(targetA, targetB int, terminal bool) (*OneStepTable, error) {
	if targetA < 0 || targetB < 0 {
		return nil, fmt.Errorf("%w: negative order-up-to level %d/%d", ErrInvalidParameter, targetA, targetB)
	}
	t := &OneStepTable{
		a: make([]MarginalEntry, c.params.Capacity.StoreA),
		b: make([]MarginalEntry, c.params.Capacity.StoreB),
	}
	for x := range t.a {
		v, f := c.OneStepAhead(x, model.StoreA, targetA, terminal)
		t.a[x] = MarginalEntry{Value: v, FirstStage: f}
	}
	for x := range t.b {
		v, f := c.OneStepAhead(x, model.StoreB, targetB, terminal)
		t.b[x] = MarginalEntry{Value: v, FirstStage: f}
	}
	return t, nil
}
