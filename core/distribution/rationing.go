package distribution

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// RationingTable holds P(Binomial(n, p) = k) for n, k in 0..MaxDemand. Row n
// describes how many units of an n-unit warehouse request are delivered.
type RationingTable [MaxDemand + 1][MaxDemand + 1]float64

// NewRationingTable builds the table for fulfilment probability p.
func NewRationingTable(p float64) (*RationingTable, error) {
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("%w: fulfilment probability %v", ErrInvalidParameter, p)
	}
	var t RationingTable
	for n := range t {
		switch {
		case n == 0 || p == 0:
			t[n][0] = 1
		case p == 1:
			t[n][n] = 1
		default:
			dist := distuv.Binomial{N: float64(n), P: p}
			for k := 0; k <= n; k++ {
				t[n][k] = dist.Prob(float64(k))
			}
		}
	}
	return &t, nil
}

// At returns P(k of n requested units are delivered).
func (t *RationingTable) At(n, k int) float64 {
	return t[n][k]
}
