// Package distribution builds the truncated probability tables used by the
// solver: per-store demand laws (Poisson or negative binomial) over
// 0..MaxDemand-1 and the binomial rationing table describing how many units
// of a warehouse request are actually delivered.
package distribution
