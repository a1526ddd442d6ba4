// Package solver runs backward induction over a finite horizon. SolveOptimal
// searches the whole action space of every state and records the minimising
// action; Evaluate computes the cost of following a fixed Policy.
//
// Periods are processed from the last decision period down to period 1. The
// value table of the following period is frozen while the current one is
// written by a bounded pool of workers, each owning a disjoint range of
// states, and every period ends with a full barrier.
package solver
