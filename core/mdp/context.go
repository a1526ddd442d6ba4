package mdp

import (
	"fmt"
	"time"

	"github.com/kilianp07/transship/core/distribution"
	"github.com/kilianp07/transship/core/logger"
	"github.com/kilianp07/transship/core/model"
)

// Context is the immutable problem definition shared by every component of a
// run.
type Context struct {
	params Params
	pmfA   distribution.PMF
	pmfB   distribution.PMF
	meanA  float64
	meanB  float64
	binom  *distribution.RationingTable
	size   int
	log    logger.Logger
}

// Option customises a Context.
type Option func(*Context)

// WithLogger sets the logger used while building tables.
func WithLogger(l logger.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.log = l
		}
	}
}

// NewContext validates p and precomputes the demand and rationing tables.
// All configuration errors are reported here, before any computation.
func NewContext(p Params, opts ...Option) (*Context, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	c := &Context{params: p, log: nopLogger{}}
	for _, opt := range opts {
		opt(c)
	}
	start := time.Now()

	var err error
	if c.pmfA, err = distribution.New(p.Demand.Kind, p.Demand.StoreA); err != nil {
		return nil, fmt.Errorf("store A demand: %w", err)
	}
	if c.pmfB, err = distribution.New(p.Demand.Kind, p.Demand.StoreB); err != nil {
		return nil, fmt.Errorf("store B demand: %w", err)
	}
	if c.meanA, err = distribution.Mean(p.Demand.Kind, p.Demand.StoreA); err != nil {
		return nil, fmt.Errorf("store A demand: %w", err)
	}
	if c.meanB, err = distribution.Mean(p.Demand.Kind, p.Demand.StoreB); err != nil {
		return nil, fmt.Errorf("store B demand: %w", err)
	}
	if c.binom, err = distribution.NewRationingTable(p.FulfilProb); err != nil {
		return nil, err
	}
	c.size = p.Capacity.Warehouse * p.Capacity.StoreA * p.Capacity.StoreB

	c.log.Debugw("context built", map[string]any{
		"states":   c.size,
		"demand":   p.Demand.Kind.String(),
		"mean_a":   c.meanA,
		"mean_b":   c.meanB,
		"duration": time.Since(start).String(),
	})
	return c, nil
}

// Params returns a copy of the run parameters.
func (c *Context) Params() Params { return c.params }

// Costs returns the cost coefficients.
func (c *Context) Costs() Costs { return c.params.Costs }

// Capacity returns the location capacities.
func (c *Context) Capacity() Capacity { return c.params.Capacity }

// Gamma returns the discount factor.
func (c *Context) Gamma() float64 { return c.params.Gamma }

// Size is the number of states.
func (c *Context) Size() int { return c.size }

// Logger returns the context logger.
func (c *Context) Logger() logger.Logger { return c.log }

// PMF returns the truncated demand distribution of a store.
func (c *Context) PMF(st model.Store) distribution.PMF {
	if st == model.StoreA {
		return c.pmfA
	}
	return c.pmfB
}

// Mean returns the untruncated demand mean of a store.
func (c *Context) Mean(st model.Store) float64 {
	if st == model.StoreA {
		return c.meanA
	}
	return c.meanB
}

// StoreCapacity returns the capacity of a store.
func (c *Context) StoreCapacity(st model.Store) int {
	if st == model.StoreA {
		return c.params.Capacity.StoreA
	}
	return c.params.Capacity.StoreB
}

// Rationing returns the binomial rationing table.
func (c *Context) Rationing() *distribution.RationingTable { return c.binom }

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
