package distribution

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/combin"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/transship/core/model"
)

// MaxDemand is the size of the truncated demand support.
const MaxDemand = 25

const (
	// PoissonMeanLimit bounds the Poisson mean so that the tail beyond
	// MaxDemand stays negligible.
	PoissonMeanLimit = 5.0
	// NegBinomialMomentLimit bounds mean+variance of the negative binomial.
	NegBinomialMomentLimit = 9.0

	zeroMean = 0.0001
)

var (
	// ErrUnknownKind is returned for unsupported demand laws.
	ErrUnknownKind = model.ErrUnknownDemandKind
	// ErrMissingParameter is returned when the negative binomial law is
	// requested without its success probability.
	ErrMissingParameter = errors.New("missing distribution parameter")
	// ErrSupportOverflow signals that the parameters put noticeable mass
	// beyond MaxDemand.
	ErrSupportOverflow = errors.New("demand exceeds truncated support")
	// ErrInvalidParameter is returned for parameters outside the domain of
	// the law.
	ErrInvalidParameter = errors.New("invalid distribution parameter")
)

// PMF holds P(D = d) for d in 0..MaxDemand-1.
type PMF [MaxDemand]float64

// Mass returns the total probability kept inside the truncated support.
func (p PMF) Mass() float64 {
	return floats.Sum(p[:])
}

// New builds the truncated PMF for the given demand law.
func New(kind model.DemandKind, params model.DemandParams) (PMF, error) {
	var pmf PMF
	switch kind {
	case model.Poisson:
		lambda := params.Param1
		if lambda < 0 || math.IsNaN(lambda) {
			return pmf, fmt.Errorf("%w: poisson mean %v", ErrInvalidParameter, lambda)
		}
		if lambda > PoissonMeanLimit {
			return pmf, fmt.Errorf("%w: poisson mean %v above %v, increase MaxDemand", ErrSupportOverflow, lambda, PoissonMeanLimit)
		}
		if lambda == 0 {
			lambda = zeroMean
		}
		dist := distuv.Poisson{Lambda: lambda}
		for d := range pmf {
			pmf[d] = dist.Prob(float64(d))
		}
		return pmf, nil
	case model.NegativeBinomial:
		r, p, err := negBinomialParams(params)
		if err != nil {
			return pmf, err
		}
		mean, variance := r*(1-p)/p, r*(1-p)/(p*p)
		if mean+variance > NegBinomialMomentLimit {
			return pmf, fmt.Errorf("%w: mean+variance %v above %v, increase MaxDemand", ErrSupportOverflow, mean+variance, NegBinomialMomentLimit)
		}
		if p == 1 {
			pmf[0] = 1
			return pmf, nil
		}
		logP, logQ := math.Log(p), math.Log1p(-p)
		for d := range pmf {
			k := float64(d)
			pmf[d] = math.Exp(combin.LogGeneralizedBinomial(k+r-1, k) + r*logP + k*logQ)
		}
		return pmf, nil
	default:
		return pmf, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
}

// Mean returns the untruncated mean of the demand law.
func Mean(kind model.DemandKind, params model.DemandParams) (float64, error) {
	switch kind {
	case model.Poisson:
		if params.Param1 < 0 || math.IsNaN(params.Param1) {
			return 0, fmt.Errorf("%w: poisson mean %v", ErrInvalidParameter, params.Param1)
		}
		return params.Param1, nil
	case model.NegativeBinomial:
		r, p, err := negBinomialParams(params)
		if err != nil {
			return 0, err
		}
		return r * (1 - p) / p, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
}

// negBinomialParams returns the number of successes r and the success
// probability p.
func negBinomialParams(params model.DemandParams) (float64, float64, error) {
	if params.Param2 == nil {
		return 0, 0, fmt.Errorf("%w: negative binomial needs a success probability", ErrMissingParameter)
	}
	r, p := params.Param1, *params.Param2
	if r <= 0 || !finite(r) {
		return 0, 0, fmt.Errorf("%w: negative binomial successes %v", ErrInvalidParameter, r)
	}
	if p <= 0 || p > 1 || math.IsNaN(p) {
		return 0, 0, fmt.Errorf("%w: negative binomial probability %v", ErrInvalidParameter, p)
	}
	return r, p, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
