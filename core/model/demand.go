package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDemandKind is returned for demand kinds other than Poisson and
// negative binomial.
var ErrUnknownDemandKind = errors.New("unknown demand kind")

// DemandKind selects the law used for store demand.
type DemandKind int

const (
	Poisson DemandKind = iota
	NegativeBinomial
)

// String returns a human-readable representation of the demand kind.
func (k DemandKind) String() string {
	switch k {
	case Poisson:
		return "poisson"
	case NegativeBinomial:
		return "negative_binomial"
	default:
		return "unknown"
	}
}

// ParseDemandKind accepts the names used in configuration files as well as
// the single-letter codes P and N.
func ParseDemandKind(s string) (DemandKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "p", "poisson":
		return Poisson, nil
	case "n", "negbin", "negative_binomial", "negativebinomial":
		return NegativeBinomial, nil
	default:
		return 0, fmt.Errorf("%w %q", ErrUnknownDemandKind, s)
	}
}

// DemandParams describes the demand law of one store. Param2 is only used by
// the negative binomial law and is nil when not supplied.
type DemandParams struct {
	Param1 float64
	Param2 *float64
}
