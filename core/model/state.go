package model

import "fmt"

// Store identifies one of the two retail locations.
type Store int

const (
	StoreA Store = iota + 1
	StoreB
)

// String returns a human-readable representation of the store.
func (s Store) String() string {
	switch s {
	case StoreA:
		return "A"
	case StoreB:
		return "B"
	default:
		return "unknown"
	}
}

// Other returns the opposite store.
func (s Store) Other() Store {
	if s == StoreA {
		return StoreB
	}
	return StoreA
}

// State is the on-hand inventory at the start of a period.
type State struct {
	Warehouse int `json:"warehouse"`
	StoreA    int `json:"store_a"`
	StoreB    int `json:"store_b"`
}

// Stock returns the on-hand quantity of the given store.
func (s State) Stock(st Store) int {
	if st == StoreA {
		return s.StoreA
	}
	return s.StoreB
}

func (s State) String() string {
	return fmt.Sprintf("(%d,%d,%d)", s.Warehouse, s.StoreA, s.StoreB)
}

// Action is a replenishment and transshipment decision. Orders arrive at the
// start of the next period, transshipments are immediate.
type Action struct {
	WarehouseOrder int `json:"wh_order"`
	OrderA         int `json:"a_order"`
	OrderB         int `json:"b_order"`
	ShipAToB       int `json:"ship_a_to_b"`
	ShipBToA       int `json:"ship_b_to_a"`
}

// IsZero reports whether the action orders and ships nothing.
func (a Action) IsZero() bool {
	return a == Action{}
}

// Transshipped returns the total number of units moved between stores.
func (a Action) Transshipped() int {
	return a.ShipAToB + a.ShipBToA
}

// PostDecision returns the state after transshipment and store orders are
// taken from the warehouse, before demand is realised.
func (a Action) PostDecision(s State) State {
	return State{
		Warehouse: s.Warehouse - a.OrderA - a.OrderB,
		StoreA:    s.StoreA - a.ShipAToB + a.ShipBToA,
		StoreB:    s.StoreB - a.ShipBToA + a.ShipAToB,
	}
}

func (a Action) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d,%d)", a.WarehouseOrder, a.OrderA, a.OrderB, a.ShipAToB, a.ShipBToA)
}
