package model

import (
	"errors"
	"testing"
)

func TestActionPostDecision(t *testing.T) {
	s := State{Warehouse: 6, StoreA: 2, StoreB: 5}
	a := Action{WarehouseOrder: 3, OrderA: 1, OrderB: 2, ShipBToA: 2}
	got := a.PostDecision(s)
	want := State{Warehouse: 3, StoreA: 4, StoreB: 3}
	if got != want {
		t.Fatalf("expected %v got %v", want, got)
	}
	if a.Transshipped() != 2 {
		t.Fatalf("expected 2 transshipped got %d", a.Transshipped())
	}
}

func TestActionIsZero(t *testing.T) {
	if !(Action{}).IsZero() {
		t.Fatal("zero action not reported as zero")
	}
	if (Action{OrderA: 1}).IsZero() {
		t.Fatal("non-zero action reported as zero")
	}
}

func TestStoreOther(t *testing.T) {
	if StoreA.Other() != StoreB || StoreB.Other() != StoreA {
		t.Fatal("unexpected other store")
	}
	s := State{StoreA: 4, StoreB: 7}
	if s.Stock(StoreA) != 4 || s.Stock(StoreB) != 7 {
		t.Fatalf("unexpected stock lookup %v", s)
	}
}

func TestParseDemandKind(t *testing.T) {
	cases := map[string]DemandKind{"P": Poisson, "poisson": Poisson, "N": NegativeBinomial, "negative_binomial": NegativeBinomial}
	for in, want := range cases {
		got, err := ParseDemandKind(in)
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if got != want {
			t.Fatalf("%s: expected %v got %v", in, want, got)
		}
	}
	if _, err := ParseDemandKind("gamma"); !errors.Is(err, ErrUnknownDemandKind) {
		t.Fatal("expected error for unknown kind")
	}
}
