package heuristics

import "github.com/kilianp07/transship/core/model"

// ActionLookup returns the action recorded for a period and state.
type ActionLookup interface {
	Lookup(period int, s model.State) (model.Action, bool)
}

// Replay executes a recorded policy. States without a recorded action do
// nothing.
type Replay struct {
	table ActionLookup
}

// NewReplay wraps a recorded policy table.
func NewReplay(table ActionLookup) *Replay {
	return &Replay{table: table}
}

func (*Replay) Name() string { return "replay" }

func (p *Replay) Decide(stage Stage, s model.State) (model.Action, error) {
	if p.table == nil {
		return model.Action{}, nil
	}
	act, _ := p.table.Lookup(stage.Period, s)
	return act, nil
}

// MapLookup is an ActionLookup backed by a map, as produced when a policy
// table is read back from disk.
type MapLookup map[PeriodState]model.Action

// PeriodState keys a recorded action.
type PeriodState struct {
	Period int
	State  model.State
}

func (m MapLookup) Lookup(period int, s model.State) (model.Action, bool) {
	act, ok := m[PeriodState{Period: period, State: s}]
	return act, ok
}
