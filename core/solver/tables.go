package solver

import (
	"iter"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/transship/core/mdp"
	"github.com/kilianp07/transship/core/model"
)

// ValueTable maps every state to its expected discounted cost-to-go.
type ValueTable struct {
	m      *mdp.Context
	values []float64
}

// At returns the value of s.
func (v *ValueTable) At(s model.State) float64 {
	return v.values[v.m.Index(s)]
}

// Len returns the number of states.
func (v *ValueTable) Len() int { return len(v.values) }

// Values returns the dense values in state-index order. The slice must not
// be modified.
func (v *ValueTable) Values() []float64 { return v.values }

// All yields every state with its value in state-index order.
func (v *ValueTable) All() iter.Seq2[model.State, float64] {
	return func(yield func(model.State, float64) bool) {
		for i, x := range v.values {
			if !yield(v.m.StateAt(i), x) {
				return
			}
		}
	}
}

// Min returns the state with the lowest value. Ties go to the lowest index.
func (v *ValueTable) Min() (model.State, float64) {
	i := floats.MinIdx(v.values)
	return v.m.StateAt(i), v.values[i]
}

// Mean returns the average value over all states.
func (v *ValueTable) Mean() float64 {
	return floats.Sum(v.values) / float64(len(v.values))
}

// Entry is one recorded decision.
type Entry struct {
	Period int          `json:"period"`
	State  model.State  `json:"state"`
	Action model.Action `json:"action"`
}

type slot struct {
	act model.Action
	set bool
}

// PolicyTable records the action chosen for each (period, state).
type PolicyTable struct {
	m       *mdp.Context
	periods [][]slot
}

func newPolicyTable(m *mdp.Context, periods int) *PolicyTable {
	return &PolicyTable{m: m, periods: make([][]slot, periods)}
}

// prepare allocates the slots of period t. It must run before workers write
// to the period.
func (p *PolicyTable) prepare(t int) {
	p.periods[t] = make([]slot, p.m.Size())
}

func (p *PolicyTable) set(t, idx int, act model.Action) {
	p.periods[t][idx] = slot{act: act, set: true}
}

// Lookup returns the action recorded for period and s.
func (p *PolicyTable) Lookup(period int, s model.State) (model.Action, bool) {
	if period < 0 || period >= len(p.periods) || p.periods[period] == nil || !p.m.Contains(s) {
		return model.Action{}, false
	}
	sl := p.periods[period][p.m.Index(s)]
	return sl.act, sl.set
}

// Len returns the number of recorded decisions.
func (p *PolicyTable) Len() int {
	n := 0
	for _, slots := range p.periods {
		for _, sl := range slots {
			if sl.set {
				n++
			}
		}
	}
	return n
}

// All yields the recorded decisions by ascending period and state index.
func (p *PolicyTable) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for t, slots := range p.periods {
			for i, sl := range slots {
				if !sl.set {
					continue
				}
				if !yield(Entry{Period: t, State: p.m.StateAt(i), Action: sl.act}) {
					return
				}
			}
		}
	}
}
