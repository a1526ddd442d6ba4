// Package export writes solver results as JSON or CSV and reads recorded
// policy tables back for replay.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"

	"github.com/kilianp07/transship/core/heuristics"
	"github.com/kilianp07/transship/core/mdp"
	"github.com/kilianp07/transship/core/model"
	"github.com/kilianp07/transship/core/solver"
)

// Supported formats.
const (
	JSON = "json"
	CSV  = "csv"
)

// ErrUnknownFormat is returned for formats other than JSON and CSV.
var ErrUnknownFormat = errors.New("unknown export format")

// ValueRecord is the exported value of one state.
type ValueRecord struct {
	State model.State `json:"state"`
	Value float64     `json:"value"`
}

// CostRecord is the exported stage cost of one post-decision state.
type CostRecord struct {
	State     model.State `json:"state"`
	Warehouse float64     `json:"warehouse"`
	Store     float64     `json:"store"`
}

var stateHeader = []string{"warehouse", "store_a", "store_b"}

var actionHeader = []string{"wh_order", "a_order", "b_order", "ship_a_to_b", "ship_b_to_a"}

// WriteValues writes the state values in the given format.
func WriteValues(w io.Writer, format string, values iter.Seq2[model.State, float64]) error {
	var recs []ValueRecord
	for s, v := range values {
		recs = append(recs, ValueRecord{State: s, Value: v})
	}
	switch format {
	case JSON:
		return json.NewEncoder(w).Encode(recs)
	case CSV:
		return writeCSV(w, append(stateHeader, "value"), len(recs), func(i int) []string {
			return append(stateFields(recs[i].State), formatFloat(recs[i].Value))
		})
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

// WritePolicy writes recorded decisions in the given format.
func WritePolicy(w io.Writer, format string, entries iter.Seq[solver.Entry]) error {
	var recs []solver.Entry
	for e := range entries {
		recs = append(recs, e)
	}
	switch format {
	case JSON:
		return json.NewEncoder(w).Encode(recs)
	case CSV:
		header := append(append([]string{"period"}, stateHeader...), actionHeader...)
		return writeCSV(w, header, len(recs), func(i int) []string {
			e := recs[i]
			rec := append([]string{strconv.Itoa(e.Period)}, stateFields(e.State)...)
			return append(rec, actionFields(e.Action)...)
		})
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

// WriteStageCosts writes both stage-cost caches of every state of m.
func WriteStageCosts(w io.Writer, format string, m *mdp.Context, sc *mdp.StageCosts) error {
	recs := make([]CostRecord, 0, m.Size())
	for s := range m.States() {
		idx := m.Index(s)
		recs = append(recs, CostRecord{State: s, Warehouse: sc.Warehouse[idx], Store: sc.Store[idx]})
	}
	switch format {
	case JSON:
		return json.NewEncoder(w).Encode(recs)
	case CSV:
		return writeCSV(w, append(stateHeader, "warehouse_cost", "store_cost"), len(recs), func(i int) []string {
			return append(stateFields(recs[i].State), formatFloat(recs[i].Warehouse), formatFloat(recs[i].Store))
		})
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

func writeCSV(w io.Writer, header []string, n int, row func(i int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range n {
		if err := cw.Write(row(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func stateFields(s model.State) []string {
	return []string{strconv.Itoa(s.Warehouse), strconv.Itoa(s.StoreA), strconv.Itoa(s.StoreB)}
}

func actionFields(a model.Action) []string {
	return []string{
		strconv.Itoa(a.WarehouseOrder),
		strconv.Itoa(a.OrderA),
		strconv.Itoa(a.OrderB),
		strconv.Itoa(a.ShipAToB),
		strconv.Itoa(a.ShipBToA),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ReadPolicy parses a policy table written by WritePolicy. A (period, state)
// pair may appear only once.
func ReadPolicy(r io.Reader, format string) (heuristics.MapLookup, error) {
	var entries []solver.Entry
	switch format {
	case JSON:
		if err := json.NewDecoder(r).Decode(&entries); err != nil {
			return nil, fmt.Errorf("decode policy: %w", err)
		}
	case CSV:
		var err error
		if entries, err = readPolicyCSV(r); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
	lookup := make(heuristics.MapLookup, len(entries))
	for _, e := range entries {
		if e.Period < 0 {
			return nil, fmt.Errorf("negative period %d for state %s", e.Period, e.State)
		}
		key := heuristics.PeriodState{Period: e.Period, State: e.State}
		if _, dup := lookup[key]; dup {
			return nil, fmt.Errorf("duplicate entry for period %d state %s", e.Period, e.State)
		}
		lookup[key] = e.Action
	}
	return lookup, nil
}

func readPolicyCSV(r io.Reader) ([]solver.Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 1 + len(stateHeader) + len(actionHeader)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	entries := make([]solver.Entry, 0, len(rows)-1)
	for line, row := range rows[1:] {
		n := make([]int, len(row))
		for i, f := range row {
			if n[i], err = strconv.Atoi(f); err != nil {
				return nil, fmt.Errorf("policy line %d column %d: %w", line+2, i+1, err)
			}
		}
		entries = append(entries, solver.Entry{
			Period: n[0],
			State:  model.State{Warehouse: n[1], StoreA: n[2], StoreB: n[3]},
			Action: model.Action{WarehouseOrder: n[4], OrderA: n[5], OrderB: n[6], ShipAToB: n[7], ShipBToA: n[8]},
		})
	}
	return entries, nil
}
