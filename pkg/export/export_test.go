package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/transship/core/mdp"
	"github.com/kilianp07/transship/core/model"
	"github.com/kilianp07/transship/core/solver"
)

func solveSmall(t *testing.T) (*mdp.Context, *solver.Engine, *solver.Result) {
	t.Helper()
	p := mdp.DefaultParams()
	p.Demand.StoreA = model.DemandParams{Param1: 1}
	p.Demand.StoreB = model.DemandParams{Param1: 1.5}
	p.Costs = mdp.Costs{HoldingStore: 1, HoldingWarehouse: 0.5, Shortage: 19, Expedite: 4, Transship: 1}
	p.Capacity = mdp.Capacity{Warehouse: 3, StoreA: 2, StoreB: 2}
	m, err := mdp.NewContext(p)
	require.NoError(t, err)
	e := solver.NewEngine(m, solver.Options{Workers: 2})
	res, err := e.SolveOptimal(context.Background(), 3)
	require.NoError(t, err)
	return m, e, res
}

func TestPolicyRoundTrip(t *testing.T) {
	m, _, res := solveSmall(t)
	for _, format := range []string{JSON, CSV} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WritePolicy(&buf, format, res.Policy.All()))
			lookup, err := ReadPolicy(&buf, format)
			require.NoError(t, err)
			assert.Len(t, lookup, res.Policy.Len())
			for period := 1; period < 3; period++ {
				for s := range m.States() {
					want, ok := res.Policy.Lookup(period, s)
					require.True(t, ok)
					got, ok := lookup.Lookup(period, s)
					require.True(t, ok, "missing %d %s", period, s)
					assert.Equal(t, want, got)
				}
			}
		})
	}
}

func TestWriteValuesJSON(t *testing.T) {
	m, _, res := solveSmall(t)
	var buf bytes.Buffer
	require.NoError(t, WriteValues(&buf, JSON, res.Values.All()))
	var recs []ValueRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &recs))
	require.Len(t, recs, m.Size())
	for _, r := range recs {
		assert.Equal(t, res.Values.At(r.State), r.Value)
	}
}

func TestWriteValuesCSV(t *testing.T) {
	m, _, res := solveSmall(t)
	var buf bytes.Buffer
	require.NoError(t, WriteValues(&buf, CSV, res.Values.All()))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, m.Size()+1)
	assert.Equal(t, []string{"warehouse", "store_a", "store_b", "value"}, rows[0])
	assert.Equal(t, []string{"0", "0", "0"}, rows[1][:3])
}

func TestWriteStageCosts(t *testing.T) {
	m, e, _ := solveSmall(t)
	sc, err := e.StageCosts(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteStageCosts(&buf, JSON, m, sc))
	var recs []CostRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &recs))
	require.Len(t, recs, m.Size())
	for _, r := range recs {
		idx := m.Index(r.State)
		assert.Equal(t, sc.Warehouse[idx], r.Warehouse)
		assert.Equal(t, sc.Store[idx], r.Store)
	}

	buf.Reset()
	require.NoError(t, WriteStageCosts(&buf, CSV, m, sc))
	assert.True(t, strings.HasPrefix(buf.String(), "warehouse,store_a,store_b,warehouse_cost,store_cost\n"))
}

func TestUnknownFormat(t *testing.T) {
	_, _, res := solveSmall(t)
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteValues(&buf, "xml", res.Values.All()), ErrUnknownFormat)
	assert.ErrorIs(t, WritePolicy(&buf, "xml", res.Policy.All()), ErrUnknownFormat)
	_, err := ReadPolicy(&buf, "xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestReadPolicyErrors(t *testing.T) {
	tests := []struct {
		name   string
		format string
		data   string
	}{
		{"bad json", JSON, `{`},
		{"negative period", JSON, `[{"period":-1,"state":{},"action":{}}]`},
		{"duplicate", JSON, `[{"period":1,"state":{"warehouse":1}},{"period":1,"state":{"warehouse":1}}]`},
		{"short row", CSV, "period,warehouse\n1,2\n"},
		{"not a number", CSV, "period,warehouse,store_a,store_b,wh_order,a_order,b_order,ship_a_to_b,ship_b_to_a\n1,x,0,0,0,0,0,0,0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadPolicy(strings.NewReader(tt.data), tt.format); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestReadPolicyEmptyCSV(t *testing.T) {
	lookup, err := ReadPolicy(strings.NewReader(""), CSV)
	require.NoError(t, err)
	assert.Empty(t, lookup)
}
