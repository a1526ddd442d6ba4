package metrics

import (
	"time"

	"github.com/kilianp07/transship/core/model"
)

// Event is published on the solver event bus.
type Event interface {
	Kind() string
}

// PeriodEvent summarises one completed backward-induction period.
type PeriodEvent struct {
	RunID    string
	Mode     string
	Policy   string
	Period   int
	States   int
	Duration time.Duration
	// MinValue and MeanValue summarise the value table of the period.
	MinValue  float64
	MeanValue float64
	Time      time.Time
}

func (PeriodEvent) Kind() string { return "period" }

// RunEvent summarises a whole run.
type RunEvent struct {
	RunID    string
	Mode     string
	Policy   string
	Periods  int
	States   int
	Workers  int
	Duration time.Duration
	MinValue float64
	MinState model.State
	Err      string
	Time     time.Time
}

func (RunEvent) Kind() string { return "run" }

// Status is "ok" or "error".
func (e RunEvent) Status() string {
	if e.Err != "" {
		return "error"
	}
	return "ok"
}

// MetricsSink records per-period solver progress.
type MetricsSink interface {
	RecordPeriod(ev PeriodEvent) error
}

// RunRecorder records run summaries.
type RunRecorder interface {
	RecordRun(ev RunEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPeriod(PeriodEvent) error { return nil }
func (NopSink) RecordRun(RunEvent) error       { return nil }
