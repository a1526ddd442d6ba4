package journal

import (
	"context"
	"time"

	coremetrics "github.com/kilianp07/transship/core/metrics"
)

// Sink appends a Record to a Store for every finished run. Period events
// are ignored.
type Sink struct {
	store Store
}

// NewSink wraps store.
func NewSink(store Store) *Sink { return &Sink{store: store} }

func (s *Sink) RecordPeriod(coremetrics.PeriodEvent) error { return nil }

// RecordRun appends the run summary.
func (s *Sink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.store.Append(ctx, FromRunEvent(ev))
}

// Close closes the store.
func (s *Sink) Close() {
	_ = s.store.Close()
}
