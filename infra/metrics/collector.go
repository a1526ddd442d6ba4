package metrics

import (
	"context"

	"github.com/kilianp07/transship/core/logger"
	coremetrics "github.com/kilianp07/transship/core/metrics"
	"github.com/kilianp07/transship/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards solver events
// to the sink. The returned channel is closed once the collector has drained
// the bus, which happens when the bus is closed or ctx is canceled.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[coremetrics.Event], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil && log != nil {
					log.Warnf("metrics sink: %s event: %v", ev.Kind(), err)
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev coremetrics.Event) error {
	switch e := ev.(type) {
	case coremetrics.PeriodEvent:
		return sink.RecordPeriod(e)
	case coremetrics.RunEvent:
		if r, ok := sink.(coremetrics.RunRecorder); ok {
			return r.RecordRun(e)
		}
	}
	return nil
}
