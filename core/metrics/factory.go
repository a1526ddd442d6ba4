package metrics

import (
	"github.com/kilianp07/transship/core/factory"
	"github.com/kilianp07/transship/core/logger"
)

// Env is passed to every sink factory.
type Env struct {
	Log logger.Logger
}

var sinkRegistry = factory.NewRegistry[Env, MetricsSink]()

// RegisterMetricsSink adds a metrics sink factory identified by name.
func RegisterMetricsSink(name string, f factory.Factory[Env, MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// SinkTypes lists the registered sink names.
func SinkTypes() []string {
	return sinkRegistry.Names()
}

// NewMetricsSink creates a MetricsSink from the provided configuration.
func NewMetricsSink(env Env, cfgs []factory.ModuleConfig) (MetricsSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(env, cfgs[0])
	}
	sinks := make([]MetricsSink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(env, c)
		if err != nil {
			return nil, err
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}
