// Package metrics defines the small instrumentation surface used by the aggregation and
// stage packages, with an in-memory provider for tests and tools, a no-op provider used by
// default, and a Prometheus-backed provider for long-running processes.
package metrics

import "maps"

// Provider constructs instruments. Asking twice for the same name returns the same
// instrument; options of the second call are ignored. Implementations must be safe for
// concurrent use.
type Provider interface {
	Counter(name string, opts ...InstrumentOption) Counter
	UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter
	Histogram(name string, opts ...InstrumentOption) Histogram
}

// Counter accumulates a monotonic count, such as finalized worker contexts.
type Counter interface {
	Add(n int64)
}

// UpDownCounter tracks a level, such as inputs in flight.
type UpDownCounter interface {
	Add(n int64)
}

// Histogram observes a distribution, such as merge durations in seconds.
type Histogram interface {
	Record(v float64)
}

// Description is what a provider knows about an instrument besides its name.
type Description struct {
	Help string
	Unit string
	// ConstLabels are fixed label pairs of the instrument. They must not vary per observation.
	ConstLabels map[string]string
}

// InstrumentOption fills in a Description.
type InstrumentOption func(*Description)

// WithDescription sets the help text.
func WithDescription(help string) InstrumentOption {
	return func(d *Description) { d.Help = help }
}

// WithUnit records the unit of the instrument ("1", "seconds").
func WithUnit(unit string) InstrumentOption {
	return func(d *Description) { d.Unit = unit }
}

// WithConstLabels adds fixed label pairs. The map is copied.
func WithConstLabels(labels map[string]string) InstrumentOption {
	return func(d *Description) {
		if len(labels) == 0 {
			return
		}
		if d.ConstLabels == nil {
			d.ConstLabels = make(map[string]string, len(labels))
		}
		maps.Copy(d.ConstLabels, labels)
	}
}

func describe(opts []InstrumentOption) Description {
	var d Description
	for _, o := range opts {
		if o != nil {
			o(&d)
		}
	}
	return d
}
