package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusProvider registers instruments with a Prometheus registerer.
// Counters map to prometheus.Counter, up/down counters to prometheus.Gauge and histograms
// to prometheus.Histogram with default buckets. ConstLabels are passed through.
type PrometheusProvider struct {
	namespace  string
	factory    promauto.Factory
	counters   registry[prometheus.Counter]
	gauges     registry[prometheus.Gauge]
	histograms registry[prometheus.Histogram]
}

// NewPrometheusProvider returns a provider registering into reg under namespace.
// A nil reg registers with prometheus.DefaultRegisterer.
func NewPrometheusProvider(reg prometheus.Registerer, namespace string) *PrometheusProvider {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusProvider{namespace: namespace, factory: promauto.With(reg)}
}

func (p *PrometheusProvider) Counter(name string, opts ...InstrumentOption) Counter {
	c := p.counters.getOrCreate(name, func() prometheus.Counter {
		cfg := describe(opts)
		return p.factory.NewCounter(prometheus.CounterOpts{
			Namespace:   p.namespace,
			Name:        name,
			Help:        help(name, cfg),
			ConstLabels: cfg.ConstLabels,
		})
	})
	return promCounter{c}
}

func (p *PrometheusProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	g := p.gauges.getOrCreate(name, func() prometheus.Gauge {
		cfg := describe(opts)
		return p.factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   p.namespace,
			Name:        name,
			Help:        help(name, cfg),
			ConstLabels: cfg.ConstLabels,
		})
	})
	return promGauge{g}
}

func (p *PrometheusProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	h := p.histograms.getOrCreate(name, func() prometheus.Histogram {
		cfg := describe(opts)
		return p.factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   p.namespace,
			Name:        name,
			Help:        help(name, cfg),
			ConstLabels: cfg.ConstLabels,
			Buckets:     prometheus.DefBuckets,
		})
	})
	return promHistogram{h}
}

func help(name string, d Description) string {
	if d.Help != "" {
		return d.Help
	}
	return name
}

type promCounter struct{ c prometheus.Counter }

// Add ignores negative deltas; Prometheus counters panic on them.
func (c promCounter) Add(n int64) {
	if n > 0 {
		c.c.Add(float64(n))
	}
}

type promGauge struct{ g prometheus.Gauge }

func (g promGauge) Add(n int64) { g.g.Add(float64(n)) }

type promHistogram struct{ h prometheus.Histogram }

func (h promHistogram) Record(v float64) { h.h.Observe(v) }
