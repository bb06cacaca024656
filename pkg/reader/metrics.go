package reader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "fdxb"

// Metrics counts decoder activity on a registry of its own.
type Metrics struct {
	registry *prometheus.Registry

	Edges            prometheus.Counter
	Bits             prometheus.Counter
	Headers          prometheus.Counter
	Telegrams        prometheus.Counter
	ChecksumFailures prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      name,
			Help:      help,
		})
	}

	return &Metrics{
		registry:         registry,
		Edges:            counter("edges_total", "Edges read from the source."),
		Bits:             counter("bits_total", "Bits demodulated."),
		Headers:          counter("headers_total", "Telegram headers matched."),
		Telegrams:        counter("telegrams_total", "Telegrams completed."),
		ChecksumFailures: counter("checksum_failures_total", "Telegrams whose CRC did not match."),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
