package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives pairing and round lifecycle events.
type Recorder interface {
	RoundPaired(tables, byes int, took time.Duration)
	PairingFailed()
	RoundClosed(participants int, took time.Duration)
	ResultsReported(source string, n int)
}

// Prometheus records to its own registry.
type Prometheus struct {
	registry      *prometheus.Registry
	pairings      *prometheus.CounterVec
	pairDuration  prometheus.Histogram
	tables        prometheus.Histogram
	byes          prometheus.Counter
	closes        prometheus.Counter
	closeDuration prometheus.Histogram
	field         prometheus.Gauge
	results       *prometheus.CounterVec
}

// NewPrometheus registers the aesops collectors plus Go runtime metrics.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		pairings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aesops",
			Name:      "pairings_total",
			Help:      "Pairing attempts by outcome.",
		}, []string{"outcome"}),
		pairDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aesops",
			Name:      "pairing_duration_seconds",
			Help:      "Time spent computing a round's pairings.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		tables: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aesops",
			Name:      "round_tables",
			Help:      "Tables per paired round.",
			Buckets:   prometheus.LinearBuckets(4, 8, 8),
		}),
		byes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aesops",
			Name:      "byes_total",
			Help:      "Byes handed out.",
		}),
		closes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aesops",
			Name:      "rounds_closed_total",
			Help:      "Rounds closed.",
		}),
		closeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aesops",
			Name:      "round_close_duration_seconds",
			Help:      "Time spent recomputing standings on close.",
			Buckets:   prometheus.DefBuckets,
		}),
		field: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aesops",
			Name:      "last_closed_round_participants",
			Help:      "Participants updated by the most recent close.",
		}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aesops",
			Name:      "results_reported_total",
			Help:      "Results recorded by source.",
		}, []string{"source"}),
	}
	p.registry.MustRegister(
		p.pairings, p.pairDuration, p.tables, p.byes,
		p.closes, p.closeDuration, p.field, p.results,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// Registry exposes the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *Prometheus) RoundPaired(tables, byes int, took time.Duration) {
	p.pairings.WithLabelValues("ok").Inc()
	p.pairDuration.Observe(took.Seconds())
	p.tables.Observe(float64(tables))
	p.byes.Add(float64(byes))
}

func (p *Prometheus) PairingFailed() {
	p.pairings.WithLabelValues("failed").Inc()
}

func (p *Prometheus) RoundClosed(participants int, took time.Duration) {
	p.closes.Inc()
	p.closeDuration.Observe(took.Seconds())
	p.field.Set(float64(participants))
}

func (p *Prometheus) ResultsReported(source string, n int) {
	p.results.WithLabelValues(source).Add(float64(n))
}

// Noop discards everything.
type Noop struct{}

func (Noop) RoundPaired(int, int, time.Duration) {}
func (Noop) PairingFailed()                      {}
func (Noop) RoundClosed(int, time.Duration)      {}
func (Noop) ResultsReported(string, int)         {}

var (
	_ Recorder = (*Prometheus)(nil)
	_ Recorder = Noop{}
)
