package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"GoDFA/internal/automaton"
)

var (
	namespace = "godfa"
	subsystem = "server"

	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "runs_total",
			Help:      "Total number of sequence runs by outcome",
		},
		[]string{"automaton", "result"},
	)

	symbolsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "symbols_total",
			Help:      "Total number of symbols applied by successful runs",
		},
		[]string{"automaton"},
	)

	runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "run_duration_seconds",
			Help:      "Duration of sequence runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
		[]string{"automaton"},
	)

	automataLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "automata_loaded",
			Help:      "Number of automata currently registered",
		},
	)
)

// resultLabel is "ok" for success, otherwise the error kind.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := automaton.Kind(err); kind != "" {
		return kind
	}
	return "error"
}

func recordRun(name string, symbols int, d time.Duration, err error) {
	runsTotal.WithLabelValues(name, resultLabel(err)).Inc()
	runDuration.WithLabelValues(name).Observe(d.Seconds())
	if err == nil {
		symbolsTotal.WithLabelValues(name).Add(float64(symbols))
	}
}
