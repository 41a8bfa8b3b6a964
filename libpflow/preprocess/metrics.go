package preprocess

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "pauliflow"
	subsystem        = "preprocess"
)

var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "runs_total",
			Help:      "Total number of preprocessing runs",
		},
		[]string{"status"}, // success, error
	)

	EliminationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "eliminations_total",
			Help:      "Total number of eliminated Pauli measurements",
		},
		[]string{"basis", "outcome"}, // X|Y|Z, random|deterministic
	)

	DeferredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "deferred_total",
			Help:      "Total number of measurements left for execution",
		},
	)

	LocalComplementsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "local_complements_total",
			Help:      "Total number of local complementations performed",
		},
	)

	PassesPerRun = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "passes_per_run",
			Help:      "Number of elimination passes needed to reach the fixed point",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "run_duration_seconds",
			Help:      "Time taken to preprocess a pattern",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
