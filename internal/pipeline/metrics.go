package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var batchCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "brewq",
		Subsystem: "pipeline",
		Name:      "batches_total",
		Help:      "Total number of result batches processed, by outcome.",
	},
	[]string{"outcome"},
)

var queryCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "brewq",
		Subsystem: "pipeline",
		Name:      "queries_total",
		Help:      "Total number of queries started, by kind.",
	},
	[]string{"kind"},
)
