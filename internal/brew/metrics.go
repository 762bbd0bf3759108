package brew

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var invocationsCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "brewq",
		Subsystem: "brew",
		Name:      "invocations_total",
		Help:      "Total number of brew processes started, by subcommand.",
	},
	[]string{"command"},
)
