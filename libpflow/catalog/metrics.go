package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var LookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "pauliflow",
		Subsystem: "catalog",
		Name:      "lookups_total",
		Help:      "Total number of catalog lookups",
	},
	[]string{"result"}, // hit, miss
)
