package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bourse_operations_total",
		Help: "Engine operations by name and outcome (ok or error kind).",
	}, []string{"op", "outcome"})

	settledGross = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bourse_settled_gross_total",
		Help: "Gross proceeds distributed, in base units, by sale kind.",
	}, []string{"kind"})

	pendingEffects = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bourse_effects_pending",
		Help: "Journal effects not yet delivered after the last drain.",
	})

	effectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bourse_effect_failures_total",
		Help: "Effect deliveries that failed and were left pending.",
	}, []string{"kind"})
)
