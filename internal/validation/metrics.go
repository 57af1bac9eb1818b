package validation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var checksRun = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "portal_validation_checks_run",
	Help: "Number of automated validation checks run",
}, []string{"check", "outcome"})

var runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "portal_validation_run_duration_seconds",
	Help:    "Duration of a full validation run for one project",
	Buckets: prometheus.DefBuckets,
})

var overridesApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "portal_validation_overrides",
	Help: "Number of manual overrides set or cleared",
}, []string{"check", "action"})
