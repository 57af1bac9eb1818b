package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var transitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "portal_moderation_transitions",
	Help: "Number of committed project status transitions",
}, []string{"status"})
