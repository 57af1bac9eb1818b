package notifications

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "portal_notification_deliveries",
	Help: "Number of moderation event deliveries by channel and status",
}, []string{"channel", "status"})
