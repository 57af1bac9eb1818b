package directory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var queries = promauto.NewCounter(prometheus.CounterOpts{
	Name: "portal_directory_queries",
	Help: "Number of public directory queries served",
})
