package aggregate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durations = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "medrecords",
	Name:      "aggregate_operation_seconds",
	Help:      "Duration of aggregate create, update, delete and read operations.",
	Buckets:   prometheus.DefBuckets,
}, []string{"op"})

// observeDuration starts a timer for op, stopped by calling the result
func observeDuration(op string) func() {
	start := time.Now()
	return func() {
		durations.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
