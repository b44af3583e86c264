package attachments

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var operations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "medrecords",
	Name:      "attachment_operations_total",
	Help:      "Attachment store operations by slot and result.",
}, []string{"op", "slot", "result"})

func observe(op string, slot Slot, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	operations.WithLabelValues(op, string(slot), result).Inc()
}
