package hal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	portOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecfan",
		Subsystem: "hal",
		Name:      "port_operations_total",
		Help:      "Raw I/O port operations issued (label op is read or write)",
	}, []string{"op"})
	portErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecfan",
		Subsystem: "hal",
		Name:      "port_errors_total",
		Help:      "Raw I/O port operations that failed",
	}, []string{"op"})
	backend = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ecfan",
		Subsystem: "hal",
		Name:      "backend",
		Help:      "Port I/O backend in use",
	}, []string{"type"})
)

func observePort(op string, err error) {
	portOperations.WithLabelValues(op).Inc()
	if err != nil {
		portErrors.WithLabelValues(op).Inc()
	}
}
