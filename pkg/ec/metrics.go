package ec

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecfan",
		Subsystem: "ec",
		Name:      "transactions_total",
		Help:      "Single-byte EC transactions (label op is read or write)",
	}, []string{"op"})
	transactionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecfan",
		Subsystem: "ec",
		Name:      "transaction_errors_total",
		Help:      "Single-byte EC transactions aborted by a port error",
	}, []string{"op"})
)
