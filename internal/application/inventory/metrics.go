package inventory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resultados posibles de una operación para métricas.
const (
	resultCommitted = "committed"
	resultRejected  = "rejected"
	resultBusy      = "busy"
	resultError     = "error"
)

var operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "stock",
	Subsystem: "engine",
	Name:      "operations_total",
	Help:      "Operaciones de inventario por tipo y resultado.",
}, []string{"kind", "result"})
