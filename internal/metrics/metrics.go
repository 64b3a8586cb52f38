package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all kimbia metrics
const namespace = "kimbia"

// Registry is the global Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

// AuthDecisions counts policy evaluator outcomes by resource, action and
// result (allow/deny).
var AuthDecisions = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_decisions_total",
		Help:      "Access policy decisions by resource, action and outcome",
	},
	[]string{"resource", "action", "outcome"},
)

// ProtectedDeletes counts delete attempts refused because the payment was
// already PAID.
var ProtectedDeletes = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "protected_deletes_total",
		Help:      "Payment deletions refused by the paid-payment guard",
	},
)
