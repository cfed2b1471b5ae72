package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AgentRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_agent_requests_total",
			Help: "Total number of agent calls by outcome",
		},
		[]string{"outcome"},
	)

	AgentRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "advisor_agent_request_duration_seconds",
			Help:    "Duration of agent calls in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 120},
		},
		[]string{"outcome"},
	)

	NormalizedResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_normalized_responses_total",
			Help: "Total number of agent replies by normalized shape",
		},
		[]string{"shape"},
	)

	KnowledgeBaseOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_knowledge_base_operations_total",
			Help: "Total number of knowledge base operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "advisor_active_sessions",
			Help: "Number of sessions held in the transcript store",
		},
	)
)

// Outcome labels a result for the counters above.
func Outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
