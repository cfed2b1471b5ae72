package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(true))
	assert.Equal(t, "failure", Outcome(false))
}

func TestCountersIncrement(t *testing.T) {
	before := counterValue(t, NormalizedResponses.WithLabelValues("wrapped"))
	NormalizedResponses.WithLabelValues("wrapped").Inc()
	assert.Equal(t, before+1, counterValue(t, NormalizedResponses.WithLabelValues("wrapped")))

	before = counterValue(t, KnowledgeBaseOperations.WithLabelValues("upload", "failure"))
	KnowledgeBaseOperations.WithLabelValues("upload", Outcome(false)).Inc()
	assert.Equal(t, before+1, counterValue(t, KnowledgeBaseOperations.WithLabelValues("upload", "failure")))
}
