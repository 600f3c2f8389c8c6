package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTransition(t *testing.T) {
	before := testutil.ToFloat64(leaveTransitionsTotal.WithLabelValues("none", "pending"))

	RecordTransition("", "pending")

	after := testutil.ToFloat64(leaveTransitionsTotal.WithLabelValues("none", "pending"))
	assert.Equal(t, before+1, after)
}

func TestRecordDecisionConflict(t *testing.T) {
	before := testutil.ToFloat64(leaveDecisionConflictsTotal)

	RecordDecisionConflict()

	assert.Equal(t, before+1, testutil.ToFloat64(leaveDecisionConflictsTotal))
}

func TestRecordOutboxPublish(t *testing.T) {
	before := testutil.ToFloat64(outboxPublishedTotal.WithLabelValues("failed"))

	RecordOutboxPublish("failed")

	assert.Equal(t, before+1, testutil.ToFloat64(outboxPublishedTotal.WithLabelValues("failed")))
}
