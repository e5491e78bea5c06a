package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestReferralMetrics_Record(t *testing.T) {
	m := NewReferralMetrics(prometheus.NewRegistry())

	m.RecordReferralApplied("1")
	m.RecordReferralApplied("1")
	m.RecordEarning("2", 5)
	m.RecordPayout("FAILED", 40)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReferralsAppliedTotal.WithLabelValues("1")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.CommissionAmountTotal.WithLabelValues("2")))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.PayoutAmountTotal.WithLabelValues("FAILED")))
}

func TestReferralMetrics_NilIsNoop(t *testing.T) {
	var m *ReferralMetrics
	assert.NotPanics(t, func() {
		m.RecordCodeIssued()
		m.RecordFraudCheck("clean", 0.01)
		m.RecordEvent("referral.completed", "ok")
	})
}
