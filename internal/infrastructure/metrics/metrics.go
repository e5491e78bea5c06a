package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ReferralMetrics holds the service counters. A nil *ReferralMetrics is valid
// and records nothing.
type ReferralMetrics struct {
	// Referral ledger
	ReferralCodesIssuedTotal prometheus.Counter
	ReferralsAppliedTotal    prometheus.CounterVec
	ReferralsRejectedTotal   prometheus.CounterVec
	ReferralStatusTotal      prometheus.CounterVec

	// Commissions
	CommissionEarningsTotal prometheus.CounterVec
	CommissionAmountTotal   prometheus.CounterVec

	// Fraud
	FraudChecksTotal     prometheus.CounterVec
	FraudActivitiesTotal prometheus.CounterVec
	FraudCheckDuration   prometheus.Histogram

	// Rewards and payouts
	RewardsTotal         prometheus.CounterVec
	PayoutsTotal         prometheus.CounterVec
	PayoutAmountTotal    prometheus.CounterVec
	EventsProcessedTotal prometheus.CounterVec
}

func NewReferralMetrics(reg prometheus.Registerer) *ReferralMetrics {
	factory := promauto.With(reg)

	return &ReferralMetrics{
		ReferralCodesIssuedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "referral_codes_issued_total",
				Help: "Referral codes generated",
			},
		),

		ReferralsAppliedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referrals_applied_total",
				Help: "Referrals attributed, by tier",
			},
			[]string{"tier"},
		),

		ReferralsRejectedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referrals_rejected_total",
				Help: "Referral code applications rejected, by reason",
			},
			[]string{"reason"},
		),

		ReferralStatusTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referral_status_transitions_total",
				Help: "Referral status transitions, by target status",
			},
			[]string{"status"},
		),

		CommissionEarningsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referral_earnings_created_total",
				Help: "Referral earning rows appended, by tier",
			},
			[]string{"tier"},
		),

		CommissionAmountTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referral_earnings_amount_total",
				Help: "Sum of commission amounts appended, by tier",
			},
			[]string{"tier"},
		),

		FraudChecksTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fraud_checks_total",
				Help: "Fraud checks run, by verdict",
			},
			[]string{"verdict"},
		),

		FraudActivitiesTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fraud_activities_total",
				Help: "Fraud activities recorded, by type",
			},
			[]string{"type"},
		),

		FraudCheckDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fraud_check_duration_seconds",
				Help:    "Time spent evaluating fraud strategies",
				Buckets: prometheus.DefBuckets,
			},
		),

		RewardsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rewards_total",
				Help: "Reward state changes, by type and status",
			},
			[]string{"type", "status"},
		),

		PayoutsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payouts_total",
				Help: "Payout state changes, by status",
			},
			[]string{"status"},
		),

		PayoutAmountTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payouts_amount_total",
				Help: "Payout amounts, by status",
			},
			[]string{"status"},
		),

		EventsProcessedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "events_processed_total",
				Help: "Consumed events, by topic and outcome",
			},
			[]string{"topic", "outcome"},
		),
	}
}

func (m *ReferralMetrics) RecordCodeIssued() {
	if m == nil {
		return
	}
	m.ReferralCodesIssuedTotal.Inc()
}

func (m *ReferralMetrics) RecordReferralApplied(tier string) {
	if m == nil {
		return
	}
	m.ReferralsAppliedTotal.WithLabelValues(tier).Inc()
}

func (m *ReferralMetrics) RecordReferralRejected(reason string) {
	if m == nil {
		return
	}
	m.ReferralsRejectedTotal.WithLabelValues(reason).Inc()
}

func (m *ReferralMetrics) RecordReferralStatus(status string) {
	if m == nil {
		return
	}
	m.ReferralStatusTotal.WithLabelValues(status).Inc()
}

func (m *ReferralMetrics) RecordEarning(tier string, amount float64) {
	if m == nil {
		return
	}
	m.CommissionEarningsTotal.WithLabelValues(tier).Inc()
	m.CommissionAmountTotal.WithLabelValues(tier).Add(amount)
}

func (m *ReferralMetrics) RecordFraudCheck(verdict string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.FraudChecksTotal.WithLabelValues(verdict).Inc()
	m.FraudCheckDuration.Observe(durationSeconds)
}

func (m *ReferralMetrics) RecordFraudActivity(activityType string) {
	if m == nil {
		return
	}
	m.FraudActivitiesTotal.WithLabelValues(activityType).Inc()
}

func (m *ReferralMetrics) RecordReward(rewardType, status string) {
	if m == nil {
		return
	}
	m.RewardsTotal.WithLabelValues(rewardType, status).Inc()
}

func (m *ReferralMetrics) RecordPayout(status string, amount float64) {
	if m == nil {
		return
	}
	m.PayoutsTotal.WithLabelValues(status).Inc()
	m.PayoutAmountTotal.WithLabelValues(status).Add(amount)
}

func (m *ReferralMetrics) RecordEvent(topic, outcome string) {
	if m == nil {
		return
	}
	m.EventsProcessedTotal.WithLabelValues(topic, outcome).Inc()
}
