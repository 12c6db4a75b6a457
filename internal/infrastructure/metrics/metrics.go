package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ReferralMetrics содержит все метрики реферальной воронки
type ReferralMetrics struct {
	// Созданные рефералы
	ReferralsCreatedTotal            *prometheus.CounterVec
	ReferralsExpectedCommissionTotal *prometheus.CounterVec

	// Переходы статусов
	StatusTransitionsTotal *prometheus.CounterVec
	ReferralStatusGauge    *prometheus.GaugeVec

	// Выплаты
	PayoutsCreatedTotal *prometheus.CounterVec
	PayoutsAmountTotal  *prometheus.CounterVec

	// Напоминания
	RemindersFiredTotal prometheus.Counter

	// Ошибки
	ReferralErrorsTotal *prometheus.CounterVec
}

// NewReferralMetrics registers the collectors on reg; nil means the default registerer.
func NewReferralMetrics(reg prometheus.Registerer) *ReferralMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &ReferralMetrics{
		ReferralsCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referrals_created_total",
				Help: "Общее количество созданных рефералов",
			},
			[]string{"referrer"},
		),

		ReferralsExpectedCommissionTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referrals_expected_commission_total",
				Help: "Сумма ожидаемых комиссий по созданным рефералам",
			},
			[]string{"referrer"},
		),

		StatusTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referral_status_transitions_total",
				Help: "Количество применённых смен статуса",
			},
			[]string{"from", "to"},
		),

		ReferralStatusGauge: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "referrals_by_status",
				Help: "Текущее количество рефералов по статусам",
			},
			[]string{"status"},
		),

		PayoutsCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referral_payouts_created_total",
				Help: "Количество созданных выплат",
			},
			[]string{"referrer"},
		),

		PayoutsAmountTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referral_payouts_amount_total",
				Help: "Сумма созданных выплат",
			},
			[]string{"referrer"},
		),

		RemindersFiredTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "referral_reminders_fired_total",
				Help: "Количество сработавших напоминаний",
			},
		),

		ReferralErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "referral_errors_total",
				Help: "Ошибки операций с рефералами",
			},
			[]string{"operation", "error_type"},
		),
	}
}

func (m *ReferralMetrics) RecordReferralCreated(referrer string, expectedCommission float64) {
	m.ReferralsCreatedTotal.WithLabelValues(referrer).Inc()
	m.ReferralsExpectedCommissionTotal.WithLabelValues(referrer).Add(expectedCommission)
}

func (m *ReferralMetrics) RecordStatusTransition(from, to string) {
	m.StatusTransitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *ReferralMetrics) RecordPayout(referrer string, amount float64) {
	m.PayoutsCreatedTotal.WithLabelValues(referrer).Inc()
	m.PayoutsAmountTotal.WithLabelValues(referrer).Add(amount)
}

func (m *ReferralMetrics) RecordRemindersFired(n int) {
	m.RemindersFiredTotal.Add(float64(n))
}

// SetStatusCounts replaces the gauge values; statuses missing from counts are reset to zero.
func (m *ReferralMetrics) SetStatusCounts(statuses []string, counts map[string]int) {
	for _, s := range statuses {
		m.ReferralStatusGauge.WithLabelValues(s).Set(float64(counts[s]))
	}
}

func (m *ReferralMetrics) RecordError(operation, errorType string) {
	m.ReferralErrorsTotal.WithLabelValues(operation, errorType).Inc()
}
