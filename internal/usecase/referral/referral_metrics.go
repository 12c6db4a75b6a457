package referral

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/aggregate"
)

func (uc *DefaultReferralUsecase) recordReferralCreatedMetrics(referral *domain.Referral) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordReferralCreated(referral.ReferrerName, referral.ExpectedCommission)
}

func (uc *DefaultReferralUsecase) recordTransitionMetrics(result *domain.TransitionResult) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordStatusTransition(string(result.PreviousStatus), string(result.Referral.Status))
	if result.Payout != nil {
		uc.Metrics.RecordPayout(result.Referral.ReferrerName, result.Payout.Amount)
	}
}

func (uc *DefaultReferralUsecase) recordRemindersFiredMetrics(n int) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordRemindersFired(n)
}

func (uc *DefaultReferralUsecase) recordError(operation string, err error) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.RecordError(operation, errorType(err))
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConfirmationRequired):
		return "confirmation_required"
	case errors.Is(err, domain.ErrTransientStore):
		return "store"
	default:
		return "internal"
	}
}

// RefreshStatusGauge recounts referrals per status.
func (uc *DefaultReferralUsecase) RefreshStatusGauge(ctx context.Context) error {
	if uc.Metrics == nil {
		return nil
	}
	referrals, err := uc.ReferralRepo.ListReferrals(ctx, domain.ReferralFilter{})
	if err != nil {
		return err
	}
	breakdown := aggregate.StatusBreakdown(referrals)

	statuses := make([]string, 0, len(domain.Statuses))
	counts := make(map[string]int, len(breakdown))
	for _, s := range domain.Statuses {
		statuses = append(statuses, string(s))
		counts[string(s)] = breakdown[s]
	}
	uc.Metrics.SetStatusCounts(statuses, counts)
	return nil
}
