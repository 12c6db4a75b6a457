package referral

import (
	"context"
	"fmt"
	"strings"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	referraldto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/referral"
	nanoid "github.com/jaevor/go-nanoid"
)

const payoutIDPrefix = "po_"

func (uc *DefaultReferralUsecase) SetStatus(ctx context.Context, input *referraldto.SetStatusInput) (*domain.TransitionResult, error) {
	referralID := strings.TrimSpace(input.ReferralID)
	if referralID == "" || strings.TrimSpace(input.Status) == "" {
		uc.recordError("set_status", domain.ErrValidation)
		return nil, fmt.Errorf("%w: referralId and status are required", domain.ErrValidation)
	}
	to, err := domain.ParseStatus(input.Status)
	if err != nil {
		uc.recordError("set_status", err)
		return nil, err
	}

	referral, err := uc.ReferralRepo.GetReferralByID(ctx, referralID)
	if err != nil {
		uc.recordError("set_status", err)
		return nil, err
	}

	req := domain.NewTransitionRequest(referral, to, input.Confirmed)
	if req.IsNoop() {
		return &domain.TransitionResult{Referral: referral, PreviousStatus: referral.Status}, nil
	}
	if err := uc.checkPolicy(req); err != nil {
		uc.recordError("set_status", err)
		return nil, err
	}

	var payout *domain.Payout
	if req.To.IsPaid() {
		payout, err = uc.newPayout(referral)
		if err != nil {
			uc.recordError("set_status", err)
			return nil, err
		}
	}

	result, err := uc.ReferralRepo.ApplyTransition(ctx, req, payout)
	if err != nil {
		uc.recordError("set_status", err)
		return nil, err
	}
	// a concurrent request may have applied the same status first
	if !result.Changed {
		return result, nil
	}

	if result.PreviousStatus.IsPaid() {
		uc.log().Warn("paid referral reverted",
			"referral_id", referralID,
			"status", result.Referral.Status,
		)
	}
	uc.recordTransitionMetrics(result)
	uc.log().Info("referral status changed",
		"referral_id", referralID,
		"from", result.PreviousStatus,
		"to", result.Referral.Status,
	)

	now := uc.now()
	uc.publish(ctx, domain.Event{
		Kind:           domain.EventStatusChanged,
		Referral:       result.Referral.Clone(),
		PreviousStatus: result.PreviousStatus,
		OccurredAt:     now,
	})
	if result.Payout != nil {
		uc.publish(ctx, domain.Event{
			Kind:       domain.EventPayoutCreated,
			Referral:   result.Referral.Clone(),
			Payout:     result.Payout,
			OccurredAt: now,
		})
	}

	return result, nil
}

func (uc *DefaultReferralUsecase) checkPolicy(req domain.TransitionRequest) error {
	if uc.Policy.RequirePaidConfirmation && req.RequiresConfirmation && !req.Confirmed {
		return fmt.Errorf("%w: moving referral %s to %s", domain.ErrConfirmationRequired, req.ReferralID, req.To)
	}
	if uc.Policy.BlockRevertPaid && req.From.IsPaid() {
		return fmt.Errorf("%w: referral %s is already paid", domain.ErrValidation, req.ReferralID)
	}
	return nil
}

func (uc *DefaultReferralUsecase) newPayout(referral *domain.Referral) (*domain.Payout, error) {
	idGenerator, err := nanoid.Standard(21)
	if err != nil {
		return nil, err
	}
	return &domain.Payout{
		ID:         payoutIDPrefix + idGenerator(),
		ReferralID: referral.ID,
		UserID:     referral.ReferrerID,
		ClientName: referral.ClientName,
		Amount:     referral.ExpectedCommission,
		Date:       uc.now(),
	}, nil
}
