package referral

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	referraldto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/referral"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const anonymousReferrer = "Anonymous"

// maxCommission is the largest value the decimal(14,2) column holds.
var maxCommission = decimal.RequireFromString("999999999999.99")

func (uc *DefaultReferralUsecase) Submit(ctx context.Context, input *referraldto.SubmitReferralInput) (*domain.Referral, error) {
	clientName := strings.TrimSpace(input.ClientName)
	mobile := strings.TrimSpace(input.Mobile)
	rawCommission := strings.TrimSpace(input.ExpectedCommission)
	if clientName == "" || mobile == "" || rawCommission == "" {
		uc.recordError("submit", domain.ErrValidation)
		return nil, fmt.Errorf("%w: clientName, mobile and expectedCommission are required", domain.ErrValidation)
	}

	commission, err := parseCommission(rawCommission)
	if err != nil {
		uc.recordError("submit", err)
		return nil, err
	}

	referrerID, referrerName, err := uc.resolveReferrer(ctx, input)
	if err != nil {
		uc.recordError("submit", err)
		return nil, err
	}

	referral := &domain.Referral{
		ID:                 uuid.New().String(),
		ClientName:         clientName,
		Mobile:             mobile,
		ReferrerID:         referrerID,
		ReferrerName:       referrerName,
		DateSubmitted:      uc.now(),
		ExpectedCommission: commission,
		Status:             domain.StatusLeadReceived,
	}
	if err := uc.ReferralRepo.CreateReferral(ctx, referral); err != nil {
		uc.recordError("submit", err)
		return nil, err
	}

	uc.recordReferralCreatedMetrics(referral)
	uc.log().Info("referral submitted",
		"referral_id", referral.ID,
		"referrer", referral.ReferrerName,
		"expected_commission", referral.ExpectedCommission,
	)
	uc.publish(ctx, domain.Event{
		Kind:       domain.EventReferralCreated,
		Referral:   referral.Clone(),
		OccurredAt: referral.DateSubmitted,
	})

	return referral, nil
}

// parseCommission accepts a non-negative decimal number up to maxCommission,
// rounded to cents so every store keeps the same value.
func parseCommission(raw string) (float64, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: expectedCommission %q is not a number", domain.ErrValidation, raw)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: expectedCommission must not be negative", domain.ErrValidation)
	}
	d = d.Round(2)
	if d.GreaterThan(maxCommission) {
		return 0, fmt.Errorf("%w: expectedCommission must not exceed %s", domain.ErrValidation, maxCommission)
	}
	v := d.InexactFloat64()
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: expectedCommission %q is not a finite number", domain.ErrValidation, raw)
	}
	return v, nil
}

func (uc *DefaultReferralUsecase) resolveReferrer(ctx context.Context, input *referraldto.SubmitReferralInput) (string, string, error) {
	referrerID := strings.TrimSpace(input.ReferrerID)
	referrerName := strings.TrimSpace(input.ReferrerName)

	if referrerID != "" && uc.UserRepo != nil {
		user, err := uc.UserRepo.GetUserByID(ctx, referrerID)
		if errors.Is(err, domain.ErrNotFound) {
			return "", "", fmt.Errorf("%w: unknown userId %s", domain.ErrValidation, referrerID)
		}
		if err != nil {
			return "", "", err
		}
		if referrerName == "" {
			referrerName = user.Name
		}
	}
	if referrerName == "" {
		referrerName = anonymousReferrer
	}
	return referrerID, referrerName, nil
}
