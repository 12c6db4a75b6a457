package referral

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/aggregate"
	referraldto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/referral"
)

func (uc *DefaultReferralUsecase) GetReferralByID(ctx context.Context, referralID string) (*domain.Referral, error) {
	return uc.ReferralRepo.GetReferralByID(ctx, referralID)
}

func (uc *DefaultReferralUsecase) ListReferrals(ctx context.Context, input *referraldto.ListReferralsInput) ([]*domain.Referral, error) {
	filter := domain.ReferralFilter{Search: strings.TrimSpace(input.Search)}
	if s := strings.TrimSpace(input.Status); s != "" && !strings.EqualFold(s, "all") {
		status, err := domain.ParseStatus(s)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	if id := strings.TrimSpace(input.ReferrerID); id != "" {
		filter.ReferrerID = &id
	}
	return uc.ReferralRepo.ListReferrals(ctx, filter)
}

// AdminData derives stats and rankings from the same snapshot it returns.
func (uc *DefaultReferralUsecase) AdminData(ctx context.Context) (*referraldto.AdminDataOutput, error) {
	referrals, err := uc.ReferralRepo.ListReferrals(ctx, domain.ReferralFilter{})
	if err != nil {
		uc.recordError("admin_data", err)
		return nil, err
	}
	return &referraldto.AdminDataOutput{
		Referrals:    referrals,
		Stats:        aggregate.AdminStats(referrals),
		TopReferrers: aggregate.TopReferrers(referrals, aggregate.DefaultTopReferrersLimit),
	}, nil
}

func (uc *DefaultReferralUsecase) UserData(ctx context.Context, userID string, now time.Time) (*referraldto.UserDataOutput, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", domain.ErrValidation)
	}

	referrals, err := uc.ReferralRepo.ListReferrals(ctx, domain.ReferralFilter{ReferrerID: &userID})
	if err != nil {
		uc.recordError("user_data", err)
		return nil, err
	}
	payouts, err := uc.PayoutRepo.ListPayouts(ctx, domain.PayoutFilter{UserID: &userID})
	if err != nil {
		uc.recordError("user_data", err)
		return nil, err
	}

	return &referraldto.UserDataOutput{
		Referrals:       referrals,
		Wallet:          aggregate.Wallet(referrals, payouts, userID),
		Payouts:         payouts,
		MonthlyEarnings: aggregate.MonthlyEarnings(aggregate.SettledPayouts(referrals, payouts), aggregate.DefaultMonthCount, now),
	}, nil
}
