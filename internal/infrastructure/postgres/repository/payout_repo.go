package repository

import (
	"context"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultPayoutRepository struct {
	db *gorm.DB
}

func NewDefaultPayoutRepository(db *gorm.DB) *DefaultPayoutRepository {
	return &DefaultPayoutRepository{db: db}
}

func (r *DefaultPayoutRepository) ListPayouts(ctx context.Context, filter domain.PayoutFilter) ([]*domain.Payout, error) {
	query := r.db.WithContext(ctx).Model(&models.PayoutModel{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	var payoutModels []models.PayoutModel
	if err := query.Order("date DESC").Find(&payoutModels).Error; err != nil {
		return nil, storeError(err, "payouts")
	}

	payouts := make([]*domain.Payout, len(payoutModels))
	for i := range payoutModels {
		payouts[i] = mappers.ToDomainPayout(&payoutModels[i])
	}
	return payouts, nil
}

func (r *DefaultPayoutRepository) GetPayoutByReferralID(ctx context.Context, referralID string) (*domain.Payout, error) {
	var payoutModel models.PayoutModel
	if err := r.db.WithContext(ctx).Where("referral_id = ?", referralID).First(&payoutModel).Error; err != nil {
		return nil, storeError(err, "payout for referral "+referralID)
	}
	return mappers.ToDomainPayout(&payoutModel), nil
}
