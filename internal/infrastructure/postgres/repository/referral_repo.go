package repository

import (
	"context"
	"strings"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultReferralRepository struct {
	db *gorm.DB
}

func NewDefaultReferralRepository(db *gorm.DB) *DefaultReferralRepository {
	return &DefaultReferralRepository{db: db}
}

func (r *DefaultReferralRepository) CreateReferral(ctx context.Context, referral *domain.Referral) error {
	referralModel := mappers.ToGORMReferral(referral)
	referralModel.Revision = 1
	if err := r.db.WithContext(ctx).Create(referralModel).Error; err != nil {
		return storeError(err, "referral "+referral.ID)
	}
	referral.Revision = referralModel.Revision
	return nil
}

func (r *DefaultReferralRepository) GetReferralByID(ctx context.Context, referralID string) (*domain.Referral, error) {
	var referralModel models.ReferralModel
	if err := r.db.WithContext(ctx).Where("id = ?", referralID).First(&referralModel).Error; err != nil {
		return nil, storeError(err, "referral "+referralID)
	}
	return mappers.ToDomainReferral(&referralModel), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *DefaultReferralRepository) ListReferrals(ctx context.Context, filter domain.ReferralFilter) ([]*domain.Referral, error) {
	query := r.db.WithContext(ctx).Model(&models.ReferralModel{})

	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.ReferrerID != nil {
		query = query.Where("referrer_id = ?", *filter.ReferrerID)
	}
	if filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(filter.Search)) + "%"
		query = query.Where("LOWER(client_name) LIKE ? OR LOWER(referrer_name) LIKE ?", pattern, pattern)
	}

	var referralModels []models.ReferralModel
	if err := query.Order("date_submitted DESC").Order("created_at DESC").Find(&referralModels).Error; err != nil {
		return nil, storeError(err, "referrals")
	}

	referrals := make([]*domain.Referral, len(referralModels))
	for i := range referralModels {
		referrals[i] = mappers.ToDomainReferral(&referralModels[i])
	}
	return referrals, nil
}

// ApplyTransition locks the row, so concurrent transitions into Paid serialize and the
// loser observes Paid as a no-op. The unique referral_id index backs this up.
func (r *DefaultReferralRepository) ApplyTransition(ctx context.Context, req domain.TransitionRequest, payout *domain.Payout) (*domain.TransitionResult, error) {
	var result *domain.TransitionResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var referralModel models.ReferralModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", req.ReferralID).
			First(&referralModel).Error; err != nil {
			return err
		}

		result = &domain.TransitionResult{PreviousStatus: domain.ReferralStatus(referralModel.Status)}
		if referralModel.Status == string(req.To) {
			result.Referral = mappers.ToDomainReferral(&referralModel)
			return nil
		}

		referralModel.Status = string(req.To)
		referralModel.Revision++
		if err := tx.Model(&models.ReferralModel{}).
			Where("id = ?", req.ReferralID).
			Updates(map[string]interface{}{
				"status":     referralModel.Status,
				"revision":   referralModel.Revision,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}
		result.Changed = true
		result.Referral = mappers.ToDomainReferral(&referralModel)

		if payout == nil || !req.To.IsPaid() {
			return nil
		}
		payoutModel := mappers.ToGORMPayout(payout)
		res := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "referral_id"}}, DoNothing: true}).
			Create(payoutModel)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			result.Payout = mappers.ToDomainPayout(payoutModel)
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, "referral "+req.ReferralID)
	}
	return result, nil
}

func (r *DefaultReferralRepository) SetReminder(ctx context.Context, referralID string, dueAt *time.Time, note *string) (*domain.Referral, error) {
	updates := map[string]interface{}{
		"reminder_date": nil,
		"reminder_note": nil,
		"revision":      gorm.Expr("revision + 1"),
		"updated_at":    time.Now(),
	}
	if dueAt != nil {
		updates["reminder_date"] = *dueAt
		if note != nil {
			updates["reminder_note"] = *note
		}
	}

	res := r.db.WithContext(ctx).Model(&models.ReferralModel{}).Where("id = ?", referralID).Updates(updates)
	if res.Error != nil {
		return nil, storeError(res.Error, "referral "+referralID)
	}
	if res.RowsAffected == 0 {
		return nil, storeError(gorm.ErrRecordNotFound, "referral "+referralID)
	}
	return r.GetReferralByID(ctx, referralID)
}

func (r *DefaultReferralRepository) ClaimDueReminders(ctx context.Context, now time.Time) ([]*domain.Referral, error) {
	var due []*domain.Referral

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var referralModels []models.ReferralModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("reminder_date IS NOT NULL AND reminder_date <= ?", now).
			Order("reminder_date ASC").
			Find(&referralModels).Error; err != nil {
			return err
		}
		if len(referralModels) == 0 {
			return nil
		}

		ids := make([]string, len(referralModels))
		for i := range referralModels {
			ids[i] = referralModels[i].ID
			due = append(due, mappers.ToDomainReferral(&referralModels[i]))
		}
		return tx.Model(&models.ReferralModel{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"reminder_date": nil,
				"reminder_note": nil,
				"revision":      gorm.Expr("revision + 1"),
				"updated_at":    time.Now(),
			}).Error
	})
	if err != nil {
		return nil, storeError(err, "due reminders")
	}
	return due, nil
}
