package mappers

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
)

func ToDomainReferral(model *models.ReferralModel) *domain.Referral {
	return &domain.Referral{
		ID:                 model.ID,
		ClientName:         model.ClientName,
		Mobile:             model.Mobile,
		ReferrerID:         model.ReferrerID,
		ReferrerName:       model.ReferrerName,
		DateSubmitted:      model.DateSubmitted,
		ExpectedCommission: model.ExpectedCommission,
		Status:             domain.ReferralStatus(model.Status),
		ReminderDate:       model.ReminderDate,
		ReminderNote:       model.ReminderNote,
		Revision:           model.Revision,
	}
}

func ToGORMReferral(referral *domain.Referral) *models.ReferralModel {
	return &models.ReferralModel{
		ID:                 referral.ID,
		ClientName:         referral.ClientName,
		Mobile:             referral.Mobile,
		ReferrerID:         referral.ReferrerID,
		ReferrerName:       referral.ReferrerName,
		DateSubmitted:      referral.DateSubmitted,
		ExpectedCommission: referral.ExpectedCommission,
		Status:             string(referral.Status),
		ReminderDate:       referral.ReminderDate,
		ReminderNote:       referral.ReminderNote,
		Revision:           referral.Revision,
	}
}

func ToDomainPayout(model *models.PayoutModel) *domain.Payout {
	return &domain.Payout{
		ID:         model.ID,
		ReferralID: model.ReferralID,
		UserID:     model.UserID,
		ClientName: model.ClientName,
		Amount:     model.Amount,
		Date:       model.Date,
	}
}

func ToGORMPayout(payout *domain.Payout) *models.PayoutModel {
	return &models.PayoutModel{
		ID:         payout.ID,
		ReferralID: payout.ReferralID,
		UserID:     payout.UserID,
		ClientName: payout.ClientName,
		Amount:     payout.Amount,
		Date:       payout.Date,
	}
}
