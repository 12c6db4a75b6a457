package referraldto

import "github.com/LavaJover/shvark-referral-service/internal/domain"

type AdminDataOutput struct {
	Referrals    []*domain.Referral   `json:"referrals"`
	Stats        domain.AdminStats    `json:"stats"`
	TopReferrers []domain.TopReferrer `json:"topReferrers"`
}

type UserDataOutput struct {
	Referrals       []*domain.Referral      `json:"referrals"`
	Wallet          domain.CommissionWallet `json:"wallet"`
	Payouts         []*domain.Payout        `json:"payouts"`
	MonthlyEarnings []domain.MonthlyEarning `json:"monthlyEarnings"`
}
