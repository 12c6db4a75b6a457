package response

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	referraldto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/referral"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type LoginResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Picture    string          `json:"picture,omitempty"`
	Role       domain.UserRole `json:"role"`
	IsVerified bool            `json:"isVerified"`
	Token      string          `json:"token,omitempty"`
}

type SubmitReferralResponse struct {
	Message  string           `json:"message"`
	Referral *domain.Referral `json:"referral"`
}

type SetStatusResponse struct {
	Message  string           `json:"message"`
	Changed  bool             `json:"changed"`
	Referral *domain.Referral `json:"referral"`
	Payout   *domain.Payout   `json:"payout,omitempty"`
}

type SetReminderResponse struct {
	Message  string           `json:"message"`
	Referral *domain.Referral `json:"referral"`
}

type UpdateProfileResponse struct {
	Message string `json:"message"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

type ReferralsResponse struct {
	Referrals []*domain.Referral `json:"referrals"`
}

type ServicesResponse struct {
	Services []domain.Service `json:"services"`
}

type AdminDataResponse = referraldto.AdminDataOutput

type UserDataResponse = referraldto.UserDataOutput
