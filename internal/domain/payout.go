package domain

import "time"

// Payout is created once, when its referral first reaches Paid.
type Payout struct {
	ID         string    `json:"id"`
	ReferralID string    `json:"referralId"`
	UserID     string    `json:"userId,omitempty"`
	ClientName string    `json:"clientName"`
	Amount     float64   `json:"amount"`
	Date       time.Time `json:"date"`
}

type PayoutFilter struct {
	UserID *string
}
