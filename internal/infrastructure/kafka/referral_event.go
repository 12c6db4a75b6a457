package publisher

import (
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

// ReferralEvent is the JSON payload written to the referral-events topic.
type ReferralEvent struct {
	Kind               string     `json:"kind"`
	ReferralID         string     `json:"referral_id"`
	ReferrerID         string     `json:"referrer_id,omitempty"`
	ReferrerName       string     `json:"referrer_name"`
	ClientName         string     `json:"client_name"`
	Status             string     `json:"status"`
	PreviousStatus     string     `json:"previous_status,omitempty"`
	ExpectedCommission float64    `json:"expected_commission"`
	ReminderDate       *time.Time `json:"reminder_date,omitempty"`
	ReminderNote       *string    `json:"reminder_note,omitempty"`
	PayoutID           string     `json:"payout_id,omitempty"`
	PayoutAmount       float64    `json:"payout_amount,omitempty"`
	OccurredAt         time.Time  `json:"occurred_at"`
}

func NewReferralEvent(event domain.Event) ReferralEvent {
	out := ReferralEvent{
		Kind:           string(event.Kind),
		PreviousStatus: string(event.PreviousStatus),
		OccurredAt:     event.OccurredAt,
	}
	if r := event.Referral; r != nil {
		out.ReferralID = r.ID
		out.ReferrerID = r.ReferrerID
		out.ReferrerName = r.ReferrerName
		out.ClientName = r.ClientName
		out.Status = string(r.Status)
		out.ExpectedCommission = r.ExpectedCommission
		out.ReminderDate = r.ReminderDate
		out.ReminderNote = r.ReminderNote
	}
	if p := event.Payout; p != nil {
		out.PayoutID = p.ID
		out.PayoutAmount = p.Amount
	}
	return out
}

// Key partitions by referrer so one partner's events stay ordered.
func (e ReferralEvent) Key() string {
	if e.ReferrerID != "" {
		return e.ReferrerID
	}
	return e.ReferralID
}
