package domain

import (
	"context"
	"time"
)

type EventKind string

const (
	EventReferralCreated EventKind = "referral.created"
	EventReminderDue     EventKind = "referral.reminder_due"
	EventStatusChanged   EventKind = "referral.status_changed"
	EventPayoutCreated   EventKind = "payout.created"
)

var EventKinds = []EventKind{
	EventReferralCreated,
	EventReminderDue,
	EventStatusChanged,
	EventPayoutCreated,
}

type Event struct {
	Kind           EventKind      `json:"kind"`
	Referral       *Referral      `json:"referral,omitempty"`
	Payout         *Payout        `json:"payout,omitempty"`
	PreviousStatus ReferralStatus `json:"previousStatus,omitempty"`
	OccurredAt     time.Time      `json:"occurredAt"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
