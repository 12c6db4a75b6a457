package logger

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/events"
	"gorm.io/gorm"
)

// ReferralAuditEvent is one row of the referral audit trail.
type ReferralAuditEvent struct {
	ID             uint   `gorm:"primaryKey"`
	Kind           string `gorm:"index"`
	ReferralID     string `gorm:"index"`
	ReferrerName   string
	ClientName     string
	Status         string
	PreviousStatus string
	Amount         float64
	PayoutID       string
	Timestamp      time.Time
}

func (ReferralAuditEvent) TableName() string {
	return "referral_audit_events"
}

type ReferralEventLogger interface {
	LogEvent(ctx context.Context, event domain.Event) error
}

type PGReferralEventLogger struct {
	db *gorm.DB
}

func NewPGReferralEventLogger(db *gorm.DB) *PGReferralEventLogger {
	return &PGReferralEventLogger{db: db}
}

func (l *PGReferralEventLogger) LogEvent(ctx context.Context, event domain.Event) error {
	row := ToAuditEvent(event)
	return l.db.WithContext(ctx).Create(&row).Error
}

func ToAuditEvent(event domain.Event) ReferralAuditEvent {
	row := ReferralAuditEvent{
		Kind:           string(event.Kind),
		PreviousStatus: string(event.PreviousStatus),
		Timestamp:      event.OccurredAt,
	}
	if event.Referral != nil {
		row.ReferralID = event.Referral.ID
		row.ReferrerName = event.Referral.ReferrerName
		row.ClientName = event.Referral.ClientName
		row.Status = string(event.Referral.Status)
		row.Amount = event.Referral.ExpectedCommission
	}
	if event.Payout != nil {
		row.PayoutID = event.Payout.ID
		row.Amount = event.Payout.Amount
	}
	if row.Timestamp.IsZero() {
		row.Timestamp = time.Now()
	}
	return row
}

// AttachAuditLog records every bus event through l.
func AttachAuditLog(bus *events.Bus, l ReferralEventLogger) []*events.Subscription {
	subs := make([]*events.Subscription, 0, len(domain.EventKinds))
	for _, kind := range domain.EventKinds {
		subs = append(subs, bus.Subscribe(kind, "audit", l.LogEvent))
	}
	return subs
}
