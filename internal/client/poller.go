package client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

const DefaultPollInterval = 15 * time.Second

var ErrNotAdmin = errors.New("reminder polling requires an admin session")

type DueReminderSource interface {
	DueReminders(ctx context.Context) ([]*domain.Referral, error)
}

// ReminderPoller surfaces due reminders to an admin session. The server clears each
// reminder as it is claimed, so every reminder is published once.
type ReminderPoller struct {
	source    DueReminderSource
	publisher domain.EventPublisher
	interval  time.Duration
	now       func() time.Time
}

func NewReminderPoller(source DueReminderSource, publisher domain.EventPublisher, interval time.Duration) *ReminderPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &ReminderPoller{
		source:    source,
		publisher: publisher,
		interval:  interval,
		now:       time.Now,
	}
}

// Run polls until ctx is done. Poll failures are logged and the next tick retries.
func (p *ReminderPoller) Run(ctx context.Context, user *domain.User) error {
	if !user.IsAdmin() {
		return ErrNotAdmin
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := p.Poll(ctx); err != nil && ctx.Err() == nil {
				slog.Warn("failed to check reminders", "error", err.Error())
			}
		}
	}
}

// Poll claims due reminders once and publishes one event per referral.
func (p *ReminderPoller) Poll(ctx context.Context) (int, error) {
	due, err := p.source.DueReminders(ctx)
	if err != nil {
		return 0, err
	}
	for _, r := range due {
		err := p.publisher.Publish(ctx, domain.Event{
			Kind:       domain.EventReminderDue,
			Referral:   r,
			OccurredAt: p.now(),
		})
		if err != nil {
			slog.Warn("reminder handler failed", "referral_id", r.ID, "error", err.Error())
		}
	}
	return len(due), nil
}
