package referral

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	referraldto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/referral"
)

// datetime-local form value, interpreted in the server's location
const localInputLayout = "2006-01-02T15:04"

func (uc *DefaultReferralUsecase) SetReminder(ctx context.Context, input *referraldto.SetReminderInput) (*domain.Referral, error) {
	referralID := strings.TrimSpace(input.ReferralID)
	if referralID == "" {
		uc.recordError("set_reminder", domain.ErrValidation)
		return nil, fmt.Errorf("%w: referralId is required", domain.ErrValidation)
	}

	var (
		dueAt *time.Time
		note  *string
	)
	if input.ReminderDate != nil && strings.TrimSpace(*input.ReminderDate) != "" {
		t, err := ParseReminderDate(*input.ReminderDate)
		if err != nil {
			uc.recordError("set_reminder", err)
			return nil, err
		}
		dueAt = &t
		if input.ReminderNote != nil && strings.TrimSpace(*input.ReminderNote) != "" {
			n := strings.TrimSpace(*input.ReminderNote)
			note = &n
		}
	}

	referral, err := uc.ReferralRepo.SetReminder(ctx, referralID, dueAt, note)
	if err != nil {
		uc.recordError("set_reminder", err)
		return nil, err
	}
	return referral, nil
}

// ParseReminderDate accepts RFC 3339 (with or without fractional seconds) and the datetime-local form.
func ParseReminderDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(localInputLayout, raw, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: reminderDate %q is not a valid time", domain.ErrValidation, raw)
}

// CheckDueReminders claims every reminder due at now. Claimed reminders are cleared, so each fires once.
func (uc *DefaultReferralUsecase) CheckDueReminders(ctx context.Context, now time.Time) ([]*domain.Referral, error) {
	due, err := uc.ReferralRepo.ClaimDueReminders(ctx, now)
	if err != nil {
		uc.recordError("check_reminders", err)
		return nil, err
	}
	if len(due) == 0 {
		return due, nil
	}

	uc.recordRemindersFiredMetrics(len(due))
	for _, r := range due {
		uc.log().Info("referral reminder due", "referral_id", r.ID, "client", r.ClientName)
		uc.publish(ctx, domain.Event{
			Kind:       domain.EventReminderDue,
			Referral:   r.Clone(),
			OccurredAt: now,
		})
	}
	return due, nil
}
