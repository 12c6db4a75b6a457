package client

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/request"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/events"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/aggregate"
	referraldto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/referral"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/referral"
)

type BoardAPI interface {
	AdminData(ctx context.Context) (*referraldto.AdminDataOutput, error)
	SetStatus(ctx context.Context, in request.SetStatusRequest) (*response.SetStatusResponse, error)
	SetReminder(ctx context.Context, in request.SetReminderRequest) (*domain.Referral, error)
}

// ReferralBoard is the admin's local copy of the referral table.
// Mutations are applied locally first and rolled back if the API call fails.
type ReferralBoard struct {
	api BoardAPI

	mu           sync.RWMutex
	referrals    []*domain.Referral
	stats        domain.AdminStats
	topReferrers []domain.TopReferrer
	updating     map[string]bool
}

func NewReferralBoard(api BoardAPI) *ReferralBoard {
	return &ReferralBoard{api: api, updating: make(map[string]bool)}
}

func (b *ReferralBoard) Refresh(ctx context.Context) error {
	data, err := b.api.AdminData(ctx)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.referrals = data.Referrals
	b.stats = data.Stats
	b.topReferrers = data.TopReferrers
	b.mu.Unlock()
	return nil
}

func (b *ReferralBoard) Referrals() []*domain.Referral {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneAll(b.referrals)
}

// Search filters by client or referrer name, case-insensitively.
func (b *ReferralBoard) Search(term string) []*domain.Referral {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if strings.TrimSpace(term) == "" {
		return cloneAll(b.referrals)
	}
	filter := domain.ReferralFilter{Search: term}
	var out []*domain.Referral
	for _, r := range b.referrals {
		if filter.Matches(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

func (b *ReferralBoard) Stats() domain.AdminStats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.stats
}

func (b *ReferralBoard) TopReferrers() []domain.TopReferrer {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]domain.TopReferrer(nil), b.topReferrers...)
}

// Updating reports whether a change to the referral is in flight.
func (b *ReferralBoard) Updating(referralID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.updating[referralID]
}

// ChangeStatus is the commit step of StatusChangeFlow.
func (b *ReferralBoard) ChangeStatus(ctx context.Context, referralID string, status domain.ReferralStatus, confirmed bool) error {
	prev, ok := b.apply(referralID, func(r *domain.Referral) { r.Status = status })
	if !ok {
		return domain.ErrNotFound
	}
	defer b.done(referralID)

	if _, err := b.api.SetStatus(ctx, request.SetStatusRequest{
		ReferralID: referralID,
		Status:     string(status),
		Confirmed:  confirmed,
	}); err != nil {
		b.restore(prev)
		return err
	}
	if err := b.Refresh(ctx); err != nil {
		slog.Warn("board refresh after status change failed", "referral_id", referralID, "error", err.Error())
	}
	return nil
}

// SetReminder sets or, with a nil date, clears the reminder.
func (b *ReferralBoard) SetReminder(ctx context.Context, referralID string, date, note *string) error {
	prev, ok := b.apply(referralID, func(r *domain.Referral) {
		if date == nil || strings.TrimSpace(*date) == "" {
			r.ClearReminder()
			return
		}
		if t, err := referral.ParseReminderDate(*date); err == nil {
			r.ReminderDate = &t
			r.ReminderNote = note
		}
	})
	if !ok {
		return domain.ErrNotFound
	}
	defer b.done(referralID)

	updated, err := b.api.SetReminder(ctx, request.SetReminderRequest{
		ReferralID:   referralID,
		ReminderDate: date,
		ReminderNote: note,
	})
	if err != nil {
		b.restore(prev)
		return err
	}
	b.mu.Lock()
	b.replace(updated)
	b.mu.Unlock()
	return nil
}

// apply mutates a copy of the referral in place and returns the previous version.
func (b *ReferralBoard) apply(referralID string, mutate func(*domain.Referral)) (*domain.Referral, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, r := range b.referrals {
		if r.ID != referralID {
			continue
		}
		next := r.Clone()
		mutate(next)
		b.referrals[i] = next
		b.recompute()
		b.updating[referralID] = true
		return r, true
	}
	return nil, false
}

func (b *ReferralBoard) restore(prev *domain.Referral) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replace(prev)
}

func (b *ReferralBoard) replace(r *domain.Referral) {
	for i := range b.referrals {
		if b.referrals[i].ID == r.ID {
			b.referrals[i] = r
			break
		}
	}
	b.recompute()
}

func (b *ReferralBoard) recompute() {
	b.stats = aggregate.AdminStats(b.referrals)
	b.topReferrers = aggregate.TopReferrers(b.referrals, aggregate.DefaultTopReferrersLimit)
}

func (b *ReferralBoard) done(referralID string) {
	b.mu.Lock()
	delete(b.updating, referralID)
	b.mu.Unlock()
}

// Add inserts a newly created referral at the top unless it is already shown.
func (b *ReferralBoard) Add(r *domain.Referral) bool {
	if r == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.referrals {
		if existing.ID == r.ID {
			return false
		}
	}
	b.referrals = append([]*domain.Referral{r.Clone()}, b.referrals...)
	b.recompute()
	return true
}

// Attach keeps the board current with referrals created elsewhere. Detach on unmount.
func (b *ReferralBoard) Attach(bus *events.Bus) *events.Subscription {
	return bus.Subscribe(domain.EventReferralCreated, "board", func(_ context.Context, event domain.Event) error {
		b.Add(event.Referral)
		return nil
	})
}

func cloneAll(in []*domain.Referral) []*domain.Referral {
	out := make([]*domain.Referral, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
