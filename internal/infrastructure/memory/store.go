// Package memory keeps referrals, payouts and users in process memory.
// It backs the "memory" driver and the use case tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

// Store implements the referral, payout and user repositories behind one mutex,
// so a transition and its payout insert are applied as one step.
type Store struct {
	mu        sync.RWMutex
	referrals map[string]*domain.Referral
	order     []string
	payouts   map[string]*domain.Payout // keyed by referral id
	payoutSeq []string
	users     map[string]*domain.User
}

func NewStore() *Store {
	return &Store{
		referrals: make(map[string]*domain.Referral),
		payouts:   make(map[string]*domain.Payout),
		users:     make(map[string]*domain.User),
	}
}

func (s *Store) CreateReferral(ctx context.Context, referral *domain.Referral) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.referrals[referral.ID]; ok {
		return fmt.Errorf("%w: referral %s already exists", domain.ErrTransientStore, referral.ID)
	}
	referral.Revision = 1
	s.referrals[referral.ID] = referral.Clone()
	s.order = append(s.order, referral.ID)
	return nil
}

func (s *Store) GetReferralByID(ctx context.Context, referralID string) (*domain.Referral, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.referrals[referralID]
	if !ok {
		return nil, fmt.Errorf("%w: referral %s", domain.ErrNotFound, referralID)
	}
	return r.Clone(), nil
}

func (s *Store) ListReferrals(ctx context.Context, filter domain.ReferralFilter) ([]*domain.Referral, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Referral, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		r := s.referrals[s.order[i]]
		if filter.Matches(r) {
			out = append(out, r.Clone())
		}
	}
	// newest first, later inserts win ties
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateSubmitted.After(out[j].DateSubmitted)
	})
	return out, nil
}

func (s *Store) ApplyTransition(ctx context.Context, req domain.TransitionRequest, payout *domain.Payout) (*domain.TransitionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.referrals[req.ReferralID]
	if !ok {
		return nil, fmt.Errorf("%w: referral %s", domain.ErrNotFound, req.ReferralID)
	}

	result := &domain.TransitionResult{PreviousStatus: r.Status}
	if r.Status == req.To {
		result.Referral = r.Clone()
		return result, nil
	}

	r.Status = req.To
	r.Revision++
	result.Changed = true

	if payout != nil && req.To.IsPaid() {
		if _, exists := s.payouts[r.ID]; !exists {
			p := *payout
			s.payouts[r.ID] = &p
			s.payoutSeq = append(s.payoutSeq, r.ID)
			result.Payout = &p
		}
	}
	result.Referral = r.Clone()
	return result, nil
}

func (s *Store) SetReminder(ctx context.Context, referralID string, dueAt *time.Time, note *string) (*domain.Referral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.referrals[referralID]
	if !ok {
		return nil, fmt.Errorf("%w: referral %s", domain.ErrNotFound, referralID)
	}
	if dueAt == nil {
		r.ClearReminder()
	} else {
		d := *dueAt
		r.ReminderDate = &d
		r.ReminderNote = nil
		if note != nil {
			n := *note
			r.ReminderNote = &n
		}
	}
	r.Revision++
	return r.Clone(), nil
}

func (s *Store) ClaimDueReminders(ctx context.Context, now time.Time) ([]*domain.Referral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*domain.Referral
	for _, id := range s.order {
		r := s.referrals[id]
		if !r.ReminderDue(now) {
			continue
		}
		due = append(due, r.Clone())
		r.ClearReminder()
		r.Revision++
	}
	return due, nil
}

func (s *Store) ListPayouts(ctx context.Context, filter domain.PayoutFilter) ([]*domain.Payout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Payout, 0, len(s.payoutSeq))
	for i := len(s.payoutSeq) - 1; i >= 0; i-- {
		p := s.payouts[s.payoutSeq[i]]
		if filter.UserID != nil && p.UserID != *filter.UserID {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	return out, nil
}

func (s *Store) GetPayoutByReferralID(ctx context.Context, referralID string) (*domain.Payout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payouts[referralID]
	if !ok {
		return nil, fmt.Errorf("%w: payout for referral %s", domain.ErrNotFound, referralID)
	}
	c := *p
	return &c, nil
}

func (s *Store) UpsertUser(ctx context.Context, user *domain.User) (*domain.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.users[user.ID]; ok {
		existing.Name = user.Name
		existing.Picture = user.Picture
		if user.Role == domain.RoleAdmin {
			existing.Role = domain.RoleAdmin
		}
		return cloneUser(existing), false, nil
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, false, fmt.Errorf("%w: email %s is taken", domain.ErrValidation, user.Email)
		}
	}
	s.users[user.ID] = cloneUser(user)
	return cloneUser(user), true, nil
}

func (s *Store) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
	}
	return cloneUser(u), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.findByEmail(email)
	if u == nil {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, email)
	}
	return cloneUser(u), nil
}

func (s *Store) UpdateUserName(ctx context.Context, email, name string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findByEmail(email)
	if u == nil {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, email)
	}
	u.Name = name
	return cloneUser(u), nil
}

func (s *Store) VerifyUser(ctx context.Context, token string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.VerificationToken != nil && *u.VerificationToken == token {
			u.IsVerified = true
			u.VerificationToken = nil
			return cloneUser(u), nil
		}
	}
	return nil, fmt.Errorf("%w: verification token", domain.ErrNotFound)
}

func (s *Store) findByEmail(email string) *domain.User {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	if u.VerificationToken != nil {
		t := *u.VerificationToken
		c.VerificationToken = &t
	}
	return &c
}
