package domain

import (
	"fmt"
	"strings"
	"time"
)

type ReferralStatus string

const (
	StatusLeadReceived   ReferralStatus = "Lead Received"
	StatusProposalSent   ReferralStatus = "Proposal Sent"
	StatusAccepted       ReferralStatus = "Accepted"
	StatusWorkInProgress ReferralStatus = "Work in Progress"
	StatusCompleted      ReferralStatus = "Completed"
	StatusPaid           ReferralStatus = "Paid"
)

// Statuses lists every status in workflow order.
var Statuses = []ReferralStatus{
	StatusLeadReceived,
	StatusProposalSent,
	StatusAccepted,
	StatusWorkInProgress,
	StatusCompleted,
	StatusPaid,
}

// ParseStatus matches the display string exactly first, then ignoring case and spacing.
func ParseStatus(s string) (ReferralStatus, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	norm := normalizeStatus(s)
	for _, st := range Statuses {
		if normalizeStatus(string(st)) == norm {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

func normalizeStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
	return s
}

// Position returns the workflow index of the status, -1 if unknown.
func (s ReferralStatus) Position() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return -1
}

func (s ReferralStatus) IsPaid() bool {
	return s == StatusPaid
}

type Referral struct {
	ID                 string         `json:"id"`
	ClientName         string         `json:"clientName"`
	Mobile             string         `json:"mobile"`
	ReferrerID         string         `json:"referrerId,omitempty"`
	ReferrerName       string         `json:"referrerName"`
	DateSubmitted      time.Time      `json:"dateSubmitted"`
	ExpectedCommission float64        `json:"expectedCommission"`
	Status             ReferralStatus `json:"status"`
	ReminderDate       *time.Time     `json:"reminderDate"`
	ReminderNote       *string        `json:"reminderNote"`
	Revision           int64          `json:"revision"`
}

// HasReminder reports whether a reminder is scheduled.
func (r *Referral) HasReminder() bool {
	return r.ReminderDate != nil
}

// ReminderDue reports whether the reminder should fire at now.
func (r *Referral) ReminderDue(now time.Time) bool {
	return r.ReminderDate != nil && !r.ReminderDate.After(now)
}

// ClearReminder drops date and note together.
func (r *Referral) ClearReminder() {
	r.ReminderDate = nil
	r.ReminderNote = nil
}

func (r *Referral) Clone() *Referral {
	if r == nil {
		return nil
	}
	c := *r
	if r.ReminderDate != nil {
		d := *r.ReminderDate
		c.ReminderDate = &d
	}
	if r.ReminderNote != nil {
		n := *r.ReminderNote
		c.ReminderNote = &n
	}
	return &c
}

// TransitionRequest is a tagged status change validated by the lifecycle engine.
type TransitionRequest struct {
	ReferralID           string
	From                 ReferralStatus
	To                   ReferralStatus
	RequiresConfirmation bool
	Confirmed            bool
}

func NewTransitionRequest(r *Referral, to ReferralStatus, confirmed bool) TransitionRequest {
	return TransitionRequest{
		ReferralID:           r.ID,
		From:                 r.Status,
		To:                   to,
		RequiresConfirmation: to.IsPaid(),
		Confirmed:            confirmed,
	}
}

func (t TransitionRequest) IsNoop() bool {
	return t.From == t.To
}

// TransitionResult describes what the store actually applied.
type TransitionResult struct {
	Referral       *Referral      `json:"referral"`
	PreviousStatus ReferralStatus `json:"previousStatus"`
	Changed        bool           `json:"changed"`
	// Payout is set only when this transition created it
	Payout *Payout `json:"payout,omitempty"`
}

type ReferralFilter struct {
	Search     string
	Status     *ReferralStatus
	ReferrerID *string
}

// Matches applies the filter in memory, the same way the store applies it in SQL.
func (f ReferralFilter) Matches(r *Referral) bool {
	if f.Status != nil && r.Status != *f.Status {
		return false
	}
	if f.ReferrerID != nil && r.ReferrerID != *f.ReferrerID {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(r.ClientName), q) &&
			!strings.Contains(strings.ToLower(r.ReferrerName), q) {
			return false
		}
	}
	return true
}
