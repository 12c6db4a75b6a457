package domain

import (
	"context"
	"time"
)

type ReferralRepository interface {
	CreateReferral(ctx context.Context, referral *Referral) error
	GetReferralByID(ctx context.Context, referralID string) (*Referral, error)
	// ListReferrals returns referrals newest first
	ListReferrals(ctx context.Context, filter ReferralFilter) ([]*Referral, error)
	// ApplyTransition re-reads the referral under lock, writes the new status and,
	// when payout is not nil and none exists for the referral yet, inserts it in the same transaction.
	ApplyTransition(ctx context.Context, req TransitionRequest, payout *Payout) (*TransitionResult, error)
	// SetReminder writes date and note together; a nil date always stores a nil note.
	SetReminder(ctx context.Context, referralID string, dueAt *time.Time, note *string) (*Referral, error)
	// ClaimDueReminders clears every reminder due at now and returns the referrals as they were before clearing.
	ClaimDueReminders(ctx context.Context, now time.Time) ([]*Referral, error)
}

type PayoutRepository interface {
	ListPayouts(ctx context.Context, filter PayoutFilter) ([]*Payout, error)
	GetPayoutByReferralID(ctx context.Context, referralID string) (*Payout, error)
}

type UserRepository interface {
	// UpsertUser creates the user or refreshes name/picture, returning whether it was created
	UpsertUser(ctx context.Context, user *User) (*User, bool, error)
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUserName(ctx context.Context, email, name string) (*User, error)
	VerifyUser(ctx context.Context, token string) (*User, error)
}

type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error)
}
