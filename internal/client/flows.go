package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

type VerificationState int

const (
	Verifying VerificationState = iota
	Verified
	VerificationFailed
)

func (s VerificationState) Message() string {
	switch s {
	case Verified:
		return "Account verified successfully! You can now log in."
	case VerificationFailed:
		return "This verification link is invalid or has expired."
	}
	return "Verifying your account..."
}

type AccountVerifier interface {
	Verify(ctx context.Context, token string) (*domain.User, error)
}

// VerificationFlow runs the one-shot verification behind #/verify?token=.
type VerificationFlow struct {
	api AccountVerifier

	mu    sync.Mutex
	state VerificationState
	user  *domain.User
	err   error
}

func NewVerificationFlow(api AccountVerifier) *VerificationFlow {
	return &VerificationFlow{api: api}
}

// Run verifies token. A missing token fails without calling the API.
func (f *VerificationFlow) Run(ctx context.Context, token string) VerificationState {
	f.mu.Lock()
	f.state, f.user, f.err = Verifying, nil, nil
	f.mu.Unlock()

	var (
		user *domain.User
		err  error
	)
	if token == "" {
		err = fmt.Errorf("%w: verification token is missing", domain.ErrValidation)
	} else {
		user, err = f.api.Verify(ctx, token)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state, f.err = VerificationFailed, err
	} else {
		f.state, f.user = Verified, user
	}
	return f.state
}

func (f *VerificationFlow) State() VerificationState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *VerificationFlow) Result() (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user, f.err
}

type FlowState int

const (
	FlowIdle FlowState = iota
	FlowAwaitingConfirmation
	FlowCommitting
)

func (s FlowState) String() string {
	switch s {
	case FlowAwaitingConfirmation:
		return "awaiting_confirmation"
	case FlowCommitting:
		return "committing"
	}
	return "idle"
}

var (
	ErrFlowBusy         = errors.New("a status change is already in progress")
	ErrNothingToConfirm = errors.New("no status change awaiting confirmation")
)

// CommitFunc applies a status change; confirmed is true once the user accepted the Paid prompt.
type CommitFunc func(ctx context.Context, referralID string, status domain.ReferralStatus, confirmed bool) error

// StatusChangeFlow gates a move into Paid behind an explicit confirmation.
// Any other status commits immediately.
type StatusChangeFlow struct {
	commit CommitFunc

	mu            sync.Mutex
	state         FlowState
	pendingID     string
	pendingStatus domain.ReferralStatus
}

func NewStatusChangeFlow(commit CommitFunc) *StatusChangeFlow {
	return &StatusChangeFlow{commit: commit}
}

// Select starts a change. For Paid it only moves to AwaitingConfirmation.
func (f *StatusChangeFlow) Select(ctx context.Context, referralID string, status domain.ReferralStatus) error {
	f.mu.Lock()
	if f.state != FlowIdle {
		f.mu.Unlock()
		return ErrFlowBusy
	}
	if status.IsPaid() {
		f.state = FlowAwaitingConfirmation
		f.pendingID, f.pendingStatus = referralID, status
		f.mu.Unlock()
		return nil
	}
	f.state = FlowCommitting
	f.mu.Unlock()

	return f.run(ctx, referralID, status, false)
}

func (f *StatusChangeFlow) Confirm(ctx context.Context) error {
	f.mu.Lock()
	if f.state != FlowAwaitingConfirmation {
		f.mu.Unlock()
		return ErrNothingToConfirm
	}
	id, status := f.pendingID, f.pendingStatus
	f.state = FlowCommitting
	f.mu.Unlock()

	return f.run(ctx, id, status, true)
}

// Cancel drops a pending Paid change without touching the referral.
func (f *StatusChangeFlow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FlowAwaitingConfirmation {
		f.reset()
	}
}

func (f *StatusChangeFlow) run(ctx context.Context, referralID string, status domain.ReferralStatus, confirmed bool) error {
	err := f.commit(ctx, referralID, status, confirmed)
	f.mu.Lock()
	f.reset()
	f.mu.Unlock()
	return err
}

func (f *StatusChangeFlow) reset() {
	f.state = FlowIdle
	f.pendingID, f.pendingStatus = "", ""
}

func (f *StatusChangeFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Pending returns the referral and status awaiting confirmation.
func (f *StatusChangeFlow) Pending() (string, domain.ReferralStatus, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pendingID, f.pendingStatus, f.state == FlowAwaitingConfirmation
}
