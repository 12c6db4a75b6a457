package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/request"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/events"
	referraldto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/referral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commitCall struct {
	id        string
	status    domain.ReferralStatus
	confirmed bool
}

func TestStatusChangeFlow(t *testing.T) {
	ctx := context.Background()
	var calls []commitCall
	flow := NewStatusChangeFlow(func(ctx context.Context, id string, status domain.ReferralStatus, confirmed bool) error {
		calls = append(calls, commitCall{id, status, confirmed})
		return nil
	})

	t.Run("non-paid commits at once", func(t *testing.T) {
		calls = nil
		require.NoError(t, flow.Select(ctx, "r1", domain.StatusAccepted))
		assert.Equal(t, FlowIdle, flow.State())
		assert.Equal(t, []commitCall{{"r1", domain.StatusAccepted, false}}, calls)
	})

	t.Run("paid waits for confirmation", func(t *testing.T) {
		calls = nil
		require.NoError(t, flow.Select(ctx, "r1", domain.StatusPaid))
		assert.Equal(t, FlowAwaitingConfirmation, flow.State())
		assert.Empty(t, calls)
		id, status, ok := flow.Pending()
		assert.True(t, ok)
		assert.Equal(t, "r1", id)
		assert.Equal(t, domain.StatusPaid, status)

		assert.ErrorIs(t, flow.Select(ctx, "r2", domain.StatusAccepted), ErrFlowBusy)

		require.NoError(t, flow.Confirm(ctx))
		assert.Equal(t, FlowIdle, flow.State())
		assert.Equal(t, []commitCall{{"r1", domain.StatusPaid, true}}, calls)
	})

	t.Run("cancel leaves referral untouched", func(t *testing.T) {
		calls = nil
		require.NoError(t, flow.Select(ctx, "r1", domain.StatusPaid))
		flow.Cancel()
		assert.Equal(t, FlowIdle, flow.State())
		assert.Empty(t, calls)
		assert.ErrorIs(t, flow.Confirm(ctx), ErrNothingToConfirm)
	})

	t.Run("failed commit returns to idle", func(t *testing.T) {
		failing := NewStatusChangeFlow(func(context.Context, string, domain.ReferralStatus, bool) error {
			return domain.ErrTransientStore
		})
		assert.ErrorIs(t, failing.Select(ctx, "r1", domain.StatusCompleted), domain.ErrTransientStore)
		assert.Equal(t, FlowIdle, failing.State())
	})
}

type fakeBoardAPI struct {
	mu         sync.Mutex
	referrals  []*domain.Referral
	failStatus error
	failRemind error
	refreshes  int
	// seen runs inside SetStatus, before the change is applied
	seen func()
}

func (f *fakeBoardAPI) AdminData(ctx context.Context) (*referraldto.AdminDataOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return &referraldto.AdminDataOutput{Referrals: cloneAll(f.referrals)}, nil
}

func (f *fakeBoardAPI) SetStatus(ctx context.Context, in request.SetStatusRequest) (*response.SetStatusResponse, error) {
	if f.seen != nil {
		f.seen()
	}
	if f.failStatus != nil {
		return nil, f.failStatus
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.referrals {
		if r.ID == in.ReferralID {
			r.Status = domain.ReferralStatus(in.Status)
			return &response.SetStatusResponse{Changed: true, Referral: r.Clone()}, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBoardAPI) SetReminder(ctx context.Context, in request.SetReminderRequest) (*domain.Referral, error) {
	if f.failRemind != nil {
		return nil, f.failRemind
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.referrals {
		if r.ID == in.ReferralID {
			r.ClearReminder()
			if in.ReminderDate != nil {
				d := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
				r.ReminderDate = &d
				r.ReminderNote = in.ReminderNote
			}
			return r.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func seedBoard(t *testing.T) (*ReferralBoard, *fakeBoardAPI) {
	t.Helper()
	api := &fakeBoardAPI{referrals: []*domain.Referral{
		{ID: "r1", ClientName: "Acme", ReferrerName: "Asha", ExpectedCommission: 1000, Status: domain.StatusLeadReceived},
		{ID: "r2", ClientName: "Globex", ReferrerName: "Ravi", ExpectedCommission: 500, Status: domain.StatusAccepted},
	}}
	board := NewReferralBoard(api)
	require.NoError(t, board.Refresh(context.Background()))
	return board, api
}

func TestReferralBoardOptimisticStatus(t *testing.T) {
	board, api := seedBoard(t)
	ctx := context.Background()

	api.seen = func() {
		assert.Equal(t, domain.StatusPaid, board.Referrals()[0].Status)
		assert.True(t, board.Updating("r1"))
		assert.Equal(t, 50, board.Stats().ConversionRate)
	}
	require.NoError(t, board.ChangeStatus(ctx, "r1", domain.StatusPaid, true))
	assert.False(t, board.Updating("r1"))
	assert.Equal(t, domain.StatusPaid, board.Referrals()[0].Status)
	assert.Equal(t, 2, api.refreshes)
}

func TestReferralBoardRollsBack(t *testing.T) {
	board, api := seedBoard(t)
	ctx := context.Background()
	api.failStatus = domain.ErrTransientStore

	err := board.ChangeStatus(ctx, "r2", domain.StatusCompleted, false)
	assert.ErrorIs(t, err, domain.ErrTransientStore)
	assert.Equal(t, domain.StatusAccepted, board.Referrals()[1].Status)
	assert.False(t, board.Updating("r2"))
	assert.Equal(t, 1, api.refreshes)

	api.failRemind = errors.New("boom")
	date, note := "2025-02-01T10:00", "call"
	require.Error(t, board.SetReminder(ctx, "r1", &date, &note))
	assert.Nil(t, board.Referrals()[0].ReminderDate)

	assert.ErrorIs(t, board.ChangeStatus(ctx, "missing", domain.StatusPaid, true), domain.ErrNotFound)
}

func TestReferralBoardReminderAndSearch(t *testing.T) {
	board, _ := seedBoard(t)
	ctx := context.Background()

	date, note := "2025-02-01T10:00:00Z", "call back"
	require.NoError(t, board.SetReminder(ctx, "r1", &date, &note))
	got := board.Referrals()[0]
	require.NotNil(t, got.ReminderDate)
	assert.Equal(t, "call back", *got.ReminderNote)

	require.NoError(t, board.SetReminder(ctx, "r1", nil, nil))
	got = board.Referrals()[0]
	assert.Nil(t, got.ReminderDate)
	assert.Nil(t, got.ReminderNote)

	assert.Len(t, board.Search("RAVI"), 1)
	assert.Len(t, board.Search(""), 2)
	assert.Empty(t, board.Search("nobody"))
}

func TestReferralBoardFollowsBus(t *testing.T) {
	board, _ := seedBoard(t)
	bus := events.NewBus(nil)
	sub := board.Attach(bus)

	fresh := &domain.Referral{ID: "r3", ClientName: "Initech", ReferrerName: "Asha", ExpectedCommission: 250, Status: domain.StatusLeadReceived}
	require.NoError(t, bus.Publish(context.Background(), domain.Event{Kind: domain.EventReferralCreated, Referral: fresh}))
	require.NoError(t, bus.Publish(context.Background(), domain.Event{Kind: domain.EventReferralCreated, Referral: fresh}))

	refs := board.Referrals()
	require.Len(t, refs, 3)
	assert.Equal(t, "r3", refs[0].ID)
	assert.Equal(t, 3, board.Stats().TotalReferrals)
	assert.Equal(t, 1750.0, board.Stats().PendingCommission)

	assert.True(t, bus.Unsubscribe(sub))
	assert.Zero(t, bus.Len(domain.EventReferralCreated))
}

type fakeDue struct {
	calls atomic.Int32
	batch []*domain.Referral
}

func (f *fakeDue) DueReminders(ctx context.Context) ([]*domain.Referral, error) {
	if f.calls.Add(1) == 1 {
		return f.batch, nil
	}
	return nil, nil
}

func TestReminderPoller(t *testing.T) {
	note := "ring at 10"
	due := &fakeDue{batch: []*domain.Referral{{ID: "r1", ClientName: "Acme", ReminderNote: &note}}}
	bus := events.NewBus(nil)
	inbox := NewInbox()
	subs := inbox.Attach(bus)
	defer func() {
		for _, s := range subs {
			bus.Unsubscribe(s)
		}
	}()

	poller := NewReminderPoller(due, bus, 10*time.Millisecond)

	assert.ErrorIs(t, poller.Run(context.Background(), &domain.User{Role: domain.RoleUser}), ErrNotAdmin)
	assert.ErrorIs(t, poller.Run(context.Background(), nil), ErrNotAdmin)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx, &domain.User{Role: domain.RoleAdmin}) }()

	require.Eventually(t, func() bool { return due.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	items := inbox.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Reminder: Follow up with Acme.", items[0].Message)
	assert.Equal(t, "ring at 10", items[0].Note)
}

func TestInbox(t *testing.T) {
	bus := events.NewBus(nil)
	inbox := NewInbox()
	inbox.Attach(bus)
	ctx := context.Background()

	r := &domain.Referral{ID: "r1", ClientName: "Acme", ReferrerName: "Asha"}
	require.NoError(t, bus.Publish(ctx, domain.Event{Kind: domain.EventReferralCreated, Referral: r}))
	require.NoError(t, bus.Publish(ctx, domain.Event{Kind: domain.EventReferralCreated, Referral: r}))
	require.NoError(t, bus.Publish(ctx, domain.Event{Kind: domain.EventReferralCreated, Referral: &domain.Referral{ID: "r2", ClientName: "Globex", ReferrerName: "Ravi"}}))

	assert.Equal(t, 2, inbox.UnreadCount())
	assert.Equal(t, "New lead from Asha for Acme.", inbox.Items()[0].Message)

	inbox.MarkRead("r1")
	assert.Equal(t, 1, inbox.UnreadCount())
	inbox.MarkAllRead()
	assert.Zero(t, inbox.UnreadCount())
	inbox.Remove("r1")
	require.Len(t, inbox.Items(), 1)
	assert.Equal(t, "r2", inbox.Items()[0].ID)
}
