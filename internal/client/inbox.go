package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/events"
)

type Notification struct {
	ID      string
	Message string
	Note    string
	IsRead  bool
}

// Inbox collects admin notifications, one per referral id.
type Inbox struct {
	mu    sync.Mutex
	items []Notification
}

func NewInbox() *Inbox {
	return &Inbox{}
}

// Attach subscribes to new referrals and due reminders; unsubscribe the returned handles on logout.
func (in *Inbox) Attach(bus *events.Bus) []*events.Subscription {
	return []*events.Subscription{
		bus.Subscribe(domain.EventReferralCreated, "inbox", in.handle),
		bus.Subscribe(domain.EventReminderDue, "inbox", in.handle),
	}
}

func (in *Inbox) handle(_ context.Context, event domain.Event) error {
	r := event.Referral
	if r == nil {
		return nil
	}
	n := Notification{ID: r.ID}
	switch event.Kind {
	case domain.EventReferralCreated:
		n.Message = fmt.Sprintf("New lead from %s for %s.", r.ReferrerName, r.ClientName)
	case domain.EventReminderDue:
		n.Message = fmt.Sprintf("Reminder: Follow up with %s.", r.ClientName)
		if r.ReminderNote != nil {
			n.Note = *r.ReminderNote
		}
	default:
		return nil
	}
	in.push(n)
	return nil
}

func (in *Inbox) push(n Notification) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, existing := range in.items {
		if existing.ID == n.ID {
			return false
		}
	}
	in.items = append(in.items, n)
	return true
}

func (in *Inbox) Items() []Notification {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]Notification(nil), in.items...)
}

func (in *Inbox) UnreadCount() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	n := 0
	for _, item := range in.items {
		if !item.IsRead {
			n++
		}
	}
	return n
}

func (in *Inbox) MarkRead(id string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for i := range in.items {
		if in.items[i].ID == id {
			in.items[i].IsRead = true
		}
	}
}

func (in *Inbox) MarkAllRead() {
	in.mu.Lock()
	defer in.mu.Unlock()
	for i := range in.items {
		in.items[i].IsRead = true
	}
}

func (in *Inbox) Remove(id string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for i := range in.items {
		if in.items[i].ID == id {
			in.items = append(in.items[:i], in.items[i+1:]...)
			return
		}
	}
}
