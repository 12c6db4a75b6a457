package notifier

import (
	"context"
	"errors"
	"log/slog"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/events"
)

// ReferralNotifier turns lifecycle events into emails for the admin team and the referring partner.
type ReferralNotifier struct {
	mailer     Mailer
	users      domain.UserRepository
	adminEmail string
	publicURL  string
}

func NewReferralNotifier(mailer Mailer, users domain.UserRepository, adminEmail, publicURL string) *ReferralNotifier {
	return &ReferralNotifier{
		mailer:     mailer,
		users:      users,
		adminEmail: adminEmail,
		publicURL:  publicURL,
	}
}

func (n *ReferralNotifier) Attach(bus *events.Bus) []*events.Subscription {
	return []*events.Subscription{
		bus.Subscribe(domain.EventReferralCreated, "email", n.onReferralCreated),
		bus.Subscribe(domain.EventStatusChanged, "email", n.onStatusChanged),
		bus.Subscribe(domain.EventPayoutCreated, "email", n.onPayoutCreated),
	}
}

func (n *ReferralNotifier) SendVerification(ctx context.Context, user *domain.User) error {
	if user.VerificationToken == nil || user.Email == "" {
		return nil
	}
	return n.mailer.Send(ctx, verificationEmail(user, n.publicURL))
}

func (n *ReferralNotifier) onReferralCreated(ctx context.Context, event domain.Event) error {
	if event.Referral == nil || n.adminEmail == "" {
		return nil
	}
	return n.mailer.Send(ctx, newReferralAdminEmail(n.adminEmail, event.Referral))
}

func (n *ReferralNotifier) onStatusChanged(ctx context.Context, event domain.Event) error {
	email, ok, err := n.partnerEmail(ctx, event.Referral)
	if err != nil || !ok {
		return err
	}
	return n.mailer.Send(ctx, statusUpdateEmail(email, event.Referral))
}

func (n *ReferralNotifier) onPayoutCreated(ctx context.Context, event domain.Event) error {
	if event.Payout == nil {
		return nil
	}
	email, ok, err := n.partnerEmail(ctx, event.Referral)
	if err != nil || !ok {
		return err
	}
	return n.mailer.Send(ctx, payoutEmail(email, event.Referral, event.Payout))
}

// partnerEmail resolves the owner of a referral; anonymous referrals have nobody to notify.
func (n *ReferralNotifier) partnerEmail(ctx context.Context, r *domain.Referral) (string, bool, error) {
	if r == nil || r.ReferrerID == "" || n.users == nil {
		return "", false, nil
	}
	user, err := n.users.GetUserByID(ctx, r.ReferrerID)
	if errors.Is(err, domain.ErrNotFound) {
		slog.Warn("referrer has no account, skipping email", "referral_id", r.ID, "referrer_id", r.ReferrerID)
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return user.Email, user.Email != "", nil
}
