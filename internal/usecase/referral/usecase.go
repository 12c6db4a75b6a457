package referral

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	referraldto "github.com/LavaJover/shvark-referral-service/internal/usecase/dto/referral"
)

type ReferralUsecase interface {
	Submit(ctx context.Context, input *referraldto.SubmitReferralInput) (*domain.Referral, error)
	SetStatus(ctx context.Context, input *referraldto.SetStatusInput) (*domain.TransitionResult, error)
	SetReminder(ctx context.Context, input *referraldto.SetReminderInput) (*domain.Referral, error)
	CheckDueReminders(ctx context.Context, now time.Time) ([]*domain.Referral, error)

	GetReferralByID(ctx context.Context, referralID string) (*domain.Referral, error)
	ListReferrals(ctx context.Context, input *referraldto.ListReferralsInput) ([]*domain.Referral, error)
	AdminData(ctx context.Context) (*referraldto.AdminDataOutput, error)
	UserData(ctx context.Context, userID string, now time.Time) (*referraldto.UserDataOutput, error)
	RefreshStatusGauge(ctx context.Context) error
}

// Policy tightens the lifecycle. The zero value permits any transition without confirmation.
type Policy struct {
	RequirePaidConfirmation bool
	BlockRevertPaid         bool
}

type DefaultReferralUsecase struct {
	ReferralRepo domain.ReferralRepository
	PayoutRepo   domain.PayoutRepository
	UserRepo     domain.UserRepository
	Publisher    domain.EventPublisher
	Metrics      *metrics.ReferralMetrics
	Policy       Policy
	Now          func() time.Time
	Logger       *slog.Logger
}

func NewDefaultReferralUsecase(
	referralRepo domain.ReferralRepository,
	payoutRepo domain.PayoutRepository,
	userRepo domain.UserRepository,
	publisher domain.EventPublisher,
	referralMetrics *metrics.ReferralMetrics,
	policy Policy,
) *DefaultReferralUsecase {
	return &DefaultReferralUsecase{
		ReferralRepo: referralRepo,
		PayoutRepo:   payoutRepo,
		UserRepo:     userRepo,
		Publisher:    publisher,
		Metrics:      referralMetrics,
		Policy:       policy,
		Now:          time.Now,
		Logger:       slog.Default(),
	}
}

func (uc *DefaultReferralUsecase) now() time.Time {
	if uc.Now == nil {
		return time.Now()
	}
	return uc.Now()
}

func (uc *DefaultReferralUsecase) log() *slog.Logger {
	if uc.Logger == nil {
		return slog.Default()
	}
	return uc.Logger
}

// publish never fails the caller: the mutation is already committed.
func (uc *DefaultReferralUsecase) publish(ctx context.Context, event domain.Event) {
	if uc.Publisher == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = uc.now()
	}
	if err := uc.Publisher.Publish(ctx, event); err != nil {
		referralID := ""
		if event.Referral != nil {
			referralID = event.Referral.ID
		}
		uc.log().Error("failed to publish referral event",
			"kind", event.Kind,
			"referral_id", referralID,
			"error", err.Error(),
		)
	}
}
