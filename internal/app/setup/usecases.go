package setup

import (
	"github.com/LavaJover/shvark-referral-service/internal/events"
	publisher "github.com/LavaJover/shvark-referral-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/notifier"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/account"
	"github.com/LavaJover/shvark-referral-service/internal/usecase/referral"
)

type UseCases struct {
	ReferralUsecase *referral.DefaultReferralUsecase
	AccountUsecase  *account.DefaultAccountUsecase
	Notifier        *notifier.ReferralNotifier

	// Subscriptions made on the bus at startup
	Subscriptions []*events.Subscription
}

func InitializeUseCases(deps *Dependencies) *UseCases {
	cfg := deps.Config
	repos := deps.Repositories

	referralNotifier := notifier.NewReferralNotifier(deps.Mailer, repos.UserRepo, cfg.SMTP.AdminEmail, cfg.SMTP.PublicURL)

	referralUsecase := referral.NewDefaultReferralUsecase(
		repos.ReferralRepo,
		repos.PayoutRepo,
		repos.UserRepo,
		deps.Bus,
		deps.Metrics,
		referral.Policy{
			RequirePaidConfirmation: cfg.Lifecycle.RequirePaidConfirmation,
			BlockRevertPaid:         cfg.Lifecycle.BlockRevertPaid,
		},
	)
	referralUsecase.Logger = deps.Logger

	accountUsecase := account.NewDefaultAccountUsecase(
		repos.UserRepo,
		deps.Verifier,
		deps.Tokens,
		referralNotifier,
		cfg.Auth.AdminEmails,
	)

	var subs []*events.Subscription
	subs = append(subs, referralNotifier.Attach(deps.Bus)...)
	if deps.EventPublisher != nil {
		forwarder := publisher.NewEventForwarder(deps.EventPublisher)
		// closed before the writer it feeds
		deps.closers = append(deps.closers, forwarder)
		subs = append(subs, forwarder.Attach(deps.Bus)...)
	}
	if deps.DB != nil {
		subs = append(subs, logger.AttachAuditLog(deps.Bus, logger.NewPGReferralEventLogger(deps.DB))...)
	}

	return &UseCases{
		ReferralUsecase: referralUsecase,
		AccountUsecase:  accountUsecase,
		Notifier:        referralNotifier,
		Subscriptions:   subs,
	}
}
