package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/usecase/referral"
	"github.com/go-co-op/gocron"
)

const (
	reminderSweepTag = "reminder-sweep"
	statusGaugeTag   = "status-gauge"

	defaultGaugeInterval = time.Minute
)

type Options struct {
	// SweepInterval enables the server-side reminder sweep when positive
	SweepInterval time.Duration
	GaugeInterval time.Duration
}

type BackgroundTasks struct {
	ReferralUsecase referral.ReferralUsecase
	Options         Options
	Now             func() time.Time

	scheduler *gocron.Scheduler
}

func NewBackgroundTasks(referralUC referral.ReferralUsecase, opts Options) *BackgroundTasks {
	if opts.GaugeInterval <= 0 {
		opts.GaugeInterval = defaultGaugeInterval
	}
	return &BackgroundTasks{
		ReferralUsecase: referralUC,
		Options:         opts,
		Now:             time.Now,
	}
}

// StartAll schedules the jobs and stops them when ctx is done.
func (bt *BackgroundTasks) StartAll(ctx context.Context) error {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	if bt.Options.SweepInterval > 0 {
		if _, err := s.Every(bt.Options.SweepInterval).Tag(reminderSweepTag).Do(bt.sweepReminders, ctx); err != nil {
			return err
		}
	}
	if _, err := s.Every(bt.Options.GaugeInterval).Tag(statusGaugeTag).Do(bt.refreshStatusGauge, ctx); err != nil {
		return err
	}

	s.StartAsync()
	bt.scheduler = s
	slog.Info("background tasks started", "jobs", len(s.Jobs()), "reminder_sweep", bt.Options.SweepInterval > 0)

	go func() {
		<-ctx.Done()
		s.Stop()
		slog.Info("background tasks stopped")
	}()
	return nil
}

// Jobs lists the tags of scheduled jobs.
func (bt *BackgroundTasks) Jobs() []string {
	if bt.scheduler == nil {
		return nil
	}
	var tags []string
	for _, job := range bt.scheduler.Jobs() {
		tags = append(tags, job.Tags()...)
	}
	return tags
}

func (bt *BackgroundTasks) sweepReminders(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	due, err := bt.ReferralUsecase.CheckDueReminders(ctx, bt.Now())
	if err != nil {
		slog.Error("reminder sweep failed", "error", err.Error())
		return
	}
	if len(due) > 0 {
		slog.Info("reminder sweep", "fired", len(due))
	}
}

func (bt *BackgroundTasks) refreshStatusGauge(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := bt.ReferralUsecase.RefreshStatusGauge(ctx); err != nil {
		slog.Error("status gauge refresh failed", "error", err.Error())
	}
}
