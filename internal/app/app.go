package app

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	"graylog-slack/internal/domain/model"
	"graylog-slack/internal/domain/ports"
	"graylog-slack/internal/usecase"
)

// App runs test notifications on a cron schedule so operators can see that
// the webhook still accepts messages.
type App struct {
	cron     *cron.Cron
	notifier *usecase.AlertNotifier
	logger   ports.Logger
	schedule string
	now      func() time.Time
}

// New constructs an App instance.
func New(notifier *usecase.AlertNotifier, logger ports.Logger, schedule string) *App {
	return &App{
		cron:     cron.New(),
		notifier: notifier,
		logger:   logger,
		schedule: schedule,
		now:      time.Now,
	}
}

// Notifier exposes the use case for one-shot commands.
func (a *App) Notifier() *usecase.AlertNotifier {
	return a.notifier
}

// SendTest delivers a single test notification.
func (a *App) SendTest(ctx context.Context) model.Outcome {
	return a.notifier.NotifyAlert(ctx, usecase.SampleAlert(a.now()))
}

// Run sends a test notification immediately and then according to the cron
// schedule until ctx is done. Failed heartbeats are logged, never retried.
func (a *App) Run(ctx context.Context) error {
	if a.schedule == "" {
		return errors.New("heartbeat schedule is empty")
	}
	if err := a.scheduleJob(ctx); err != nil {
		return err
	}

	a.logger.Info(ctx, "sending first test notification immediately")
	a.SendTest(ctx)

	a.logger.Info(ctx, "starting scheduler", "cron", a.schedule)
	a.cron.Start()

	<-ctx.Done()
	stopCtx := a.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
	}
	a.logger.Info(context.Background(), "scheduler stopped")
	return nil
}

func (a *App) scheduleJob(ctx context.Context) error {
	_, err := a.cron.AddFunc(a.schedule, func() {
		if ctx.Err() != nil {
			return
		}
		a.SendTest(ctx)
	})
	return err
}
