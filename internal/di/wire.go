//go:build wireinject

package di

import (
	"log/slog"
	"os"

	"github.com/google/wire"

	"graylog-slack/internal/adapter/logging"
	"graylog-slack/internal/adapter/slack"
	"graylog-slack/internal/app"
	"graylog-slack/internal/config"
	"graylog-slack/internal/domain/ports"
	"graylog-slack/internal/usecase"
)

// InitializeApp wires the application components together.
func InitializeApp() (*app.App, error) {
	wire.Build(
		config.Load,
		provideSlogLogger,
		logging.New,
		wire.Bind(new(ports.Logger), new(*logging.SLogger)),
		provideEncoder,
		provideClient,
		wire.Bind(new(ports.Notifier), new(*slack.Client)),
		provideNotificationConfig,
		usecase.NewComposer,
		usecase.NewAlertNotifier,
		provideSchedule,
		app.New,
	)
	return nil, nil
}

func provideSlogLogger(cfg *config.Config) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	})
	return slog.New(handler)
}

func provideEncoder() *slack.Encoder {
	return slack.NewEncoder(slack.IconKind)
}

func provideClient(cfg *config.Config, encoder *slack.Encoder, logger ports.Logger) *slack.Client {
	return slack.NewClient(slack.Options{
		WebhookURL:   cfg.WebhookURL,
		ProxyAddress: cfg.ProxyAddress,
		NoProxy:      cfg.NoProxy,
		Timeout:      cfg.RequestTimeout,
	}, encoder, logger)
}

func provideNotificationConfig(cfg *config.Config) config.Notification {
	return cfg.Notification
}

func provideSchedule(cfg *config.Config) string {
	return cfg.HeartbeatCron
}
