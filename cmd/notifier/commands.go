package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"graylog-slack/internal/adapter/alertsource"
	"graylog-slack/internal/config"
	"graylog-slack/internal/di"
	"graylog-slack/internal/domain/model"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "notifier",
		Short:         "Deliver Graylog alerts and messages to a Slack webhook",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSendCmd(), newOutputCmd(), newHeartbeatCmd(), newValidateCmd())
	return root
}

func newSendCmd() *cobra.Command {
	var (
		path string
		test bool
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one alert notification",
		Long:  "Send one alert notification built from an alert context document (JSON, \"-\" for stdin).",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := di.InitializeApp()
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			var outcome model.Outcome
			if test {
				outcome = application.SendTest(ctx)
			} else {
				alert, err := alertsource.NewFile(path).Alert(ctx)
				if err != nil {
					return err
				}
				outcome = application.Notifier().NotifyAlert(ctx, alert)
			}
			return report(cmd, outcome)
		},
	}
	cmd.Flags().StringVarP(&path, "alert", "a", alertsource.Stdin, "path to the alert context document")
	cmd.Flags().BoolVar(&test, "test", false, "send a test notification instead of reading an alert")
	return cmd
}

func newOutputCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "output",
		Short: "Send one stream message notification",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := di.InitializeApp()
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			stream, item, err := alertsource.NewFile(path).Message(ctx)
			if err != nil {
				return err
			}
			return report(cmd, application.Notifier().NotifyMessage(ctx, stream, item))
		},
	}
	cmd.Flags().StringVarP(&path, "message", "m", alertsource.Stdin, "path to the message context document")
	return cmd
}

func newHeartbeatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "heartbeat",
		Short: "Send test notifications on the HEARTBEAT_CRON schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := di.InitializeApp()
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			if err := application.Run(ctx); err != nil {
				return fmt.Errorf("application runtime error: %w", err)
			}
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration without sending anything",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration ok: channel %s\n", cfg.Notification.Channel)
			return nil
		},
	}
}

func report(cmd *cobra.Command, outcome model.Outcome) error {
	if !outcome.OK() {
		return fmt.Errorf("could not send message to Slack (delivery %s): %w", outcome.DeliveryID, outcome.Err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "delivered %s\n", outcome.DeliveryID)
	return nil
}
