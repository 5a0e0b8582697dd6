package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"graylog-slack/internal/domain/model"
	"graylog-slack/internal/domain/ports"
)

// AlertNotifier composes notifications and hands them to the notifier. Each
// call composes, encodes and sends exactly once on the caller's goroutine.
type AlertNotifier struct {
	composer *Composer
	notifier ports.Notifier
	logger   ports.Logger
}

// NewAlertNotifier constructs an AlertNotifier use case.
func NewAlertNotifier(composer *Composer, notifier ports.Notifier, logger ports.Logger) *AlertNotifier {
	return &AlertNotifier{
		composer: composer,
		notifier: notifier,
		logger:   logger,
	}
}

// NotifyAlert delivers the notification for a triggered alert.
func (n *AlertNotifier) NotifyAlert(ctx context.Context, alert model.Alert) model.Outcome {
	msg := n.composer.ComposeAlert(alert)
	return n.deliver(ctx, msg, "kind", "alert", "stream_id", alert.Stream.ID)
}

// NotifyMessage delivers the notification for a single stream message.
func (n *AlertNotifier) NotifyMessage(ctx context.Context, stream model.Stream, item model.BacklogItem) model.Outcome {
	msg := n.composer.ComposeMessage(stream, item)
	return n.deliver(ctx, msg, "kind", "message", "stream_id", stream.ID, "message_id", item.ID)
}

func (n *AlertNotifier) deliver(ctx context.Context, msg model.Message, args ...any) model.Outcome {
	start := time.Now()
	outcome := model.Outcome{DeliveryID: uuid.NewString()}
	args = append(args, "delivery_id", outcome.DeliveryID, "channel", msg.Channel, "attachments", len(msg.Attachments))

	n.logger.Debug(ctx, "sending notification", args...)

	err := n.notifier.Send(ctx, msg)
	if err == nil {
		n.logger.Info(ctx, "notification delivered", append(args, "duration", time.Since(start))...)
		return outcome
	}

	var derr *model.DeliveryError
	if !errors.As(err, &derr) {
		derr = &model.DeliveryError{Reason: model.ReasonConnection, Detail: "could not send message to Slack", Err: err}
	}
	outcome.Err = derr
	n.logger.Error(ctx, "failed to send notification", append(args, "reason", derr.Reason, "error", derr)...)
	return outcome
}
