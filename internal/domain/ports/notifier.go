package ports

import (
	"context"

	"graylog-slack/internal/domain/model"
)

// Notifier delivers a composed message to the chat webhook. A nil error means
// the remote side acknowledged it; failures are *model.DeliveryError.
type Notifier interface {
	Send(ctx context.Context, message model.Message) error
}
