package worker

import (
	"context"
	"fmt"
	"log/slog"

	"bloodbridge.app/engage/common/id"
	"bloodbridge.app/engage/internal/channel"
	"bloodbridge.app/engage/internal/model"
	"bloodbridge.app/engage/internal/queue"
	"bloodbridge.app/engage/internal/store"
)

// Processor delivers one alert task.
type Processor interface {
	Process(ctx context.Context, task queue.AlertTask) error
}

type alertProcessor struct {
	sender   channel.Sender
	messages store.MessageStore
}

// NewAlertProcessor builds the delivery processor: it sends the alert text
// over the outbound channel and appends the send to the message log.
func NewAlertProcessor(sender channel.Sender, messages store.MessageStore) Processor {
	return &alertProcessor{
		sender:   sender,
		messages: messages,
	}
}

func (p *alertProcessor) Process(ctx context.Context, task queue.AlertTask) error {
	if task.TaskType != queue.TaskTypeDonorAlert {
		return fmt.Errorf("unknown task type %q", task.TaskType)
	}

	if err := p.sender.Send(ctx, task.To, task.Text); err != nil {
		return fmt.Errorf("sending donor alert: %w", err)
	}

	// The log write is best-effort: the alert is already out and retrying the
	// whole task for a log failure would double-send it.
	msg := &model.Message{
		ID:        id.New(),
		UserID:    &task.DonorID,
		Channel:   "whatsapp",
		Direction: model.DirectionOut,
		Text:      task.Text,
	}
	if err := p.messages.Create(ctx, msg); err != nil {
		slog.WarnContext(ctx, "failed to log delivered alert",
			"error", err,
			"bridge_id", task.BridgeID)
	}

	return nil
}
