package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/allisson/zkgate/internal/delegation/domain"
)

// LogDispatcher records post_message actions in the log instead of delivering them.
type LogDispatcher struct {
	logger *slog.Logger
}

// NewLogDispatcher creates a dry-run dispatcher.
func NewLogDispatcher(logger *slog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Execute(
	_ context.Context,
	record *domain.DelegationRecord,
	payload domain.ActionPayload,
) (*domain.ActionOutcome, error) {
	channel, message, err := messageFromPayload(payload)
	if err != nil {
		return nil, err
	}

	d.logger.Info("dry run dispatch",
		slog.String("action", string(record.Action)),
		slog.String("channel", channel),
		slog.String("token_identifier", record.TokenIdentifier),
		slog.String("target_identity", record.TargetIdentity),
		slog.Int("message_length", len(message)),
	)

	return &domain.ActionOutcome{
		Action:       record.Action,
		Detail:       fmt.Sprintf("logged message for %s", channel),
		DispatchedAt: time.Now().UTC(),
	}, nil
}
