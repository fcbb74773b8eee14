package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/allisson/zkgate/internal/delegation/domain"
	"github.com/allisson/zkgate/internal/dispatch"
	apperrors "github.com/allisson/zkgate/internal/errors"
)

// executeUseCase implements ExecuteUseCase.
type executeUseCase struct {
	gate       GateUseCase
	dispatcher dispatch.Dispatcher
	logger     *slog.Logger
}

// Execute authorizes the attempt and dispatches the permitted action exactly once.
// Denials are returned untouched; dispatch failures always unwrap to apperrors.ErrDispatch
// or apperrors.ErrInvalidInput, never to apperrors.ErrForbidden.
func (e *executeUseCase) Execute(ctx context.Context, input *domain.ExecuteInput) (*domain.ExecuteOutput, error) {
	if input == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "execute input is required")
	}
	if err := dispatch.ValidatePayload(input.Payload); err != nil {
		return nil, err
	}

	authorized, err := e.gate.Authorize(ctx, &input.Authorize)
	if err != nil {
		return nil, err
	}

	outcome, err := e.dispatcher.Execute(ctx, authorized.Record, input.Payload)
	if err != nil {
		if !errors.Is(err, apperrors.ErrDispatch) && !errors.Is(err, apperrors.ErrInvalidInput) {
			err = fmt.Errorf("%w: %w", apperrors.ErrDispatch, err)
		}
		e.logger.Error("authorized action failed",
			slog.String("attempt_id", authorized.AttemptID.String()),
			slog.String("commitment", authorized.Commitment.String()),
			slog.String("action", string(authorized.Record.Action)),
			slog.Any("error", err),
		)
		return nil, err
	}

	e.logger.Info("authorized action dispatched",
		slog.String("attempt_id", authorized.AttemptID.String()),
		slog.String("commitment", authorized.Commitment.String()),
		slog.String("action", string(outcome.Action)),
	)

	return &domain.ExecuteOutput{
		Authorization: authorized,
		Outcome:       outcome,
	}, nil
}

// NewExecuteUseCase creates a new ExecuteUseCase.
func NewExecuteUseCase(gate GateUseCase, dispatcher dispatch.Dispatcher, logger *slog.Logger) ExecuteUseCase {
	return &executeUseCase{
		gate:       gate,
		dispatcher: dispatcher,
		logger:     logger,
	}
}
