package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/zkgate/internal/delegation/domain"
	"github.com/allisson/zkgate/internal/delegation/http/dto"
	delegationService "github.com/allisson/zkgate/internal/delegation/service"
	delegationUseCase "github.com/allisson/zkgate/internal/delegation/usecase"
	"github.com/allisson/zkgate/internal/dispatch"
)

// RunExecute authorizes an attempt and posts message to channel on the delegator's behalf.
// The action is dispatched at most once; a denial dispatches nothing.
func RunExecute(
	ctx context.Context,
	executeUseCase delegationUseCase.ExecuteUseCase,
	artifactStore delegationService.ArtifactStore,
	logger *slog.Logger,
	source ArtifactSource,
	channel string,
	message string,
	format string,
	writer io.Writer,
) error {
	authorizeInput, err := loadAuthorizeInput(ctx, artifactStore, source)
	if err != nil {
		return err
	}

	output, err := executeUseCase.Execute(ctx, &domain.ExecuteInput{
		Authorize: authorizeInput,
		Payload: domain.ActionPayload{
			dispatch.PayloadChannel: channel,
			dispatch.PayloadMessage: message,
		},
	})
	if err != nil {
		printDenial(err, format, writer)
		return err
	}

	if format == "json" {
		writeJSON(writer, dto.MapExecuteOutputToResponse(output))
	} else {
		outputAuthorizedText(output.Authorization, writer)
		_, _ = fmt.Fprintf(writer, "Outcome: %s\n", output.Outcome.Detail)
	}

	logger.Debug("action executed",
		slog.String("attempt_id", output.Authorization.AttemptID.String()),
		slog.String("action", string(output.Outcome.Action)),
	)
	return nil
}
