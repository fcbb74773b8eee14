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
)

// RunAuthorize runs one attempt through the authorization gate without dispatching.
// A denial prints its reason code and is returned as an error so the process exits non-zero.
func RunAuthorize(
	ctx context.Context,
	gateUseCase delegationUseCase.GateUseCase,
	artifactStore delegationService.ArtifactStore,
	logger *slog.Logger,
	source ArtifactSource,
	format string,
	writer io.Writer,
) error {
	input, err := loadAuthorizeInput(ctx, artifactStore, source)
	if err != nil {
		return err
	}

	authorized, err := gateUseCase.Authorize(ctx, &input)
	if err != nil {
		printDenial(err, format, writer)
		return err
	}

	if format == "json" {
		writeJSON(writer, dto.MapAuthorizedToResponse(authorized))
	} else {
		outputAuthorizedText(authorized, writer)
	}

	logger.Debug("authorization granted", slog.String("attempt_id", authorized.AttemptID.String()))
	return nil
}

// printDenial writes denial reason codes; other errors are left to the caller.
func printDenial(err error, format string, writer io.Writer) {
	denial, ok := asDenial(err)
	if !ok {
		return
	}
	if format == "json" {
		writeJSON(writer, map[string]string{"error": "denied", "code": denial.Code()})
		return
	}
	_, _ = fmt.Fprintf(writer, "Denied: %s\n", denial.Code())
}

// outputAuthorizedText outputs a granted authorization in human-readable text format.
func outputAuthorizedText(authorized *domain.AuthorizedAction, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "Authorized")
	_, _ = fmt.Fprintf(writer, "Attempt: %s\n", authorized.AttemptID.String())
	_, _ = fmt.Fprintf(writer, "Commitment: %s\n", authorized.Commitment.String())
	_, _ = fmt.Fprintf(writer, "Action: %s\n", authorized.Record.Action)
	_, _ = fmt.Fprintf(writer, "Token identifier: %s\n", authorized.Record.TokenIdentifier)
	_, _ = fmt.Fprintf(writer, "Target: %s\n", authorized.Record.TargetIdentity)
}
