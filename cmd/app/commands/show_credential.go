package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/zkgate/internal/delegation/domain"
	"github.com/allisson/zkgate/internal/delegation/http/dto"
	delegationUseCase "github.com/allisson/zkgate/internal/delegation/usecase"
)

// RunShowCredential prints the delegation record stored for a commitment.
func RunShowCredential(
	ctx context.Context,
	issuerUseCase delegationUseCase.IssuerUseCase,
	logger *slog.Logger,
	rawCommitment string,
	format string,
	writer io.Writer,
) error {
	commitment, err := domain.ParseCommitment(rawCommitment)
	if err != nil {
		return err
	}

	record, err := issuerUseCase.Get(ctx, commitment)
	if err != nil {
		return fmt.Errorf("failed to get credential: %w", err)
	}

	if format == "json" {
		writeJSON(writer, dto.MapRecordToResponse(record))
		return nil
	}

	_, _ = fmt.Fprintf(writer, "Commitment: %s\n", record.Commitment.String())
	_, _ = fmt.Fprintf(writer, "Action: %s\n", record.Action)
	_, _ = fmt.Fprintf(writer, "Token identifier: %s\n", record.TokenIdentifier)
	_, _ = fmt.Fprintf(writer, "Issuer: %s\n", record.IssuerIdentity)
	_, _ = fmt.Fprintf(writer, "Subject: %s\n", record.SubjectIdentity)
	_, _ = fmt.Fprintf(writer, "Target: %s\n", record.TargetIdentity)

	logger.Debug("credential shown", slog.String("commitment", commitment.String()))
	return nil
}
