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

// IssueCredentialParams holds the flags of the issue-credential command.
type IssueCredentialParams struct {
	Secret          string
	Action          string
	TokenIdentifier string
	IssuerIdentity  string
	SubjectIdentity string
	TargetIdentity  string
}

// RunIssueCredential binds a delegation record to the commitment of a secret.
// When no secret is given one is generated and printed once. Outputs the commitment
// in either text or JSON format.
//
// Requirements: Record store reachable, SECRET_KEEPER_URI configured.
func RunIssueCredential(
	ctx context.Context,
	issuerUseCase delegationUseCase.IssuerUseCase,
	logger *slog.Logger,
	params IssueCredentialParams,
	format string,
	writer io.Writer,
) error {
	logger.Info("issuing credential",
		slog.String("action", params.Action),
		slog.String("token_identifier", params.TokenIdentifier),
	)

	action, err := domain.ParseAction(params.Action)
	if err != nil {
		return err
	}

	input := &domain.IssueCredentialInput{
		Action:          action,
		TokenIdentifier: params.TokenIdentifier,
		IssuerIdentity:  params.IssuerIdentity,
		SubjectIdentity: params.SubjectIdentity,
		TargetIdentity:  params.TargetIdentity,
	}
	if params.Secret != "" {
		input.Secret = domain.SecretCredential(params.Secret)
	}

	output, err := issuerUseCase.Issue(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to issue credential: %w", err)
	}

	if format == "json" {
		writeJSON(writer, dto.MapIssueOutputToResponse(output))
	} else {
		outputIssueText(output, writer)
	}

	logger.Info("credential issued successfully",
		slog.String("commitment", output.Commitment.String()),
		slog.String("action", string(output.Record.Action)),
	)

	return nil
}

// outputIssueText outputs the issuance result in human-readable text format.
func outputIssueText(output *domain.IssueCredentialOutput, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nCredential issued successfully!")
	_, _ = fmt.Fprintf(writer, "Commitment: %s\n", output.Commitment.String())
	_, _ = fmt.Fprintf(writer, "Action: %s\n", output.Record.Action)
	_, _ = fmt.Fprintf(writer, "Token identifier: %s\n", output.Record.TokenIdentifier)
	if output.PlainSecret != "" {
		_, _ = fmt.Fprintf(writer, "Secret: %s\n", output.PlainSecret)
		_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The secret is shown only once. Store it securely.")
	}
}
