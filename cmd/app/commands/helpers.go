// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/allisson/zkgate/internal/app"
	"github.com/allisson/zkgate/internal/delegation/domain"
	delegationService "github.com/allisson/zkgate/internal/delegation/service"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// ArtifactSource names where the proof and verification key of an attempt come from.
// Paths take precedence; an empty path is read from the artifact store under the
// commitment instead.
type ArtifactSource struct {
	ProofPath           string
	VerificationKeyPath string
	Commitment          string
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}

// loadAuthorizeInput reads the artifacts named by source. Missing artifacts are left
// empty so the gate denies them with artifact_missing.
func loadAuthorizeInput(
	ctx context.Context,
	artifactStore delegationService.ArtifactStore,
	source ArtifactSource,
) (domain.AuthorizeInput, error) {
	input := domain.AuthorizeInput{Commitment: source.Commitment}

	proof, err := readArtifact(ctx, artifactStore, source.ProofPath, source.Commitment, delegationService.ProofArtifactName)
	if err != nil {
		return input, err
	}
	key, err := readArtifact(
		ctx,
		artifactStore,
		source.VerificationKeyPath,
		source.Commitment,
		delegationService.VerificationKeyArtifactName,
	)
	if err != nil {
		return input, err
	}

	input.Proof = proof
	input.VerificationKey = key
	return input, nil
}

// readArtifact reads path when set, otherwise the named artifact stored for commitment.
func readArtifact(
	ctx context.Context,
	artifactStore delegationService.ArtifactStore,
	path string,
	rawCommitment string,
	name string,
) ([]byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return data, nil
	}

	if rawCommitment == "" || artifactStore == nil {
		return nil, nil
	}

	commitment, err := domain.ParseCommitment(rawCommitment)
	if err != nil {
		return nil, err
	}

	data, err := artifactStore.Get(ctx, delegationService.ArtifactKey(commitment, name))
	if err != nil {
		if errors.Is(err, domain.ErrArtifactNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s artifact: %w", name, err)
	}
	return data, nil
}

// writeJSON writes v as indented JSON for machine consumption.
func writeJSON(writer io.Writer, v any) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}

// asDenial extracts the gate denial from err.
func asDenial(err error) (*domain.DenialError, bool) {
	var denial *domain.DenialError
	if !errors.As(err, &denial) {
		return nil, false
	}
	return denial, true
}
