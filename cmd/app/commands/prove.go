package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/allisson/zkgate/internal/delegation/domain"
	delegationUseCase "github.com/allisson/zkgate/internal/delegation/usecase"
)

// RunProve generates a proof for the secret held under a commitment. The proof and
// verification key are published to the artifact store; the proof is also written to
// outputPath when set, or to writer otherwise.
//
// Requirements: ZoKrates toolchain available, compiled circuit and proving key in ZOKRATES_WORKDIR.
func RunProve(
	ctx context.Context,
	proveUseCase delegationUseCase.ProveUseCase,
	logger *slog.Logger,
	rawCommitment string,
	outputPath string,
	writer io.Writer,
) error {
	commitment, err := domain.ParseCommitment(rawCommitment)
	if err != nil {
		return err
	}

	logger.Info("generating proof", slog.String("commitment", commitment.String()))

	proof, err := proveUseCase.Prove(ctx, commitment)
	if err != nil {
		return fmt.Errorf("failed to generate proof: %w", err)
	}

	if outputPath == "" {
		_, _ = fmt.Fprintln(writer, string(proof))
		return nil
	}

	if err := os.WriteFile(outputPath, proof, 0o600); err != nil {
		return fmt.Errorf("failed to write proof: %w", err)
	}
	_, _ = fmt.Fprintf(writer, "Proof written to %s\n", outputPath)
	return nil
}
