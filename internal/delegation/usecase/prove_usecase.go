package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/zkgate/internal/delegation/domain"
	delegationService "github.com/allisson/zkgate/internal/delegation/service"
)

// proveUseCase implements ProveUseCase.
type proveUseCase struct {
	secretVault   delegationService.SecretVault
	proofService  delegationService.ProofService
	keyProvider   delegationService.VerificationKeyProvider
	artifactStore delegationService.ArtifactStore
	timeout       time.Duration
	logger        *slog.Logger
}

// Prove loads the secret for commitment, generates a proof and publishes the proof and
// verification key to the artifact store under the commitment.
func (p *proveUseCase) Prove(ctx context.Context, commitment domain.Commitment) ([]byte, error) {
	secret, err := p.secretVault.Load(ctx, commitment)
	if err != nil {
		return nil, err
	}
	defer secret.Zero()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	proof, err := p.proofService.Prove(ctx, secret, commitment)
	if err != nil {
		return nil, err
	}

	proofKey := delegationService.ArtifactKey(commitment, delegationService.ProofArtifactName)
	if err := p.artifactStore.Put(ctx, proofKey, proof.Raw); err != nil {
		return nil, err
	}

	if p.keyProvider != nil {
		verificationKey, err := p.keyProvider.ReadVerificationKey()
		if err != nil {
			return nil, err
		}
		keyKey := delegationService.ArtifactKey(commitment, delegationService.VerificationKeyArtifactName)
		if err := p.artifactStore.Put(ctx, keyKey, verificationKey); err != nil {
			return nil, err
		}
	}

	p.logger.Info("proof generated",
		slog.String("commitment", commitment.String()),
		slog.String("artifact", proofKey),
	)
	return proof.Raw, nil
}

// NewProveUseCase creates a new ProveUseCase. keyProvider may be nil when verification keys
// are distributed out of band.
func NewProveUseCase(
	secretVault delegationService.SecretVault,
	proofService delegationService.ProofService,
	keyProvider delegationService.VerificationKeyProvider,
	artifactStore delegationService.ArtifactStore,
	timeout time.Duration,
	logger *slog.Logger,
) ProveUseCase {
	return &proveUseCase{
		secretVault:   secretVault,
		proofService:  proofService,
		keyProvider:   keyProvider,
		artifactStore: artifactStore,
		timeout:       timeout,
		logger:        logger,
	}
}
