package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/allisson/zkgate/internal/database"
	"github.com/allisson/zkgate/internal/delegation/domain"
	delegationService "github.com/allisson/zkgate/internal/delegation/service"
)

// generatedSecretBits keeps generated secrets below the BN254 scalar field modulus.
const generatedSecretBits = 248

// issuerUseCase implements IssuerUseCase.
type issuerUseCase struct {
	txManager         database.TxManager
	recordRepo        RecordRepository
	commitmentService delegationService.CommitmentService
	secretVault       delegationService.SecretVault
	logger            *slog.Logger
}

// Issue validates the input, derives the commitment and persists the record and the secret
// in one unit of work. A vault failure rolls the record write back.
func (i *issuerUseCase) Issue(
	ctx context.Context,
	input *domain.IssueCredentialInput,
) (*domain.IssueCredentialOutput, error) {
	if input == nil {
		return nil, domain.ErrInvalidRecord
	}

	now := time.Now().UTC()
	record := &domain.DelegationRecord{
		Action:          input.Action,
		TokenIdentifier: input.TokenIdentifier,
		IssuerIdentity:  input.IssuerIdentity,
		SubjectIdentity: input.SubjectIdentity,
		TargetIdentity:  input.TargetIdentity,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	secret := input.Secret
	plainSecret := ""
	if len(secret) == 0 {
		generated, err := generateSecret()
		if err != nil {
			return nil, err
		}
		secret = domain.SecretCredential(generated)
		plainSecret = generated
	}

	commitment, err := i.commitmentService.Commit(secret)
	if err != nil {
		return nil, err
	}

	record.Commitment = commitment

	err = i.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := i.recordRepo.Upsert(ctx, record); err != nil {
			return err
		}
		if err := i.secretVault.Save(ctx, commitment, secret); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	i.logger.Info("delegation issued",
		slog.String("commitment", commitment.String()),
		slog.String("action", string(record.Action)),
		slog.String("issuer_identity", record.IssuerIdentity),
		slog.String("subject_identity", record.SubjectIdentity),
		slog.String("target_identity", record.TargetIdentity),
	)

	return &domain.IssueCredentialOutput{
		Commitment:  commitment,
		PlainSecret: plainSecret,
		Record:      record,
	}, nil
}

// Get returns the record stored for a commitment.
func (i *issuerUseCase) Get(ctx context.Context, commitment domain.Commitment) (*domain.DelegationRecord, error) {
	return i.recordRepo.Get(ctx, commitment)
}

// generateSecret returns a random secret rendered as a decimal field element.
func generateSecret() (string, error) {
	limit := new(big.Int).Lsh(big.NewInt(1), generatedSecretBits)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	// Zero would be a degenerate witness.
	if n.Sign() == 0 {
		n.SetInt64(1)
	}
	return n.String(), nil
}

// NewIssuerUseCase creates a new IssuerUseCase with the provided dependencies.
func NewIssuerUseCase(
	txManager database.TxManager,
	recordRepo RecordRepository,
	commitmentService delegationService.CommitmentService,
	secretVault delegationService.SecretVault,
	logger *slog.Logger,
) IssuerUseCase {
	return &issuerUseCase{
		txManager:         txManager,
		recordRepo:        recordRepo,
		commitmentService: commitmentService,
		secretVault:       secretVault,
		logger:            logger,
	}
}
