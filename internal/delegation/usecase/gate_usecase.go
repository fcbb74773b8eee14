package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/zkgate/internal/delegation/domain"
	delegationService "github.com/allisson/zkgate/internal/delegation/service"
)

// gateUseCase implements GateUseCase. It holds no state between calls.
type gateUseCase struct {
	recordRepo    RecordRepository
	consumedRepo  ConsumedProofRepository
	proofService  delegationService.ProofService
	verifyTimeout time.Duration
	logger        *slog.Logger
}

// Authorize runs one attempt through Pending -> Verifying -> {Authorized | Denied}.
//
// The store is consulted only after the verifier accepted the proof, so a rejected proof
// reveals nothing about which commitments are registered. Verifier errors and timeouts
// deny with ReasonArtifactMissing. Store read failures are returned as errors: the gate
// could not decide and nothing is authorized.
func (g *gateUseCase) Authorize(
	ctx context.Context,
	input *domain.AuthorizeInput,
) (*domain.AuthorizedAction, error) {
	attemptID := uuid.Must(uuid.NewV7())
	logger := g.logger.With(slog.String("attempt_id", attemptID.String()))
	logger.Debug("authorization attempt", slog.String("state", string(domain.StatePending)))

	if input == nil {
		return nil, g.deny(logger, domain.ReasonArtifactMissing)
	}

	proof, key, commitment, reason := decodeArtifacts(input)
	if reason != "" {
		return nil, g.deny(logger, reason)
	}
	logger = logger.With(slog.String("commitment", commitment.String()))

	logger.Debug("verifying proof", slog.String("state", string(domain.StateVerifying)))
	valid, err := g.verify(ctx, proof, key, commitment)
	if err != nil {
		logger.Warn("proof verification did not complete", slog.Any("error", err))
		return nil, g.deny(logger, domain.ReasonArtifactMissing)
	}
	if !valid {
		return nil, g.deny(logger, domain.ReasonProofInvalid)
	}

	record, err := g.recordRepo.Get(ctx, commitment)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, g.deny(logger, domain.ReasonUnknownCommitment)
		}
		if !errors.Is(err, domain.ErrStoreRead) {
			err = fmt.Errorf("%w: %w", domain.ErrStoreRead, err)
		}
		logger.Error("credential store lookup failed", slog.Any("error", err))
		return nil, err
	}

	if g.consumedRepo != nil {
		err := g.consumedRepo.Consume(ctx, &domain.ConsumedProof{
			Fingerprint: proof.Fingerprint(),
			Commitment:  commitment,
			ConsumedAt:  time.Now().UTC(),
		})
		if errors.Is(err, domain.ErrProofConsumed) {
			return nil, g.deny(logger, domain.ReasonProofReplayed)
		}
		if err != nil {
			logger.Error("failed to record consumed proof", slog.Any("error", err))
			return nil, err
		}
	}

	logger.Info("authorization granted",
		slog.String("state", string(domain.StateAuthorized)),
		slog.String("action", string(record.Action)),
		slog.String("subject_identity", record.SubjectIdentity),
	)

	return &domain.AuthorizedAction{
		AttemptID:    attemptID,
		Commitment:   commitment,
		Record:       record,
		AuthorizedAt: time.Now().UTC(),
	}, nil
}

func (g *gateUseCase) verify(
	ctx context.Context,
	proof *domain.Proof,
	key *domain.VerificationKey,
	commitment domain.Commitment,
) (bool, error) {
	if g.verifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.verifyTimeout)
		defer cancel()
	}
	return g.proofService.Verify(ctx, proof, key, commitment)
}

func (g *gateUseCase) deny(logger *slog.Logger, reason domain.DenialReason) error {
	logger.Info("authorization denied",
		slog.String("state", string(domain.StateDenied)),
		slog.String("reason", string(reason)),
	)
	return domain.NewDenialError(reason)
}

// decodeArtifacts applies the precondition checks. It returns a non-empty reason when
// the attempt must be denied before verification.
func decodeArtifacts(
	input *domain.AuthorizeInput,
) (*domain.Proof, *domain.VerificationKey, domain.Commitment, domain.DenialReason) {
	proof, err := domain.DecodeProof(input.Proof)
	if err != nil {
		return nil, nil, "", artifactReason(err)
	}
	key, err := domain.DecodeVerificationKey(input.VerificationKey)
	if err != nil {
		return nil, nil, "", artifactReason(err)
	}
	if !key.Compatible(proof) {
		return nil, nil, "", domain.ReasonArtifactMalformed
	}

	commitment, reason := resolveCommitment(input.Commitment, proof)
	if reason != "" {
		return nil, nil, "", reason
	}
	return proof, key, commitment, ""
}

// resolveCommitment returns the public input the proof is claimed to attest to. When the
// caller names none, a proof with exactly one public input attests to that input.
func resolveCommitment(claimed string, proof *domain.Proof) (domain.Commitment, domain.DenialReason) {
	if claimed == "" {
		if len(proof.Inputs) != 1 {
			return "", domain.ReasonArtifactMalformed
		}
		claimed = proof.Inputs[0]
	}
	commitment, err := domain.ParseCommitment(claimed)
	if err != nil {
		return "", domain.ReasonArtifactMalformed
	}
	return commitment, ""
}

func artifactReason(err error) domain.DenialReason {
	if errors.Is(err, domain.ErrArtifactMissing) {
		return domain.ReasonArtifactMissing
	}
	return domain.ReasonArtifactMalformed
}

// NewGateUseCase creates the authorization gate. consumedRepo may be nil, in which case
// a valid proof authorizes every time it is presented.
func NewGateUseCase(
	recordRepo RecordRepository,
	consumedRepo ConsumedProofRepository,
	proofService delegationService.ProofService,
	verifyTimeout time.Duration,
	logger *slog.Logger,
) GateUseCase {
	return &gateUseCase{
		recordRepo:    recordRepo,
		consumedRepo:  consumedRepo,
		proofService:  proofService,
		verifyTimeout: verifyTimeout,
		logger:        logger,
	}
}
