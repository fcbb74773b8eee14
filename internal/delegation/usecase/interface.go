// Package usecase implements credential issuance, the authorization gate and action
// execution for capability delegation.
package usecase

import (
	"context"

	"github.com/allisson/zkgate/internal/delegation/domain"
)

// RecordRepository is the credential store: a mapping from commitment to delegation record.
// Implementations must support transaction-aware operations via context propagation.
type RecordRepository interface {
	// Upsert stores record under record.Commitment, replacing any previous record.
	// Returns domain.ErrStoreWrite if the write is not durably completed.
	Upsert(ctx context.Context, record *domain.DelegationRecord) error

	// Get retrieves the record for a commitment. Returns domain.ErrRecordNotFound if absent
	// and domain.ErrStoreRead if the store cannot be read.
	Get(ctx context.Context, commitment domain.Commitment) (*domain.DelegationRecord, error)
}

// ConsumedProofRepository records spent proof fingerprints for replay protection.
type ConsumedProofRepository interface {
	// Consume atomically marks the fingerprint as spent.
	// Returns domain.ErrProofConsumed if it was already spent.
	Consume(ctx context.Context, consumed *domain.ConsumedProof) error
}

// IssuerUseCase creates delegation records bound to the commitment of a secret.
type IssuerUseCase interface {
	// Issue derives the commitment of the secret, stores the secret in the vault and
	// upserts the record. When no secret is supplied one is generated and returned once
	// in the output.
	Issue(ctx context.Context, input *domain.IssueCredentialInput) (*domain.IssueCredentialOutput, error)

	// Get returns the record stored for a commitment.
	Get(ctx context.Context, commitment domain.Commitment) (*domain.DelegationRecord, error)
}

// GateUseCase is the authorization gate.
type GateUseCase interface {
	// Authorize returns the authorized action for a valid proof of a registered commitment.
	// Every denial is a *domain.DenialError; any other error means the gate could not decide.
	Authorize(ctx context.Context, input *domain.AuthorizeInput) (*domain.AuthorizedAction, error)
}

// ExecuteUseCase authorizes an attempt and then runs the permitted action exactly once.
type ExecuteUseCase interface {
	Execute(ctx context.Context, input *domain.ExecuteInput) (*domain.ExecuteOutput, error)
}

// ProveUseCase generates and publishes proof artifacts on behalf of a secret holder.
type ProveUseCase interface {
	// Prove loads the secret held for commitment, produces a proof and stores the proof
	// and verification key in the artifact store. It returns the proof artifact.
	Prove(ctx context.Context, commitment domain.Commitment) ([]byte, error)
}
