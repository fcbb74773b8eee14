// Package service provides the technical collaborators of the delegation use cases:
// commitment derivation, the proof toolchain binding, and storage for secrets and
// proof artifacts.
package service

import (
	"context"

	"github.com/allisson/zkgate/internal/delegation/domain"
)

// CommitmentService derives the public commitment of a secret.
// Implementations must be deterministic, one-way and collision resistant.
type CommitmentService interface {
	Commit(secret domain.SecretCredential) (domain.Commitment, error)
}

// ProofService is the boundary to the zero-knowledge toolchain. The gate treats the
// boolean returned by Verify as authoritative and performs no cryptography itself.
type ProofService interface {
	// Prove produces a proof that the caller knows secret with Commit(secret) == commitment.
	Prove(ctx context.Context, secret domain.SecretCredential, commitment domain.Commitment) (*domain.Proof, error)

	// Verify checks proof against key for the public input commitment.
	// A non-nil error means no decision could be reached.
	Verify(
		ctx context.Context,
		proof *domain.Proof,
		key *domain.VerificationKey,
		commitment domain.Commitment,
	) (bool, error)
}

// SecretVault keeps issued secrets in an access-restricted location so the
// proving party can retrieve them later.
type SecretVault interface {
	Save(ctx context.Context, commitment domain.Commitment, secret domain.SecretCredential) error
	Load(ctx context.Context, commitment domain.Commitment) (domain.SecretCredential, error)
	Close() error
}

// ArtifactStore exchanges proof and verification key blobs between the proving
// and verifying parties.
type ArtifactStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}

// VerificationKeyProvider exposes the verification key matching the proving key
// a ProofService proves with.
type VerificationKeyProvider interface {
	ReadVerificationKey() ([]byte, error)
}
