package service

import (
	"fmt"
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"

	"github.com/allisson/zkgate/internal/delegation/domain"
)

type poseidonCommitmentService struct{}

// NewCommitmentService returns a CommitmentService computing Poseidon(secret) over the
// BN254 scalar field, the hash the poseidon_hash_check circuit asserts.
func NewCommitmentService() CommitmentService {
	return &poseidonCommitmentService{}
}

// Commit derives the commitment of secret. Empty secrets and secrets outside the
// scalar field are rejected.
func (s *poseidonCommitmentService) Commit(secret domain.SecretCredential) (domain.Commitment, error) {
	value, err := secret.FieldElement()
	if err != nil {
		return "", err
	}

	hash, err := poseidon.Hash([]*big.Int{value})
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}

	return domain.NewCommitment(hash.FillBytes(make([]byte, domain.CommitmentSize)))
}
