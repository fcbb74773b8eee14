package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/zkgate/internal/delegation/domain"
	delegationService "github.com/allisson/zkgate/internal/delegation/service"
)

func TestProveUseCase_Prove(t *testing.T) {
	ctx := context.Background()
	commitments := delegationService.NewCommitmentService()
	commitment, err := commitments.Commit(domain.SecretCredential("42"))
	require.NoError(t, err)
	proofKey := delegationService.ArtifactKey(commitment, delegationService.ProofArtifactName)
	keyKey := delegationService.ArtifactKey(commitment, delegationService.VerificationKeyArtifactName)

	t.Run("Success_PublishesProofAndKey", func(t *testing.T) {
		vault := &mockSecretVault{}
		keyProvider := &mockKeyProvider{}
		artifacts := &mockArtifactStore{}
		secret := domain.SecretCredential("42")

		vault.On("Load", ctx, commitment).Return(secret, nil).Once()
		keyProvider.On("ReadVerificationKey").Return([]byte(stubKey), nil).Once()
		artifacts.On("Put", mock.Anything, proofKey, mock.Anything).Return(nil).Once()
		artifacts.On("Put", mock.Anything, keyKey, []byte(stubKey)).Return(nil).Once()

		useCase := NewProveUseCase(vault, newStubProofService(), keyProvider, artifacts, time.Second, discardLogger())
		raw, err := useCase.Prove(ctx, commitment)

		require.NoError(t, err)
		proof, err := domain.DecodeProof(raw)
		require.NoError(t, err)
		assert.True(t, proof.HasInput(commitment))
		assert.Equal(t, make([]byte, len(secret)), []byte(secret), "secret must be zeroed after proving")
		vault.AssertExpectations(t)
		keyProvider.AssertExpectations(t)
		artifacts.AssertExpectations(t)
	})

	t.Run("Success_ProofVerifiesAtGate", func(t *testing.T) {
		vault := &mockSecretVault{}
		artifacts := &mockArtifactStore{}
		prover := newStubProofService()

		vault.On("Load", ctx, commitment).Return(domain.SecretCredential("42"), nil).Once()
		artifacts.On("Put", mock.Anything, proofKey, mock.Anything).Return(nil).Once()

		useCase := NewProveUseCase(vault, prover, nil, artifacts, 0, discardLogger())
		raw, err := useCase.Prove(ctx, commitment)
		require.NoError(t, err)

		recordRepo := &mockRecordRepository{}
		recordRepo.On("Get", mock.Anything, commitment).
			Return(&domain.DelegationRecord{Commitment: commitment, Action: domain.ActionPostMessage}, nil).
			Once()
		gate := NewGateUseCase(recordRepo, nil, prover, time.Second, discardLogger())
		authorized, err := gate.Authorize(ctx, &domain.AuthorizeInput{
			Proof:           raw,
			VerificationKey: []byte(stubKey),
			Commitment:      commitment.String(),
		})

		require.NoError(t, err)
		assert.Equal(t, commitment, authorized.Commitment)
		artifacts.AssertNotCalled(t, "Put", mock.Anything, keyKey, mock.Anything)
	})

	t.Run("Error_SecretNotFound", func(t *testing.T) {
		vault := &mockSecretVault{}
		proofService := &mockProofService{}
		artifacts := &mockArtifactStore{}

		vault.On("Load", ctx, commitment).Return(nil, domain.ErrSecretNotFound).Once()

		useCase := NewProveUseCase(vault, proofService, nil, artifacts, time.Second, discardLogger())
		raw, err := useCase.Prove(ctx, commitment)

		assert.Nil(t, raw)
		assert.ErrorIs(t, err, domain.ErrSecretNotFound)
		proofService.AssertNotCalled(t, "Prove", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_ProverFails", func(t *testing.T) {
		vault := &mockSecretVault{}
		proofService := &mockProofService{}
		artifacts := &mockArtifactStore{}
		secret := domain.SecretCredential("42")
		proveErr := errors.New("zokrates compute-witness failed")

		vault.On("Load", ctx, commitment).Return(secret, nil).Once()
		proofService.On("Prove", mock.Anything, mock.Anything, commitment).Return(nil, proveErr).Once()

		useCase := NewProveUseCase(vault, proofService, nil, artifacts, time.Second, discardLogger())
		_, err := useCase.Prove(ctx, commitment)

		assert.ErrorIs(t, err, proveErr)
		assert.True(t, bytes.Equal(make([]byte, len(secret)), secret))
		artifacts.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_ArtifactWrite", func(t *testing.T) {
		vault := &mockSecretVault{}
		artifacts := &mockArtifactStore{}
		putErr := errors.New("bucket is read-only")

		vault.On("Load", ctx, commitment).Return(domain.SecretCredential("42"), nil).Once()
		artifacts.On("Put", mock.Anything, proofKey, mock.Anything).Return(putErr).Once()

		useCase := NewProveUseCase(vault, newStubProofService(), nil, artifacts, time.Second, discardLogger())
		_, err := useCase.Prove(ctx, commitment)

		assert.ErrorIs(t, err, putErr)
	})

	t.Run("Error_VerificationKeyUnreadable", func(t *testing.T) {
		vault := &mockSecretVault{}
		keyProvider := &mockKeyProvider{}
		artifacts := &mockArtifactStore{}
		readErr := errors.New("verification.key: no such file")

		vault.On("Load", ctx, commitment).Return(domain.SecretCredential("42"), nil).Once()
		artifacts.On("Put", mock.Anything, proofKey, mock.Anything).Return(nil).Once()
		keyProvider.On("ReadVerificationKey").Return(nil, readErr).Once()

		useCase := NewProveUseCase(vault, newStubProofService(), keyProvider, artifacts, time.Second, discardLogger())
		_, err := useCase.Prove(ctx, commitment)

		assert.ErrorIs(t, err, readErr)
		artifacts.AssertNotCalled(t, "Put", mock.Anything, keyKey, mock.Anything)
	})
}
