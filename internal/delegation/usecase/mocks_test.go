package usecase

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/zkgate/internal/delegation/domain"
	delegationService "github.com/allisson/zkgate/internal/delegation/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockRecordRepository is a mock implementation of RecordRepository for testing.
type mockRecordRepository struct {
	mock.Mock
}

func (m *mockRecordRepository) Upsert(ctx context.Context, record *domain.DelegationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockRecordRepository) Get(
	ctx context.Context,
	commitment domain.Commitment,
) (*domain.DelegationRecord, error) {
	args := m.Called(ctx, commitment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DelegationRecord), args.Error(1)
}

// mockConsumedProofRepository is a mock implementation of ConsumedProofRepository for testing.
type mockConsumedProofRepository struct {
	mock.Mock
}

func (m *mockConsumedProofRepository) Consume(ctx context.Context, consumed *domain.ConsumedProof) error {
	args := m.Called(ctx, consumed)
	return args.Error(0)
}

// mockProofService is a mock implementation of ProofService for testing.
type mockProofService struct {
	mock.Mock
}

func (m *mockProofService) Prove(
	ctx context.Context,
	secret domain.SecretCredential,
	commitment domain.Commitment,
) (*domain.Proof, error) {
	args := m.Called(ctx, secret, commitment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Proof), args.Error(1)
}

func (m *mockProofService) Verify(
	ctx context.Context,
	proof *domain.Proof,
	key *domain.VerificationKey,
	commitment domain.Commitment,
) (bool, error) {
	args := m.Called(ctx, proof, key, commitment)
	return args.Bool(0), args.Error(1)
}

// mockCommitmentService is a mock implementation of CommitmentService for testing.
type mockCommitmentService struct {
	mock.Mock
}

func (m *mockCommitmentService) Commit(secret domain.SecretCredential) (domain.Commitment, error) {
	args := m.Called(secret)
	return args.Get(0).(domain.Commitment), args.Error(1)
}

// mockSecretVault is a mock implementation of SecretVault for testing.
type mockSecretVault struct {
	mock.Mock
}

func (m *mockSecretVault) Save(ctx context.Context, commitment domain.Commitment, secret domain.SecretCredential) error {
	args := m.Called(ctx, commitment, secret)
	return args.Error(0)
}

func (m *mockSecretVault) Load(ctx context.Context, commitment domain.Commitment) (domain.SecretCredential, error) {
	args := m.Called(ctx, commitment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.SecretCredential), args.Error(1)
}

func (m *mockSecretVault) Close() error {
	return m.Called().Error(0)
}

// mockArtifactStore is a mock implementation of ArtifactStore for testing.
type mockArtifactStore struct {
	mock.Mock
}

func (m *mockArtifactStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockArtifactStore) Put(ctx context.Context, key string, data []byte) error {
	args := m.Called(ctx, key, data)
	return args.Error(0)
}

func (m *mockArtifactStore) Close() error {
	return m.Called().Error(0)
}

// mockKeyProvider is a mock implementation of VerificationKeyProvider for testing.
type mockKeyProvider struct {
	mock.Mock
}

func (m *mockKeyProvider) ReadVerificationKey() ([]byte, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// mockDispatcher is a mock implementation of dispatch.Dispatcher for testing.
type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Execute(
	ctx context.Context,
	record *domain.DelegationRecord,
	payload domain.ActionPayload,
) (*domain.ActionOutcome, error) {
	args := m.Called(ctx, record, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ActionOutcome), args.Error(1)
}

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordDenial(ctx context.Context, reason string) {
	m.Called(ctx, reason)
}

func (m *mockBusinessMetrics) RecordDispatch(ctx context.Context, status string) {
	m.Called(ctx, status)
}

// stubProofService is a deterministic stand-in for the proving toolchain. A stub proof
// carries the commitment of the secret it was produced from; Verify accepts it exactly
// when that commitment equals the claimed public input.
type stubProofService struct {
	commitments delegationService.CommitmentService
}

type stubProofBody struct {
	Witness domain.Commitment `json:"witness"`
}

const stubKey = `{"scheme":"stub","curve":"test"}`

func newStubProofService() *stubProofService {
	return &stubProofService{commitments: delegationService.NewCommitmentService()}
}

func (s *stubProofService) Prove(
	_ context.Context,
	secret domain.SecretCredential,
	commitment domain.Commitment,
) (*domain.Proof, error) {
	witness, err := s.commitments.Commit(secret)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(stubProofBody{Witness: witness})
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(map[string]any{
		"scheme": "stub",
		"curve":  "test",
		"proof":  json.RawMessage(body),
		"inputs": []string{commitment.String()},
	})
	if err != nil {
		return nil, err
	}
	return domain.DecodeProof(raw)
}

func (s *stubProofService) Verify(
	_ context.Context,
	proof *domain.Proof,
	_ *domain.VerificationKey,
	commitment domain.Commitment,
) (bool, error) {
	var body stubProofBody
	if err := json.Unmarshal(proof.Body, &body); err != nil {
		return false, nil
	}
	return proof.HasInput(commitment) && body.Witness == commitment, nil
}
