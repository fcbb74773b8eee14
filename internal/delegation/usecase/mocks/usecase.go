// Package mocks provides mock implementations of the delegation use cases for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/allisson/zkgate/internal/delegation/domain"
)

// MockIssuerUseCase is a mock implementation of IssuerUseCase.
type MockIssuerUseCase struct {
	mock.Mock
}

// Issue mocks the Issue method of IssuerUseCase.
func (m *MockIssuerUseCase) Issue(
	ctx context.Context,
	input *domain.IssueCredentialInput,
) (*domain.IssueCredentialOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IssueCredentialOutput), args.Error(1)
}

// Get mocks the Get method of IssuerUseCase.
func (m *MockIssuerUseCase) Get(
	ctx context.Context,
	commitment domain.Commitment,
) (*domain.DelegationRecord, error) {
	args := m.Called(ctx, commitment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DelegationRecord), args.Error(1)
}

// MockGateUseCase is a mock implementation of GateUseCase.
type MockGateUseCase struct {
	mock.Mock
}

// Authorize mocks the Authorize method of GateUseCase.
func (m *MockGateUseCase) Authorize(
	ctx context.Context,
	input *domain.AuthorizeInput,
) (*domain.AuthorizedAction, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthorizedAction), args.Error(1)
}

// MockExecuteUseCase is a mock implementation of ExecuteUseCase.
type MockExecuteUseCase struct {
	mock.Mock
}

// Execute mocks the Execute method of ExecuteUseCase.
func (m *MockExecuteUseCase) Execute(
	ctx context.Context,
	input *domain.ExecuteInput,
) (*domain.ExecuteOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExecuteOutput), args.Error(1)
}

// MockProveUseCase is a mock implementation of ProveUseCase.
type MockProveUseCase struct {
	mock.Mock
}

// Prove mocks the Prove method of ProveUseCase.
func (m *MockProveUseCase) Prove(ctx context.Context, commitment domain.Commitment) ([]byte, error) {
	args := m.Called(ctx, commitment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
