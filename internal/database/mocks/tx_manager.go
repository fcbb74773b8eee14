// Package mocks provides mock implementations of the database package interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTxManager is a mock implementation of database.TxManager.
type MockTxManager struct {
	mock.Mock
}

// WithTx mocks the WithTx method. A return value of type
// func(context.Context, func(context.Context) error) error is invoked instead of returned,
// which lets tests run fn inside the mocked unit of work.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if rf, ok := args.Get(0).(func(context.Context, func(context.Context) error) error); ok {
		return rf(ctx, fn)
	}
	return args.Error(0)
}

// RunInTx makes every WithTx call execute fn directly.
func (m *MockTxManager) RunInTx() *mock.Call {
	return m.On("WithTx", mock.Anything, mock.Anything).
		Return(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})
}

// NewMockTxManager creates a MockTxManager whose expectations are asserted on test cleanup.
func NewMockTxManager(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTxManager {
	m := &MockTxManager{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
