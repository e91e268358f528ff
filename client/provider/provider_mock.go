package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/cityofzion/neon-go/packages/ledgerstate"
)

// MockProvider is the mock for Provider that is used for unit tests.
type MockProvider struct {
	mock.Mock
	name string
}

// NewMockProvider creates a mock that reports the given name.
func NewMockProvider(t *testing.T, name string) *MockProvider {
	m := &MockProvider{
		name: name,
	}
	m.Test(t)

	return m
}

// Name returns the name of the mock.
func (m *MockProvider) Name() string {
	return m.name
}

// GetBalance returns the mocked Balance.
func (m *MockProvider) GetBalance(ctx context.Context, net, address string) (*ledgerstate.Balance, error) {
	args := m.Called(ctx, net, address)
	balance, _ := args.Get(0).(*ledgerstate.Balance)

	return balance, args.Error(1)
}

// GetClaims returns the mocked Claims.
func (m *MockProvider) GetClaims(ctx context.Context, net, address string) (*ledgerstate.Claims, error) {
	args := m.Called(ctx, net, address)
	claims, _ := args.Get(0).(*ledgerstate.Claims)

	return claims, args.Error(1)
}

// GetRPCEndpoint returns the mocked endpoint.
func (m *MockProvider) GetRPCEndpoint(ctx context.Context, net string) (string, error) {
	args := m.Called(ctx, net)

	return args.String(0), args.Error(1)
}

var _ Provider = &MockProvider{}
