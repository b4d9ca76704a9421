package storage

import (
	"github.com/stretchr/testify/mock"
)

// MockGateway is a mock implementation of Gateway for testing.
// It uses testify/mock to allow test assertions on method calls.
type MockGateway struct {
	mock.Mock
}

// Get mocks reading a key.
func (m *MockGateway) Get(key string) (string, bool) {
	args := m.Called(key)
	return args.String(0), args.Bool(1)
}

// Set mocks writing a key.
func (m *MockGateway) Set(key, value string) error {
	args := m.Called(key, value)
	return args.Error(0)
}

// Delete mocks removing a key.
func (m *MockGateway) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

// Available mocks the availability probe.
func (m *MockGateway) Available() bool {
	args := m.Called()
	return args.Bool(0)
}

// NewMockGateway creates a new mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}
