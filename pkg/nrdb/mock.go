package nrdb

import (
	"context"

	"github.com/abrezinsky/aesops/internal/models"
)

// MockClient is a mock NetrunnerDB client for testing
type MockClient struct {
	identities []models.Identity
	baseURL    string
	fetchErr   error
	calls      int
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithIdentities sets the identities to return
func WithIdentities(ids []models.Identity) MockOption {
	return func(m *MockClient) {
		m.identities = ids
	}
}

// WithFetchError sets an error to return from FetchIdentities
func WithFetchError(err error) MockOption {
	return func(m *MockClient) {
		m.fetchErr = err
	}
}

// NewMockClient creates a new mock client with the given options
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{baseURL: "http://mock-nrdb.local"}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FetchIdentities returns the configured identities or error
func (m *MockClient) FetchIdentities(ctx context.Context) ([]models.Identity, error) {
	m.calls++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return clone(m.identities), nil
}

// BaseURL returns the mock base URL
func (m *MockClient) BaseURL() string {
	return m.baseURL
}

// Calls reports how many times FetchIdentities ran
func (m *MockClient) Calls() int {
	return m.calls
}

var _ Client = (*MockClient)(nil)
var _ Client = (*HTTPClient)(nil)
