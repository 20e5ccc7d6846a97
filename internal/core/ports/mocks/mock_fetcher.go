package mocks

import (
	"context"
	"fmt"
	"sync"

	"landkit/internal/core/domain"
)

// MockPayloadFetcher is a mock implementation of the PayloadFetcher interface for testing
type MockPayloadFetcher struct {
	mu       sync.Mutex
	payloads map[string]*domain.FeatureCollection
	errs     map[string]error
	calls    map[string]int
}

// NewMockPayloadFetcher creates a new mock fetcher
func NewMockPayloadFetcher() *MockPayloadFetcher {
	return &MockPayloadFetcher{
		payloads: make(map[string]*domain.FeatureCollection),
		errs:     make(map[string]error),
		calls:    make(map[string]int),
	}
}

// SetPayload registers the payload returned for a signed URL
func (m *MockPayloadFetcher) SetPayload(signedURL string, fc *domain.FeatureCollection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.payloads[signedURL] = fc
}

// SetError registers the error returned for a signed URL. A nil error
// clears a previously registered failure.
func (m *MockPayloadFetcher) SetError(signedURL string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(m.errs, signedURL)
		return
	}
	m.errs[signedURL] = err
}

// Calls returns how many times a signed URL has been fetched
func (m *MockPayloadFetcher) Calls(signedURL string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls[signedURL]
}

// FetchPayload returns the registered payload or error for the signed URL
func (m *MockPayloadFetcher) FetchPayload(ctx context.Context, signedURL string) (*domain.FeatureCollection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[signedURL]++

	if err, ok := m.errs[signedURL]; ok {
		return nil, err
	}
	if fc, ok := m.payloads[signedURL]; ok {
		return fc, nil
	}
	return nil, fmt.Errorf("no payload registered for %s", signedURL)
}
