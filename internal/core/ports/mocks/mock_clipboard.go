package mocks

import "sync"

// MockClipboard is a mock implementation of the Clipboard interface for testing
type MockClipboard struct {
	mu       sync.Mutex
	contents string
	writes   int
	err      error
}

// NewMockClipboard creates a new mock clipboard
func NewMockClipboard() *MockClipboard {
	return &MockClipboard{}
}

// SetError makes subsequent writes fail with err
func (m *MockClipboard) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err
}

// WriteAll records text as the clipboard contents
func (m *MockClipboard) WriteAll(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.contents = text
	m.writes++
	return nil
}

// Contents returns the last written text
func (m *MockClipboard) Contents() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.contents
}

// Writes returns how many successful writes happened
func (m *MockClipboard) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.writes
}
