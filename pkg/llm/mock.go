package llm

import (
	"context"
	"sync"
)

// MockChatClient is a configurable mock for testing pipeline stages.
// Set CompleteFunc to control behavior; calls are recorded for verification.
type MockChatClient struct {
	// CompleteFunc is called when Complete is invoked. If nil, Complete
	// returns an empty string and nil error.
	CompleteFunc func(ctx context.Context, req Request) (string, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	mu    sync.Mutex
	calls []Request
}

// NewMockChatClient creates a new mock with sensible defaults.
func NewMockChatClient() *MockChatClient {
	return &MockChatClient{ModelName: "mock-model"}
}

// Complete implements ChatClient.
func (m *MockChatClient) Complete(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "", nil
}

// Model implements ChatClient.
func (m *MockChatClient) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

// Calls returns a copy of all recorded requests.
func (m *MockChatClient) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times Complete was invoked.
func (m *MockChatClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Reset clears recorded calls.
func (m *MockChatClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Ensure MockChatClient implements ChatClient at compile time.
var _ ChatClient = (*MockChatClient)(nil)
