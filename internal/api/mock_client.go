package api

import (
	"context"
	"sync"

	"github.com/gyanova/gyanova/internal/models"
)

// MockGenerator is a mock implementation of Generator for testing
type MockGenerator struct {
	// Mock return values
	Answer *models.Answer
	Err    error
	// Panic, when set, is raised from Generate
	Panic any

	mu sync.Mutex
	// Call recorders
	Calls      int
	LastAPIKey string
	LastPrompt string
}

var _ Generator = (*MockGenerator)(nil)

// Generate records the call and returns the configured values
func (m *MockGenerator) Generate(ctx context.Context, apiKey, prompt string) (*models.Answer, error) {
	m.mu.Lock()
	m.Calls++
	m.LastAPIKey = apiKey
	m.LastPrompt = prompt
	m.mu.Unlock()

	if m.Panic != nil {
		panic(m.Panic)
	}
	return m.Answer, m.Err
}

// CallCount returns the number of Generate calls
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}
