package draft

import (
	"context"
	"sync"

	"github.com/akaliyev/sponso/internal/config"
	"github.com/akaliyev/sponso/internal/models"
)

// MockDrafter implements Drafter for testing. It returns a fixed draft or
// error and records the leads it was called with.
type MockDrafter struct {
	mu     sync.Mutex
	Result Draft
	Err    error
	calls  []uint
}

// Draft returns the configured result or error.
func (m *MockDrafter) Draft(_ context.Context, _ config.PitchConfig, lead *models.Lead) (Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, lead.ID)
	if m.Err != nil {
		return Draft{}, m.Err
	}
	return m.Result, nil
}

// CallCount returns how many times Draft was invoked.
func (m *MockDrafter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
