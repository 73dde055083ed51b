package store

import (
	"context"
	"sync"

	"fjacquet/budget-analytics/internal/models"
)

// MockRuleSource is an in-memory RuleSource for tests.
type MockRuleSource struct {
	mu    sync.Mutex
	Rules []models.Rule
	Err   error
	Calls int
}

// ListRules returns a copy of the configured rules, or Err.
func (m *MockRuleSource) ListRules(_ context.Context) ([]models.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]models.Rule, len(m.Rules))
	copy(result, m.Rules)
	return result, nil
}

// CallCount returns how many times ListRules was invoked.
func (m *MockRuleSource) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}
