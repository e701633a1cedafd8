// Package testutil provides deterministic fakes for the model-facing
// interfaces so unit tests never touch a real API.
package testutil

import (
	"context"
	"sync"
)

// MockCompleter returns scripted responses in order and records every
// prompt it receives. When the script runs out, the last response (or
// error) repeats.
//
// Safe for concurrent use.
type MockCompleter struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	prompts   []string
}

// NewMockCompleter creates a completer that replies with the given
// responses in order.
func NewMockCompleter(responses ...string) *MockCompleter {
	return &MockCompleter{responses: responses}
}

// FailWith makes the next call (and any past the script's end) return
// err instead of a response.
func (m *MockCompleter) FailWith(err error) *MockCompleter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, err)
	return m
}

// Complete implements llm.Completer.
func (m *MockCompleter) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := len(m.prompts)
	m.prompts = append(m.prompts, prompt)

	if len(m.errs) > 0 {
		i := call
		if i >= len(m.errs) {
			i = len(m.errs) - 1
		}
		return "", m.errs[i]
	}
	if len(m.responses) == 0 {
		return "", nil
	}
	i := call
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	return m.responses[i], nil
}

// Prompts returns a copy of all recorded prompts.
func (m *MockCompleter) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]string, len(m.prompts))
	copy(cp, m.prompts)
	return cp
}

// CallCount reports how many times Complete was invoked.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}
