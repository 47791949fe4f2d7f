// Package uistate persists the expand/collapse state of form sections per
// browser client.
package uistate

import (
	"errors"
	"fmt"
	"sync"
)

// SectionState is the persisted state of one collapsible section.
type SectionState string

const (
	Expanded  SectionState = "expanded"
	Collapsed SectionState = "collapsed"
)

// ErrInvalidState is returned for anything other than Expanded or Collapsed.
var ErrInvalidState = errors.New("invalid section state")

// ParseSectionState validates a stored or submitted state.
func ParseSectionState(s string) (SectionState, error) {
	switch SectionState(s) {
	case Expanded, Collapsed:
		return SectionState(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidState, s)
}

// Store is a durable key-value store of section states. Scope separates
// browser clients.
type Store interface {
	// Get returns the stored state; ok is false when nothing was stored.
	Get(scope, section string) (state SectionState, ok bool, err error)
	Set(scope, section string, state SectionState) error
	// All returns every stored section of scope.
	All(scope string) (map[string]SectionState, error)
	Close() error
}

// MemoryStore keeps states for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	scopes map[string]map[string]SectionState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scopes: make(map[string]map[string]SectionState)}
}

func (m *MemoryStore) Get(scope, section string) (SectionState, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.scopes[scope][section]
	return st, ok, nil
}

func (m *MemoryStore) Set(scope, section string, state SectionState) error {
	if _, err := ParseSectionState(string(state)); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.scopes[scope] == nil {
		m.scopes[scope] = make(map[string]SectionState)
	}
	m.scopes[scope][section] = state
	return nil
}

func (m *MemoryStore) All(scope string) (map[string]SectionState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyScope(m.scopes[scope]), nil
}

func (m *MemoryStore) Close() error { return nil }

func copyScope(src map[string]SectionState) map[string]SectionState {
	out := make(map[string]SectionState, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
