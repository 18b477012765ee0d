package testutil

import (
	"context"
	"sync"
)

// MockResolver implements ports.NSResolver with a fixed answer table.
// Names missing from NS resolve with Err, or with no nameservers when Err is nil.
type MockResolver struct {
	mu    sync.Mutex
	NS    map[string][]string
	Fail  map[string]error
	Err   error
	Calls []string
}

func (m *MockResolver) LookupNS(_ context.Context, name string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, name)
	if err, ok := m.Fail[name]; ok {
		return nil, err
	}
	if ns, ok := m.NS[name]; ok {
		return ns, nil
	}
	return nil, m.Err
}

// CallCount returns the number of lookups performed so far.
func (m *MockResolver) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockDelegationChecker implements ports.DelegationChecker.
type MockDelegationChecker struct {
	Delegated bool
	Err       error
}

func (m *MockDelegationChecker) IsDelegated(_ context.Context, _ string) (bool, error) {
	return m.Delegated, m.Err
}

// MockLocker implements ports.NameLocker and records the keys it was asked for.
type MockLocker struct {
	mu      sync.Mutex
	Keys    []string
	LockErr error
	PingErr error
}

func (m *MockLocker) Lock(_ context.Context, key string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LockErr != nil {
		return nil, m.LockErr
	}
	m.Keys = append(m.Keys, key)
	return func() {}, nil
}

func (m *MockLocker) Ping(_ context.Context) error {
	return m.PingErr
}
