package limiter

import (
	"context"
	"sync"
	"time"
)

type attempt struct {
	fails        int
	last         time.Time
	blockedUntil time.Time
}

// Memory is an in-process limiter used with the memory store.
type Memory struct {
	mu     sync.Mutex
	policy Policy
	now    func() time.Time
	byKey  map[string]*attempt
}

// NewMemory constructs an in-memory limiter.
func NewMemory(p Policy) *Memory {
	return &Memory{policy: p, now: time.Now, byKey: make(map[string]*attempt)}
}

func key(email, ipHash string) string { return email + "|" + ipHash }

// Allow reports whether login is currently allowed and a retry-after duration.
func (m *Memory) Allow(_ context.Context, email, ipHash string) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byKey[key(email, ipHash)]
	if !ok {
		return true, 0, nil
	}
	if wait := a.blockedUntil.Sub(m.now()); wait > 0 {
		return false, wait, nil
	}
	return true, 0, nil
}

// Success forgets the pair.
func (m *Memory) Success(_ context.Context, email, ipHash string) error {
	m.mu.Lock()
	delete(m.byKey, key(email, ipHash))
	m.mu.Unlock()
	return nil
}

// Failure records a failed attempt and blocks the pair at the threshold.
// Pairs whose window and block have both lapsed are dropped on the way.
func (m *Memory) Failure(_ context.Context, email, ipHash string) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.prune(now)
	k := key(email, ipHash)
	a, ok := m.byKey[k]
	if !ok || now.Sub(a.last) > m.policy.Window {
		a = &attempt{}
		m.byKey[k] = a
	}
	a.fails++
	a.last = now
	if a.fails < m.policy.MaxFails {
		return false, 0, nil
	}
	a.blockedUntil = now.Add(m.policy.BlockFor)
	return true, m.policy.BlockFor, nil
}

func (m *Memory) prune(now time.Time) {
	for k, a := range m.byKey {
		if now.Sub(a.last) > m.policy.Window && !a.blockedUntil.After(now) {
			delete(m.byKey, k)
		}
	}
}
