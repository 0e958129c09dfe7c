package cache

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Memory is the in-process volatile tier. It is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemory creates an empty memory tier. A nil clock uses the real clock.
func NewMemory(clock clockwork.Clock) *Memory {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Memory{clock: clock, entries: make(map[string]memoryEntry)}
}

// Get returns the value for key. An entry observed at or after its expiry
// is removed and reported absent.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if m.expired(e, m.clock.Now()) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return bytes.Clone(e.data), true, nil
}

// Set stores data until now+ttl and sweeps every expired entry.
func (m *Memory) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	m.entries[key] = memoryEntry{
		data:      append([]byte(nil), data...),
		expiresAt: now.Add(ttl),
	}
	for k, e := range m.entries {
		if m.expired(e, now) {
			delete(m.entries, k)
		}
	}
	return nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Close drops all entries.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.entries)
	return nil
}

// Len returns the number of stored entries, including expired entries not
// yet swept.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) expired(e memoryEntry, now time.Time) bool {
	return !now.Before(e.expiresAt)
}

var _ Cache = (*Memory)(nil)
