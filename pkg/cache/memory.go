package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// memoryService is an in-process Service used when Redis is not configured.
// Locks only exclude callers within the same process.
type memoryService struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryService() Service {
	return &memoryService{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *memoryService) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	entry, ok := m.lookup(key)
	m.mu.Unlock()
	if !ok {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

func (m *memoryService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	m.mu.Lock()
	m.entries[key] = memoryEntry{data: data, expiresAt: m.expiry(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *memoryService) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	m.mu.Unlock()
	return nil
}

func (m *memoryService) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	if err := m.Get(ctx, key, dest); err == nil {
		return nil
	}

	data, err := fetcher()
	if err != nil {
		return err
	}
	if err := m.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	return m.Get(ctx, key, dest)
}

func (m *memoryService) AcquireLock(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, held := m.lookup(key); held {
		return nil, ErrLockHeld
	}
	token := []byte(uuid.NewString())
	m.entries[key] = memoryEntry{data: token, expiresAt: m.expiry(ttl)}

	release := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if entry, ok := m.lookup(key); ok && bytes.Equal(entry.data, token) {
			delete(m.entries, key)
		}
	}
	return &Lock{key: key, release: release}, nil
}

func (m *memoryService) Ping(ctx context.Context) error {
	return nil
}

// lookup returns a live entry, dropping it when expired. Callers hold mu.
func (m *memoryService) lookup(key string) (memoryEntry, bool) {
	entry, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}

func (m *memoryService) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}
