package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryKV keeps documents in process memory. Used for tests and
// throwaway sessions.
type MemoryKV struct {
	mu    sync.Mutex
	items map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{items: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Put(ctx context.Context, key string, value []byte) error {
	return m.Batch(ctx, Set(key, value))
}

func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	return m.Batch(ctx, Remove(key))
}

// Batch applies all mutations under one lock.
func (m *MemoryKV) Batch(ctx context.Context, muts ...Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mut := range muts {
		if mut.Delete {
			delete(m.items, mut.Key)
			continue
		}
		m.items[mut.Key] = append([]byte(nil), mut.Value...)
	}
	return nil
}

func (m *MemoryKV) Keys(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryKV) Close() error { return nil }
