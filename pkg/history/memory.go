package history

import (
	"context"
	"iter"
	"slices"
	"sync"
)

// Memory is an in-memory Store. It is safe for concurrent use and intended
// for tests and one-shot runs.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func (m *Memory) Put(_ context.Context, r *Record) error {
	if err := validate(r); err != nil {
		return err
	}
	m.mu.Lock()
	m.records[r.MessageID] = *r
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(_ context.Context, messageID string) (*Record, error) {
	m.mu.RLock()
	r, ok := m.records[messageID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *Memory) Delete(_ context.Context, messageID string) error {
	m.mu.Lock()
	delete(m.records, messageID)
	m.mu.Unlock()
	return nil
}

func (m *Memory) List(_ context.Context) iter.Seq2[*Record, error] {
	m.mu.RLock()
	snapshot := make([]Record, 0, len(m.records))
	for _, r := range m.records {
		snapshot = append(snapshot, r)
	}
	m.mu.RUnlock()

	slices.SortFunc(snapshot, func(a, b Record) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.MessageID < b.MessageID {
			return -1
		}
		if a.MessageID > b.MessageID {
			return 1
		}
		return 0
	})

	return func(yield func(*Record, error) bool) {
		for i := range snapshot {
			if !yield(&snapshot[i], nil) {
				return
			}
		}
	}
}

func (m *Memory) Close() error {
	return nil
}
