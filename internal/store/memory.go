package store

import (
	"context"
	"sync"

	"github.com/benmeehan/fog-agent/internal/models"
)

// MemoryStore keeps the encoded set in process memory. It goes through the
// same codec as the durable backends.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load decodes the last saved set.
func (m *MemoryStore) Load(_ context.Context) (models.ExplorationSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return models.ExplorationSet{}, nil
	}
	return Decode(m.data)
}

// Save replaces the stored set.
func (m *MemoryStore) Save(_ context.Context, set models.ExplorationSet) error {
	data, err := Encode(set)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

// SetRaw overwrites the stored bytes verbatim.
func (m *MemoryStore) SetRaw(data []byte) {
	m.mu.Lock()
	m.data = append([]byte(nil), data...)
	m.mu.Unlock()
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
