package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/erp/marketsync/internal/domain/report"
	"github.com/erp/marketsync/internal/domain/shared"
)

// Ensure MemoryPayloadStore implements PayloadStore
var _ report.PayloadStore = (*MemoryPayloadStore)(nil)

type object struct {
	body        []byte
	contentType string
}

// MemoryPayloadStore keeps payloads in process memory. It is the default
// backend for development and tests.
type MemoryPayloadStore struct {
	mu      sync.RWMutex
	prefix  string
	objects map[string]object
}

// NewMemoryPayloadStore creates an empty store
func NewMemoryPayloadStore(prefix string) *MemoryPayloadStore {
	return &MemoryPayloadStore{
		prefix:  prefix,
		objects: make(map[string]object),
	}
}

// Put stores a copy of body
func (m *MemoryPayloadStore) Put(ctx context.Context, name string, body []byte, contentType string) (string, error) {
	key, err := ObjectKey(m.prefix, name)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; ok {
		return "", fmt.Errorf("%w: %s", ErrObjectExists, key)
	}
	m.objects[key] = object{body: append([]byte(nil), body...), contentType: contentType}
	return key, nil
}

// Get returns a copy of the stored body
func (m *MemoryPayloadStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return append([]byte(nil), obj.body...), nil
}

// ContentType returns the content type recorded for key
func (m *MemoryPayloadStore) ContentType(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects[key].contentType
}

// Len returns the number of stored objects
func (m *MemoryPayloadStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
