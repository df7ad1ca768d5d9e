package lease

import (
	"context"
	"sync"
	"time"

	"github.com/erp/marketsync/internal/domain/report"
)

// MemoryLeaser grants leases within a single process
type MemoryLeaser struct {
	mu      sync.Mutex
	held    map[string]holder
	nowFunc func() time.Time
}

type holder struct {
	token     uint64
	expiresAt time.Time
}

// NewMemoryLeaser creates an empty in-process leaser
func NewMemoryLeaser() *MemoryLeaser {
	return &MemoryLeaser{
		held:    make(map[string]holder),
		nowFunc: time.Now,
	}
}

var tokens struct {
	sync.Mutex
	next uint64
}

func nextToken() uint64 {
	tokens.Lock()
	defer tokens.Unlock()
	tokens.next++
	return tokens.next
}

// Acquire takes the lease unless an unexpired holder exists
func (m *MemoryLeaser) Acquire(ctx context.Context, key string, ttl time.Duration) (report.Lease, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFunc()
	if h, ok := m.held[key]; ok && now.Before(h.expiresAt) {
		return nil, report.ErrAlreadyRunning
	}
	h := holder{token: nextToken(), expiresAt: now.Add(ttl)}
	m.held[key] = h
	return &memoryLease{owner: m, key: key, token: h.token}, nil
}

// Held reports whether an unexpired lease exists for key
func (m *MemoryLeaser) Held(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.held[key]
	return ok && m.nowFunc().Before(h.expiresAt)
}

type memoryLease struct {
	owner *MemoryLeaser
	key   string
	token uint64
}

// Release frees the lease if this holder still owns it
func (l *memoryLease) Release(context.Context) error {
	l.owner.mu.Lock()
	defer l.owner.mu.Unlock()
	if h, ok := l.owner.held[l.key]; ok && h.token == l.token {
		delete(l.owner.held, l.key)
	}
	return nil
}

var _ report.Leaser = (*MemoryLeaser)(nil)
