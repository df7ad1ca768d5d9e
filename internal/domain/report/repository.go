package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Filter narrows report searches
type Filter struct {
	Type         Type
	SellerID     uuid.UUID
	States       []State
	WithReportID bool
}

// Repository defines persistence for reports
type Repository interface {
	// FindByID finds a report by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Report, error)

	// Find lists reports matching the filter, oldest first
	Find(ctx context.Context, f Filter) ([]Report, error)

	// ExistsByRemoteID checks for a report of the type carrying either remote id
	ExistsByRemoteID(ctx context.Context, t Type, requestID, reportID string) (bool, error)

	// NextSequence allocates the next name sequence for the type
	NextSequence(ctx context.Context, t Type) (int64, error)

	// Save creates or updates a report with optimistic locking
	Save(ctx context.Context, r *Report) error

	// Delete removes a report and its audit log
	Delete(ctx context.Context, id uuid.UUID) error
}

// PayloadStore keeps fetched bodies and derived attachments
type PayloadStore interface {
	// Put stores body under a key derived from name and returns the key.
	// Storing under an existing key is rejected.
	Put(ctx context.Context, name string, body []byte, contentType string) (string, error)
	// Get loads a stored body
	Get(ctx context.Context, key string) ([]byte, error)
}

// Lease is a held mutual-exclusion lock
type Lease interface {
	Release(ctx context.Context) error
}

// Leaser grants leases; Acquire fails with ErrAlreadyRunning when held elsewhere
type Leaser interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// LeaseKey scopes reconciliation leases to a report type and seller
func LeaseKey(t Type, sellerID uuid.UUID) string {
	return fmt.Sprintf("marketsync:lease:%s:%s", t, sellerID)
}
