package seller

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for sellers and their instances
type Repository interface {
	// FindByID loads a seller with marketplaces and instances
	FindByID(ctx context.Context, id uuid.UUID) (*Seller, error)

	// FindActive lists every active seller
	FindActive(ctx context.Context) ([]Seller, error)

	// Save creates or updates the seller header and sync stamps
	Save(ctx context.Context, s *Seller) error
}
