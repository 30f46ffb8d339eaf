package ports

import (
	"context"

	"github.com/aretw0/verdant/pkg/domain"
)

// PlantRepository defines the persistence adapter for the plant collection.
// Implementations assign ids on Create and must be safe for concurrent use.
type PlantRepository interface {
	// List returns every plant in insertion order.
	List(ctx context.Context) ([]domain.Plant, error)

	// Create stores a new plant and returns it with its assigned id.
	Create(ctx context.Context, in domain.PlantInput) (domain.Plant, error)

	// Update replaces the plant with the given id.
	// Returns domain.ErrNotFound if the plant does not exist.
	Update(ctx context.Context, id string, plant domain.Plant) (domain.Plant, error)

	// Delete removes the plant with the given id.
	// Returns domain.ErrNotFound if the plant does not exist.
	Delete(ctx context.Context, id string) error

	// Enrich asks the enrichment client about the plant's type and returns the raw answer.
	// Returns domain.ErrNotFound if the plant does not exist, or a *domain.UpstreamError.
	Enrich(ctx context.Context, id string) (string, error)
}
