package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/verdant/pkg/domain"
	"github.com/aretw0/verdant/pkg/ports"
)

var errNoEnricher = errors.New("no enrichment client configured")

// Repository implements ports.PlantRepository in memory.
// Safe for concurrent use.
type Repository struct {
	mu       sync.RWMutex
	plants   []domain.Plant
	enricher ports.Enricher
	newID    func() string
}

// Option configures the Repository.
type Option func(*Repository)

// WithPlants replaces the default seed list.
func WithPlants(plants ...domain.Plant) Option {
	return func(r *Repository) {
		r.plants = append([]domain.Plant{}, plants...)
	}
}

// WithEnricher sets the client used by Enrich.
func WithEnricher(e ports.Enricher) Option {
	return func(r *Repository) {
		r.enricher = e
	}
}

// WithIDGenerator overrides domain.NewID, mainly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(r *Repository) {
		r.newID = fn
	}
}

// NewRepository creates an in-memory repository seeded with domain.DefaultPlants.
func NewRepository(opts ...Option) *Repository {
	r := &Repository{
		plants: domain.DefaultPlants(),
		newID:  domain.NewID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List returns a copy of the plants.
func (r *Repository) List(ctx context.Context) ([]domain.Plant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Plant{}, r.plants...), nil
}

// Create appends a new plant with a generated id.
func (r *Repository) Create(ctx context.Context, in domain.PlantInput) (domain.Plant, error) {
	if err := in.Validate(); err != nil {
		return domain.Plant{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newID()
	for domain.IndexOf(r.plants, id) >= 0 {
		id = r.newID()
	}
	plant := in.WithID(id)
	r.plants = append(r.plants, plant)
	return plant, nil
}

// Update replaces the plant with the given id.
func (r *Repository) Update(ctx context.Context, id string, plant domain.Plant) (domain.Plant, error) {
	if err := plant.Validate(); err != nil {
		return domain.Plant{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := domain.IndexOf(r.plants, id)
	if i < 0 {
		return domain.Plant{}, domain.NotFound(id)
	}
	plant.ID = id
	r.plants[i] = plant
	return plant, nil
}

// Delete removes the plant with the given id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := domain.IndexOf(r.plants, id)
	if i < 0 {
		return domain.NotFound(id)
	}
	r.plants = append(r.plants[:i], r.plants[i+1:]...)
	return nil
}

// Enrich asks the configured enricher about the plant's type.
func (r *Repository) Enrich(ctx context.Context, id string) (string, error) {
	r.mu.RLock()
	i := domain.IndexOf(r.plants, id)
	var plant domain.Plant
	if i >= 0 {
		plant = r.plants[i]
	}
	r.mu.RUnlock()

	if i < 0 {
		return "", domain.NotFound(id)
	}
	if r.enricher == nil {
		return "", &domain.UpstreamError{Op: "enrich", Err: errNoEnricher}
	}
	// The lock is released: enrichment calls can be slow.
	return r.enricher.SuggestWateringDays(ctx, plant.Type)
}
