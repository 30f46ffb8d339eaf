// Package persisted provides a durable ports.PlantRepository on top of any
// ports.Storage backend (memory, file, redis, sqlite).
//
// The whole collection lives in one record under a single key. Saving merges with
// what is already stored instead of overwriting it. Reads fall back to the default
// seed list when the record is missing or unreadable, but a write whose storage
// read fails is abandoned.
package persisted

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/verdant/internal/logging"
	"github.com/aretw0/verdant/pkg/domain"
	"github.com/aretw0/verdant/pkg/ports"
)

// DefaultKey is the storage key used when none is configured.
const DefaultKey = "root"

// lockTTL bounds how long a crashed writer can hold the distributed lock.
const lockTTL = 10 * time.Second

var errNoEnricher = errors.New("no enrichment client configured")

// Repository implements ports.PlantRepository over a ports.Storage.
type Repository struct {
	storage  ports.Storage
	key      string
	enricher ports.Enricher
	logger   *slog.Logger
	newID    func() string
	locker   ports.Locker

	mu sync.Mutex // serializes read-modify-write cycles
}

// Option configures the Repository.
type Option func(*Repository)

// WithKey sets the storage key of the record.
func WithKey(key string) Option {
	return func(r *Repository) {
		if key != "" {
			r.key = key
		}
	}
}

// WithEnricher sets the client used by Enrich.
func WithEnricher(e ports.Enricher) Option {
	return func(r *Repository) {
		r.enricher = e
	}
}

// WithLogger configures a logger for degraded reads.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// WithLocker adds a distributed lock around writes, for storages shared by several processes.
func WithLocker(l ports.Locker) Option {
	return func(r *Repository) {
		r.locker = l
	}
}

// WithIDGenerator overrides domain.NewID, mainly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(r *Repository) {
		r.newID = fn
	}
}

// New creates a repository persisting into storage.
func New(storage ports.Storage, opts ...Option) *Repository {
	r := &Repository{
		storage: storage,
		key:     DefaultKey,
		logger:  logging.NewNop(),
		newID:   domain.NewID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List returns the persisted plants, or the default seed list if nothing readable is stored.
func (r *Repository) List(ctx context.Context) ([]domain.Plant, error) {
	return r.load(ctx), nil
}

// Save merges candidates into the persisted list and writes the result.
func (r *Repository) Save(ctx context.Context, candidates []domain.Plant) ([]domain.Plant, error) {
	unlock, err := r.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	stored, err := r.current(ctx)
	if err != nil {
		return nil, err
	}
	merged := Merge(stored, candidates)
	if err := r.write(ctx, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Create appends a new plant with a generated id.
func (r *Repository) Create(ctx context.Context, in domain.PlantInput) (domain.Plant, error) {
	if err := in.Validate(); err != nil {
		return domain.Plant{}, err
	}

	unlock, err := r.lock(ctx)
	if err != nil {
		return domain.Plant{}, err
	}
	defer unlock()

	current, err := r.current(ctx)
	if err != nil {
		return domain.Plant{}, err
	}
	id := r.newID()
	for domain.IndexOf(current, id) >= 0 {
		id = r.newID()
	}
	plant := in.WithID(id)

	if err := r.write(ctx, Merge(current, []domain.Plant{plant})); err != nil {
		return domain.Plant{}, err
	}
	return plant, nil
}

// Update replaces the plant with the given id.
func (r *Repository) Update(ctx context.Context, id string, plant domain.Plant) (domain.Plant, error) {
	if err := plant.Validate(); err != nil {
		return domain.Plant{}, err
	}

	unlock, err := r.lock(ctx)
	if err != nil {
		return domain.Plant{}, err
	}
	defer unlock()

	current, err := r.current(ctx)
	if err != nil {
		return domain.Plant{}, err
	}
	i := domain.IndexOf(current, id)
	if i < 0 {
		return domain.Plant{}, domain.NotFound(id)
	}
	plant.ID = id
	current[i] = plant

	if err := r.write(ctx, current); err != nil {
		return domain.Plant{}, err
	}
	return plant, nil
}

// Delete removes the plant with the given id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	unlock, err := r.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	current, err := r.current(ctx)
	if err != nil {
		return err
	}
	i := domain.IndexOf(current, id)
	if i < 0 {
		return domain.NotFound(id)
	}
	return r.write(ctx, append(current[:i], current[i+1:]...))
}

// Enrich asks the configured enricher about the plant's type.
func (r *Repository) Enrich(ctx context.Context, id string) (string, error) {
	plant, ok := findPlant(r.load(ctx), id)
	if !ok {
		return "", domain.NotFound(id)
	}
	if r.enricher == nil {
		return "", &domain.UpstreamError{Op: "enrich", Err: errNoEnricher}
	}
	return r.enricher.SuggestWateringDays(ctx, plant.Type)
}

// Reset removes the persisted record; the next read returns the seed list.
func (r *Repository) Reset(ctx context.Context) error {
	unlock, err := r.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	if err := r.storage.RemoveItem(ctx, r.key); err != nil {
		return &domain.PersistenceError{Op: "reset", Err: err}
	}
	return nil
}

// lock takes the process-local mutex and, when configured, the distributed lock.
func (r *Repository) lock(ctx context.Context) (func(), error) {
	r.mu.Lock()
	if r.locker == nil {
		return r.mu.Unlock, nil
	}
	release, err := r.locker.Lock(ctx, r.key, lockTTL)
	if err != nil {
		r.mu.Unlock()
		return nil, &domain.PersistenceError{Op: "lock", Err: err}
	}
	return func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			r.logger.Warn("failed to release storage lock", "key", r.key, "err", err)
		}
		r.mu.Unlock()
	}, nil
}

// load reads the record for the read path, degrading to the seed list on any failure.
func (r *Repository) load(ctx context.Context) []domain.Plant {
	plants, err := r.current(ctx)
	if err != nil {
		r.logger.Warn("persisted read failed, using default plants", "key", r.key, "err", err)
		return domain.DefaultPlants()
	}
	return plants
}

// current reads the record as the base of a read-modify-write.
// A storage read error is returned so that a write never replaces data it could not see.
// A missing or malformed record counts as the seed list, the same view List gives.
func (r *Repository) current(ctx context.Context) ([]domain.Plant, error) {
	raw, found, err := r.storage.GetItem(ctx, r.key)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "read", Err: err}
	}
	if !found {
		return domain.DefaultPlants(), nil
	}

	plants, err := DecodeRecord(raw)
	if err != nil {
		r.logger.Warn("persisted record is malformed, using default plants", "key", r.key, "err", &domain.PersistenceError{Op: "decode", Err: err})
		return domain.DefaultPlants(), nil
	}
	return plants, nil
}

func (r *Repository) write(ctx context.Context, plants []domain.Plant) error {
	doc, err := EncodeRecord(r.key, plants)
	if err != nil {
		return &domain.PersistenceError{Op: "encode", Err: err}
	}
	if err := r.storage.SetItem(ctx, r.key, doc); err != nil {
		return &domain.PersistenceError{Op: "write", Err: err}
	}
	return nil
}

func findPlant(plants []domain.Plant, id string) (domain.Plant, bool) {
	if i := domain.IndexOf(plants, id); i >= 0 {
		return plants[i], true
	}
	return domain.Plant{}, false
}
