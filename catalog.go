package verdant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/verdant/internal/logging"
	"github.com/aretw0/verdant/internal/runtime"
	"github.com/aretw0/verdant/pkg/domain"
	"github.com/aretw0/verdant/pkg/ports"
)

// Catalog is the high-level entry point for the verdant library.
// It owns exactly one domain.State and runs the effects behind every transition.
// Safe for concurrent use.
type Catalog struct {
	repo   ports.PlantRepository
	hooks  []domain.LifecycleHooks
	logger *slog.Logger
	newID  func() string

	mu    sync.Mutex
	state domain.State
}

// Option defines a functional option for configuring the Catalog.
type Option func(*Catalog)

// WithLifecycleHooks registers observability hooks. It may be given more than once.
// Hooks run synchronously while the transition lock is held, so they must not call
// back into the Catalog.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Catalog) {
		c.hooks = append(c.hooks, hooks)
	}
}

// WithLogger sets a custom structured logger for the catalog.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// WithInitialState replaces the empty initial state.
func WithInitialState(state domain.State) Option {
	return func(c *Catalog) {
		c.state = state.Clone()
	}
}

// New creates a Catalog backed by repo. Call Start to run the initial fetch.
func New(repo ports.PlantRepository, opts ...Option) *Catalog {
	c := &Catalog{
		repo:  repo,
		state: domain.NewState(),
		newID: domain.NewID,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	return c
}

// Repository returns the persistence adapter used by the catalog.
func (c *Catalog) Repository() ports.PlantRepository {
	return c.repo
}

// Start populates the catalog with the initial fetch.
func (c *Catalog) Start(ctx context.Context) ([]domain.Plant, error) {
	c.logger.Debug("catalog starting")
	return c.Fetch(ctx)
}

// Fetch reloads the plant list from the repository.
func (c *Catalog) Fetch(ctx context.Context) ([]domain.Plant, error) {
	c.dispatch(ctx, domain.FetchRequested{})

	plants, err := c.repo.List(ctx)
	if err != nil {
		c.dispatch(ctx, domain.FetchFailed{Message: failureMessage(err, domain.MsgFetchFailed)})
		return nil, err
	}

	after := c.dispatch(ctx, domain.FetchSucceeded{Plants: plants})
	return after.Items, nil
}

// Add validates in, creates the plant through the repository and appends it.
func (c *Catalog) Add(ctx context.Context, in domain.PlantInput) (domain.Plant, error) {
	if err := in.Validate(); err != nil {
		c.dispatch(ctx, domain.AddFailed{Message: err.Error()})
		return domain.Plant{}, err
	}

	c.dispatch(ctx, domain.AddRequested{})

	plant, err := c.repo.Create(ctx, in)
	if err != nil {
		c.dispatch(ctx, domain.AddFailed{Message: failureMessage(err, domain.MsgAddFailed)})
		return domain.Plant{}, err
	}
	if plant.ID == "" {
		plant.ID = c.newID()
	}

	c.dispatch(ctx, domain.AddSucceeded{Plant: plant})
	return plant, nil
}

// Update replaces a plant through the repository and in the state.
// Failures are returned to the caller and leave the state untouched.
func (c *Catalog) Update(ctx context.Context, plant domain.Plant) (domain.Plant, error) {
	updated, err := c.repo.Update(ctx, plant.ID, plant)
	if err != nil {
		return domain.Plant{}, err
	}
	c.dispatch(ctx, domain.PlantUpdated{Plant: updated})
	return updated, nil
}

// Delete removes the plant locally first, then from the repository.
// A plant the repository no longer knows counts as deleted.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	c.dispatch(ctx, domain.PlantDeleted{ID: id})

	err := c.repo.Delete(ctx, id)
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		return nil
	}

	c.dispatch(ctx, domain.DeleteFailed{ID: id, Message: failureMessage(err, domain.MsgDeleteFailed)})
	return err
}

// Enrich asks the enrichment service for the plant's watering period and applies
// the parsed number of days. The new period is written back to the repository.
func (c *Catalog) Enrich(ctx context.Context, id string) (int, error) {
	c.dispatch(ctx, domain.EnrichRequested{ID: id})

	answer, err := c.repo.Enrich(ctx, id)
	if err != nil {
		c.dispatch(ctx, domain.EnrichFailed{ID: id, Message: failureMessage(err, domain.MsgEnrichFailed)})
		return 0, err
	}

	after := c.dispatch(ctx, domain.EnrichSucceeded{ID: id, Value: answer})
	days := runtime.ParseWateringDays(answer)

	if plant, ok := after.Find(id); ok {
		if _, err := c.repo.Update(ctx, id, plant); err != nil {
			c.logger.Warn("failed to persist enriched watering period", "id", id, "days", days, "err", err)
		}
	}
	return days, nil
}

// State returns a snapshot of the current state.
func (c *Catalog) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Visible returns the plants whose type contains query, case-insensitively.
func (c *Catalog) Visible(query string) []domain.Plant {
	return domain.Filter(c.State().Items, query)
}

// dispatch applies one event and returns a snapshot of the resulting state.
func (c *Catalog) dispatch(ctx context.Context, event domain.Event) domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.state
	c.state = runtime.Reduce(before, event)

	c.logger.Debug("transition", "event", event.Name(), "items", len(c.state.Items), "state_error", c.state.Error)

	if len(c.hooks) > 0 {
		te := &domain.TransitionEvent{Event: event, Before: before.Clone(), After: c.state.Clone()}
		for _, h := range c.hooks {
			if h.OnTransition != nil {
				h.OnTransition(ctx, te)
			}
		}
	}
	return c.state.Clone()
}

// failureMessage turns err into the text stored in State.Error.
// The fallback is used only when err carries no message.
func failureMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}
