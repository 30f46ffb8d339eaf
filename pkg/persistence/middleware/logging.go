package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/verdant/pkg/domain"
	"github.com/aretw0/verdant/pkg/ports"
)

type loggingRepository struct {
	next   ports.PlantRepository
	logger *slog.Logger
}

// NewLoggingMiddleware logs every repository call at debug level and failures at warn.
// ErrNotFound and validation failures are expected outcomes and stay at debug.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.PlantRepository) ports.PlantRepository {
		return &loggingRepository{next: next, logger: logger}
	}
}

func (r *loggingRepository) log(ctx context.Context, op string, start time.Time, err error, attrs ...any) {
	attrs = append(attrs, "op", op, "duration", time.Since(start))
	switch Result(err) {
	case "ok":
		r.logger.DebugContext(ctx, "repository call", attrs...)
	case "not_found", "invalid":
		r.logger.DebugContext(ctx, "repository call rejected", append(attrs, "err", err)...)
	default:
		r.logger.WarnContext(ctx, "repository call failed", append(attrs, "err", err)...)
	}
}

func (r *loggingRepository) List(ctx context.Context) ([]domain.Plant, error) {
	start := time.Now()
	plants, err := r.next.List(ctx)
	r.log(ctx, "list", start, err, "count", len(plants))
	return plants, err
}

func (r *loggingRepository) Create(ctx context.Context, in domain.PlantInput) (domain.Plant, error) {
	start := time.Now()
	plant, err := r.next.Create(ctx, in)
	r.log(ctx, "create", start, err, "id", plant.ID)
	return plant, err
}

func (r *loggingRepository) Update(ctx context.Context, id string, plant domain.Plant) (domain.Plant, error) {
	start := time.Now()
	updated, err := r.next.Update(ctx, id, plant)
	r.log(ctx, "update", start, err, "id", id)
	return updated, err
}

func (r *loggingRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := r.next.Delete(ctx, id)
	r.log(ctx, "delete", start, err, "id", id)
	return err
}

func (r *loggingRepository) Enrich(ctx context.Context, id string) (string, error) {
	start := time.Now()
	answer, err := r.next.Enrich(ctx, id)
	r.log(ctx, "enrich", start, err, "id", id)
	return answer, err
}
