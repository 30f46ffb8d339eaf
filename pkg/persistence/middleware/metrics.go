package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/verdant/pkg/domain"
	"github.com/aretw0/verdant/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors recorded by the metrics middleware.
type Metrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewMetrics creates and registers the repository collectors.
// A nil registerer falls back to prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "verdant",
			Subsystem: "repository",
			Name:      "operations_total",
			Help:      "Plant repository calls by operation and result.",
		}, []string{"op", "result"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "verdant",
			Subsystem: "repository",
			Name:      "operation_duration_seconds",
			Help:      "Plant repository call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	reg.MustRegister(m.Operations, m.Duration)
	return m
}

// Middleware returns a repository decorator recording into m.
func (m *Metrics) Middleware() Middleware {
	return func(next ports.PlantRepository) ports.PlantRepository {
		return &metricsRepository{next: next, m: m}
	}
}

// Result classifies err for the "result" label.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case domain.IsValidation(err):
		return "invalid"
	case domain.IsUpstream(err):
		return "upstream"
	default:
		return "error"
	}
}

type metricsRepository struct {
	next ports.PlantRepository
	m    *Metrics
}

func (r *metricsRepository) observe(op string, start time.Time, err error) {
	r.m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	r.m.Operations.WithLabelValues(op, Result(err)).Inc()
}

func (r *metricsRepository) List(ctx context.Context) ([]domain.Plant, error) {
	start := time.Now()
	plants, err := r.next.List(ctx)
	r.observe("list", start, err)
	return plants, err
}

func (r *metricsRepository) Create(ctx context.Context, in domain.PlantInput) (domain.Plant, error) {
	start := time.Now()
	plant, err := r.next.Create(ctx, in)
	r.observe("create", start, err)
	return plant, err
}

func (r *metricsRepository) Update(ctx context.Context, id string, plant domain.Plant) (domain.Plant, error) {
	start := time.Now()
	updated, err := r.next.Update(ctx, id, plant)
	r.observe("update", start, err)
	return updated, err
}

func (r *metricsRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := r.next.Delete(ctx, id)
	r.observe("delete", start, err)
	return err
}

func (r *metricsRepository) Enrich(ctx context.Context, id string) (string, error) {
	start := time.Now()
	answer, err := r.next.Enrich(ctx, id)
	r.observe("enrich", start, err)
	return answer, err
}
