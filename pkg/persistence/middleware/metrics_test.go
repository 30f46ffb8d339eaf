package middleware_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/verdant/internal/logging"
	"github.com/aretw0/verdant/pkg/domain"
	"github.com/aretw0/verdant/pkg/persistence/middleware"
	"github.com/aretw0/verdant/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddleware_CountsByResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(reg)
	repo := metrics.Middleware()(stubRepository{})
	ctx := context.Background()

	_, err := repo.List(ctx)
	require.NoError(t, err)
	_, err = repo.Create(ctx, domain.PlantInput{Type: "Fern", WateringPeriod: 3})
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), domain.ErrNotFound)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Operations.WithLabelValues("list", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Operations.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Operations.WithLabelValues("delete", "not_found")))
	assert.Equal(t, 3, testutil.CollectAndCount(metrics.Duration))
}

func TestMetricsMiddleware_Upstream(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(reg)
	repo := metrics.Middleware()(stubRepository{err: errBoom})

	_, err := repo.Enrich(context.Background(), "1")
	assert.True(t, domain.IsUpstream(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Operations.WithLabelValues("enrich", "upstream")))
}

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", middleware.Result(nil))
	assert.Equal(t, "not_found", middleware.Result(domain.NotFound("x")))
	assert.Equal(t, "invalid", middleware.Result(&domain.ValidationError{Field: "type", Reason: "required"}))
	assert.Equal(t, "upstream", middleware.Result(&domain.UpstreamError{Op: "enrich", Err: errBoom}))
	assert.Equal(t, "error", middleware.Result(errBoom))
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithFormat(&buf, slog.LevelDebug, "text")
	repo := middleware.Chain(stubRepository{err: errBoom}, middleware.NewLoggingMiddleware(logger))

	_, err := repo.Update(context.Background(), "7", domain.Plant{Type: "Fern", WateringPeriod: 3})
	assert.ErrorIs(t, err, errBoom)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "op=update")
	assert.Contains(t, out, "id=7")
	assert.Contains(t, out, "err=boom")
}

func TestChain_Order(t *testing.T) {
	var calls []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.PlantRepository) ports.PlantRepository {
			calls = append(calls, name)
			return next
		}
	}

	middleware.Chain(stubRepository{}, tag("outer"), tag("inner"))
	assert.Equal(t, []string{"inner", "outer"}, calls, "inner wraps first so outer ends up outermost")
}
