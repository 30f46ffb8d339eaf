// Package enrich asks a text-generation service for plant care suggestions.
//
// The Client wraps a ports.TextGenerator with the policies every call needs:
// a per-request timeout, at most one retry of transient failures, an optional
// global rate limit and deduplication of concurrent calls for the same plant type.
// Every failure surfaces as a *domain.UpstreamError.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/verdant/internal/logging"
	"github.com/aretw0/verdant/pkg/domain"
	"github.com/aretw0/verdant/pkg/ports"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// ErrEmptyAnswer is returned when the generator answers with blank text.
var ErrEmptyAnswer = errors.New("empty answer from text generator")

type Options struct {
	// MaxRetries is clamped to 0..1.
	MaxRetries     int
	RequestTimeout time.Duration

	// RateLimitRPS is a global limit across all callers. Set to <=0 to disable.
	RateLimitRPS float64

	// BackoffInitial is the initial sleep before retrying a transient failure.
	BackoffInitial time.Duration
	// BackoffMax caps exponential backoff.
	BackoffMax time.Duration
	// BackoffJitterFrac applies +/- jitter to backoff sleeps (0.2 = +/-20%).
	BackoffJitterFrac float64
}

// DefaultOptions returns the options used when New receives none.
func DefaultOptions() Options {
	return Options{MaxRetries: 1}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.MaxRetries > 1 {
		o.MaxRetries = 1
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
	if o.BackoffInitial <= 0 {
		o.BackoffInitial = 200 * time.Millisecond
	}
	if o.BackoffMax <= 0 {
		o.BackoffMax = 2 * time.Second
	}
	if o.BackoffJitterFrac < 0 {
		o.BackoffJitterFrac = 0
	}
	return o
}

// Client implements ports.Enricher.
type Client struct {
	gen     ports.TextGenerator
	opts    Options
	limiter *rate.Limiter
	group   singleflight.Group
	logger  *slog.Logger
}

// ClientOption configures optional Client collaborators.
type ClientOption func(*Client)

// WithLogger sets the logger used for per-request diagnostics.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client over gen.
func New(gen ports.TextGenerator, opts Options, options ...ClientOption) *Client {
	opts = opts.withDefaults()
	c := &Client{
		gen:    gen,
		opts:   opts,
		logger: logging.NewNop(),
	}
	if opts.RateLimitRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), 1)
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// Options returns the effective options after defaults and clamping.
func (c *Client) Options() Options {
	return c.opts
}

// WateringPrompt builds the question sent for a plant type.
func WateringPrompt(plantType string) string {
	return fmt.Sprintf("how many days should you wait before watering %s indoors? give me just the number", strings.TrimSpace(plantType))
}

// SuggestWateringDays returns the raw answer for plantType.
// Concurrent calls for the same type share one upstream request.
func (c *Client) SuggestWateringDays(ctx context.Context, plantType string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(plantType))
	if key == "" {
		return "", &domain.UpstreamError{Op: "enrich", Err: errors.New("plant type is empty")}
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// Shared call outlives any single caller's cancellation.
		return c.generate(context.WithoutCancel(ctx), plantType)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", &domain.UpstreamError{Op: "enrich", Err: ctx.Err()}
	}
}

func (c *Client) generate(ctx context.Context, plantType string) (string, error) {
	requestID := uuid.NewString()
	log := c.logger.With("request_id", requestID, "plant_type", plantType)
	prompt := WateringPrompt(plantType)

	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", &domain.UpstreamError{Op: "rate_limit", Err: err}
			}
		}

		start := time.Now()
		answer, err := c.attempt(ctx, prompt)
		if err == nil {
			log.Debug("enrichment answered", "attempt", attempt+1, "duration", time.Since(start))
			return answer, nil
		}

		if !isTransient(err) || attempt >= c.opts.MaxRetries {
			log.Warn("enrichment failed", "attempt", attempt+1, "err", err)
			return "", &domain.UpstreamError{Op: "enrich", Err: err}
		}

		sleep := backoffSleep(c.opts.BackoffInitial, c.opts.BackoffMax, c.opts.BackoffJitterFrac, attempt)
		log.Info("retrying enrichment", "attempt", attempt+1, "backoff", sleep, "err", err)
		if err := sleepCtx(ctx, sleep); err != nil {
			return "", &domain.UpstreamError{Op: "enrich", Err: err}
		}
	}
}

func (c *Client) attempt(ctx context.Context, prompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
	defer cancel()

	answer, err := c.gen.Generate(reqCtx, prompt)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", ErrEmptyAnswer
	}
	return answer, nil
}
