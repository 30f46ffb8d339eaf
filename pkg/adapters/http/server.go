// Package http exposes a verdant.Catalog as a JSON API with a server-sent event stream
// of state diffs.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/verdant"
	"github.com/aretw0/verdant/internal/logging"
	"github.com/aretw0/verdant/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Catalog defines the catalog operations served over HTTP.
type Catalog interface {
	Fetch(ctx context.Context) ([]domain.Plant, error)
	Add(ctx context.Context, in domain.PlantInput) (domain.Plant, error)
	Update(ctx context.Context, plant domain.Plant) (domain.Plant, error)
	Delete(ctx context.Context, id string) error
	Enrich(ctx context.Context, id string) (int, error)
	State() domain.State
	Visible(query string) []domain.Plant
}

var _ Catalog = (*verdant.Catalog)(nil)

// Server serves the catalog API.
type Server struct {
	Catalog Catalog
	Streams *StreamManager

	logger  *slog.Logger
	metrics http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithStreams shares a StreamManager whose hooks are registered on the catalog.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler replaces the default promhttp handler served on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates a new HTTP handler for the catalog.
func NewHandler(catalog Catalog, opts ...Option) http.Handler {
	server := &Server{Catalog: catalog}
	for _, opt := range opts {
		opt(server)
	}
	if server.logger == nil {
		server.logger = logging.NewNop()
	}
	if server.Streams == nil {
		server.Streams = NewStreamManager(server.logger)
	}
	if server.metrics == nil {
		server.metrics = promhttp.Handler()
	}

	r := chi.NewRouter()

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/state", server.GetState)
	r.Get("/events", server.SubscribeEvents)
	r.Method(http.MethodGet, "/metrics", server.metrics)

	r.Route("/plants", func(r chi.Router) {
		r.Get("/", server.ListPlants)
		r.Post("/", server.AddPlant)
		r.Post("/refresh", server.RefreshPlants)
		r.Put("/{id}", server.UpdatePlant)
		r.Delete("/{id}", server.DeletePlant)
		r.Post("/{id}/enrich", server.EnrichPlant)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Verdant API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// plantBody is the request body of POST /plants and PUT /plants/{id}.
type plantBody struct {
	Type           string `json:"type"`
	WateringPeriod int    `json:"wateringPeriod"`
}

// EnrichResult is the response of POST /plants/{id}/enrich.
type EnrichResult struct {
	ID           string `json:"id"`
	WateringDays int    `json:"wateringDays"`
}

// ListPlants handles GET /plants.
func (s *Server) ListPlants(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Catalog.Visible(r.URL.Query().Get("q")))
}

// AddPlant handles POST /plants.
func (s *Server) AddPlant(w http.ResponseWriter, r *http.Request) {
	var body plantBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, fmt.Errorf("invalid request body: %w", errBadRequest))
		s.logger.Warn("AddPlant: Invalid request body", "err", err)
		return
	}

	plant, err := s.Catalog.Add(r.Context(), domain.PlantInput{Type: body.Type, WateringPeriod: body.WateringPeriod})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, plant)
}

// RefreshPlants handles POST /plants/refresh.
func (s *Server) RefreshPlants(w http.ResponseWriter, r *http.Request) {
	plants, err := s.Catalog.Fetch(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, plants)
}

// UpdatePlant handles PUT /plants/{id}.
func (s *Server) UpdatePlant(w http.ResponseWriter, r *http.Request) {
	var body plantBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, fmt.Errorf("invalid request body: %w", errBadRequest))
		s.logger.Warn("UpdatePlant: Invalid request body", "err", err)
		return
	}

	plant := domain.Plant{ID: chi.URLParam(r, "id"), Type: strings.TrimSpace(body.Type), WateringPeriod: body.WateringPeriod}
	updated, err := s.Catalog.Update(r.Context(), plant)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

// DeletePlant handles DELETE /plants/{id}.
func (s *Server) DeletePlant(w http.ResponseWriter, r *http.Request) {
	if err := s.Catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EnrichPlant handles POST /plants/{id}/enrich.
func (s *Server) EnrichPlant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	days, err := s.Catalog.Enrich(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, EnrichResult{ID: id, WateringDays: days})
}

// GetState handles GET /state.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Catalog.State())
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "verdant-http",
		"version":     strings.TrimSpace(verdant.Version),
		"api_version": apiVersion,
	})
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		for _, field := range strings.Split(watch, ",") {
			if field = strings.TrimSpace(field); field != "" {
				watchList = append(watchList, field)
			}
		}
	}

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Info("SSE: Client subscribed", "watch", watchList)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watchList) > 0 {
				var diff domain.StateDiff
				if err := json.Unmarshal([]byte(msg), &diff); err == nil && !matchesWatch(diff, watchList) {
					continue
				}
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// -- Helpers --

var errBadRequest = errors.New("bad request")

// StatusFor maps catalog errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), domain.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsUpstream(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
