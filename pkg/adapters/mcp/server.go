// Package mcp exposes a verdant.Catalog as Model Context Protocol tools and resources.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/verdant"
	"github.com/aretw0/verdant/internal/logging"
	"github.com/aretw0/verdant/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// PlantsURI is the resource holding the full plant list.
const PlantsURI = "verdant://plants"

// Catalog defines the catalog operations exposed as tools.
type Catalog interface {
	Add(ctx context.Context, in domain.PlantInput) (domain.Plant, error)
	Delete(ctx context.Context, id string) error
	Enrich(ctx context.Context, id string) (int, error)
	State() domain.State
	Visible(query string) []domain.Plant
}

var _ Catalog = (*verdant.Catalog)(nil)

// Server wraps the Catalog and exposes it as an MCP Server.
type Server struct {
	catalog   Catalog
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(catalog Catalog, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		catalog:   catalog,
		logger:    logger,
		mcpServer: server.NewMCPServer("verdant-mcp", strings.TrimSpace(verdant.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: list_plants
	s.mcpServer.AddTool(mcp.NewTool("list_plants",
		mcp.WithDescription("List plants in the catalog, optionally filtered by a case-insensitive substring of their type."),
		mcp.WithString("query", mcp.Description("Substring of the plant type (optional)")),
	), s.handleListPlants)

	// TOOL: add_plant
	s.mcpServer.AddTool(mcp.NewTool("add_plant",
		mcp.WithDescription("Add a plant to the catalog."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Plant type, e.g. Monstera")),
		mcp.WithNumber("watering_period", mcp.Required(), mcp.Description("Days between waterings (> 0)")),
	), s.handleAddPlant)

	// TOOL: delete_plant
	s.mcpServer.AddTool(mcp.NewTool("delete_plant",
		mcp.WithDescription("Delete a plant by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Plant id")),
	), s.handleDeletePlant)

	// TOOL: enrich_plant
	s.mcpServer.AddTool(mcp.NewTool("enrich_plant",
		mcp.WithDescription("Ask the enrichment service how often the plant should be watered and apply the answer."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Plant id")),
	), s.handleEnrichPlant)

	// TOOL: get_state
	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Get the full catalog state, including in-flight flags and the last error."),
		mcp.WithOutputSchema[domain.State](),
	), mcp.NewStructuredToolHandler(s.handleGetState))
}

func (s *Server) handleListPlants(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plants := s.catalog.Visible(request.GetString("query", ""))
	return jsonResult(plants)
}

func (s *Server) handleAddPlant(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plantType, err := request.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	period, err := request.RequireInt("watering_period")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	plant, err := s.catalog.Add(ctx, domain.PlantInput{Type: plantType, WateringPeriod: period})
	if err != nil {
		return s.toolError("add_plant", err), nil
	}
	return jsonResult(plant)
}

func (s *Server) handleDeletePlant(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.catalog.Delete(ctx, id); err != nil {
		return s.toolError("delete_plant", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted %s", id)), nil
}

func (s *Server) handleEnrichPlant(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	days, err := s.catalog.Enrich(ctx, id)
	if err != nil {
		return s.toolError("enrich_plant", err), nil
	}
	return jsonResult(map[string]any{"id": id, "wateringDays": days})
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (domain.State, error) {
	return s.catalog.State(), nil
}

// toolError reports err to the model; only unexpected failures are logged.
func (s *Server) toolError(tool string, err error) *mcp.CallToolResult {
	if !errors.Is(err, domain.ErrNotFound) && !domain.IsValidation(err) {
		s.logger.Warn("MCP tool failed", "tool", tool, "err", err)
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", tool, err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: verdant://plants
	s.mcpServer.AddResource(mcp.NewResource(PlantsURI, "Plant Catalog",
		mcp.WithResourceDescription("All plants currently in the catalog"),
		mcp.WithMIMEType("application/json"),
	), s.readPlants)
}

func (s *Server) readPlants(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.catalog.State().Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plants: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      PlantsURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
