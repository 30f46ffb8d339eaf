package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/verdant/internal/presentation/tui"
	"github.com/aretw0/verdant/pkg/adapters/mcp"
	"github.com/aretw0/verdant/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout gives outstanding requests a deadline for completion.
const shutdownTimeout = 5 * time.Second

// Output is where command results go.
type Output struct {
	W      io.Writer
	Render tui.Renderer
	JSON   bool
}

func (o Output) markdown(md string) error {
	render := o.Render
	if render == nil {
		render = tui.PlainRenderer
	}
	text, err := render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(o.W, text)
	return err
}

func (o Output) json(v any) error {
	enc := json.NewEncoder(o.W)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RunList prints the plants whose type contains query.
func RunList(ctx context.Context, rt *Runtime, out Output, query string) error {
	if _, err := rt.Catalog.Start(ctx); err != nil {
		return err
	}
	plants := rt.Catalog.Visible(query)
	if out.JSON {
		return out.json(plants)
	}
	return out.markdown(tui.PlantTable(plants, rt.Catalog.State().WateringDays))
}

// RunAdd creates a plant and prints it.
func RunAdd(ctx context.Context, rt *Runtime, out Output, in domain.PlantInput) error {
	if _, err := rt.Catalog.Start(ctx); err != nil {
		return err
	}
	plant, err := rt.Catalog.Add(ctx, in)
	if err != nil {
		return err
	}
	if out.JSON {
		return out.json(plant)
	}
	printSystemMessage(out.W, "Added %s (%s, every %d days).", plant.ID, plant.Type, plant.WateringPeriod)
	return nil
}

// RunRemove deletes every id. Unknown ids are reported but do not stop the rest.
func RunRemove(ctx context.Context, rt *Runtime, out Output, ids []string) error {
	if _, err := rt.Catalog.Start(ctx); err != nil {
		return err
	}

	var errs []error
	for _, id := range ids {
		if _, ok := rt.Catalog.State().Find(id); !ok {
			errs = append(errs, domain.NotFound(id))
			continue
		}
		if err := rt.Catalog.Delete(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", id, err))
			continue
		}
		if !out.JSON {
			printSystemMessage(out.W, "Deleted %s.", id)
		}
	}
	return errors.Join(errs...)
}

// RunEnrich asks the enrichment service for a plant's watering period and stores it.
func RunEnrich(ctx context.Context, rt *Runtime, out Output, id string) error {
	if _, err := rt.Catalog.Start(ctx); err != nil {
		return err
	}
	days, err := rt.Catalog.Enrich(ctx, id)
	if err != nil {
		return err
	}
	if out.JSON {
		return out.json(map[string]any{"id": id, "wateringDays": days})
	}
	printSystemMessage(out.W, "%s should be watered every %d days.", id, days)
	return nil
}

// ServeOptions configures RunServe.
type ServeOptions struct {
	Addr string
	// MCPAddr, when set, also serves MCP over SSE on this address.
	MCPAddr string
}

// RunServe serves the HTTP API until ctx is cancelled.
func RunServe(ctx context.Context, rt *Runtime, out Output, opts ServeOptions) error {
	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return err
	}
	return Serve(ctx, rt, out, ln, opts.MCPAddr)
}

// Serve serves the HTTP API on ln until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, rt *Runtime, out Output, ln net.Listener, mcpAddr string) error {
	if _, err := rt.Catalog.Start(ctx); err != nil {
		// The state carries the error; clients can retry with POST /plants/refresh.
		rt.Logger.Warn("initial fetch failed", "err", err)
	}

	srv := &http.Server{
		Handler:           rt.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		printSystemMessage(out.W, "Serving plant catalog on %s (backend: %s).", ln.Addr(), rt.Config.Backend)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			rt.Logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		return nil
	})
	if mcpAddr != "" {
		g.Go(func() error {
			return mcp.NewServer(rt.Catalog, rt.Logger).ServeSSE(gctx, mcpAddr, baseURL(mcpAddr))
		})
	}

	err := g.Wait()
	printSystemMessage(out.W, "Server stopped.")
	return err
}

// RunMCP serves the catalog as MCP tools over stdio or SSE.
func RunMCP(ctx context.Context, rt *Runtime, transport, addr string) error {
	if _, err := rt.Catalog.Start(ctx); err != nil {
		rt.Logger.Warn("initial fetch failed", "err", err)
	}
	srv := mcp.NewServer(rt.Catalog, rt.Logger)

	switch transport {
	case "stdio":
		rt.Logger.Info("Starting verdant MCP Server (Stdio)")
		return srv.ServeStdio()
	case "sse":
		return srv.ServeSSE(ctx, addr, baseURL(addr))
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio, sse)", transport)
	}
}

// baseURL turns a listen address into the URL MCP clients are told to post to.
func baseURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
