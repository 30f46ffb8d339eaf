package cli

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/verdant/internal/presentation/tui"
	"github.com/aretw0/verdant/pkg/domain"
)

// WatchOptions configures RunWatch.
type WatchOptions struct {
	Query    string
	Interval time.Duration
}

// RunWatch polls the repository and reprints the table whenever the plant list
// changes. It is meant for backends shared between processes (file, redis, sqlite).
func RunWatch(ctx context.Context, rt *Runtime, out Output, opts WatchOptions) error {
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}

	rt.Logger.Info("Starting watcher", "backend", rt.Config.Backend, "interval", opts.Interval)

	var last *domain.State
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for {
		if _, err := rt.Catalog.Fetch(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			// Keep polling; the backend may come back.
			rt.Logger.Warn("refresh failed", "err", err)
		}

		current := rt.Catalog.State()
		if changed(last, &current) {
			if last != nil {
				printSystemMessage(out.W, "Change detected at %s.", time.Now().Format(time.TimeOnly))
			}
			if err := out.markdown(tui.StateSummary(current) + "\n" + tui.PlantTable(domain.Filter(current.Items, opts.Query), current.WateringDays)); err != nil {
				return err
			}
			last = &current
		}

		select {
		case <-ctx.Done():
			printSystemMessage(out.W, "Watcher stopped.")
			return nil
		case <-ticker.C:
		}
	}
}

// changed reports whether the visible parts of the state differ.
func changed(old, cur *domain.State) bool {
	if old == nil {
		return true
	}
	diff := domain.Diff(old, cur)
	return diff != nil && (diff.Items != nil || diff.Error != nil)
}
