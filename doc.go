/*
Package verdant manages the state of a plant catalog: a list of plants that can be
fetched, searched, added, updated, deleted and enriched with a watering suggestion
from a text-generation service.

It separates a pure transition function (State + Event -> State) from the side-effects
(persistence and enrichment calls). The Catalog is the single owner of the State: it
issues adapter calls on the caller's goroutine and applies one transition at a time.

# Concept

Every asynchronous action is modelled as request / success / failure events. While a
fetch is outstanding Loading is true; while an add is outstanding Adding is true; while
an enrichment is outstanding PendingEnrichmentID names the plant. Failures put a
human-readable message into State.Error and clear the matching in-flight flag.

# Adapters

Persistence is a ports.PlantRepository. The library ships:

  - memory: a seeded in-memory repository.
  - persisted: a durable repository over any ports.Storage (memory, file, redis, sqlite)
    that merges on save and falls back to the default seed list on unreadable data.

Enrichment is a ports.Enricher; pkg/enrich adds timeouts, one bounded retry, rate
limiting and request deduplication on top of a ports.TextGenerator such as the Gemini
adapter.

# Usage

	repo := memory.NewRepository()
	cat := verdant.New(repo)

	ctx := context.Background()
	if _, err := cat.Start(ctx); err != nil {
		log.Fatal(err)
	}

	cat.Add(ctx, domain.PlantInput{Type: "Fern", WateringPeriod: 3})
	for _, p := range cat.Visible("fern") {
		fmt.Println(p.ID, p.Type, p.WateringPeriod)
	}

# Observability

Register domain.LifecycleHooks with WithLifecycleHooks to observe every applied
transition (the HTTP adapter uses this to stream state diffs over SSE).
*/
package verdant
