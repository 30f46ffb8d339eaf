package ports

import "context"

// Enricher answers enrichment questions about a plant type.
type Enricher interface {
	// SuggestWateringDays returns a short free-text answer, expected to be a number of days.
	SuggestWateringDays(ctx context.Context, plantType string) (string, error)
}

// TextGenerator sends a single prompt to a text-generation service.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EnricherFunc adapts a function to the Enricher interface.
type EnricherFunc func(ctx context.Context, plantType string) (string, error)

func (f EnricherFunc) SuggestWateringDays(ctx context.Context, plantType string) (string, error) {
	return f(ctx, plantType)
}
