package domain

import "context"

// Event is a fact applied to the State by the transition function.
type Event interface {
	// Name identifies the event in logs, metrics and streams.
	Name() string
}

// Default error messages used when a failure carries no message of its own.
const (
	MsgFetchFailed  = "Failed to fetch plants"
	MsgAddFailed    = "Failed to add plant"
	MsgDeleteFailed = "Failed to delete plant"
	MsgEnrichFailed = "Failed to update watering period"
)

// FetchRequested marks the start of a load and clears the last error.
type FetchRequested struct{}

// FetchSucceeded replaces the item list with the loaded plants.
type FetchSucceeded struct {
	Plants []Plant
}

// FetchFailed ends a load with an error message.
type FetchFailed struct {
	Message string
}

// AddRequested marks the start of an add and clears the last error.
type AddRequested struct{}

// AddSucceeded appends the created plant.
type AddSucceeded struct {
	Plant Plant
}

// AddFailed ends an add with an error message.
type AddFailed struct {
	Message string
}

// PlantDeleted removes a plant locally. Deleting an absent id is a no-op.
type PlantDeleted struct {
	ID string
}

// DeleteFailed records a repository delete error. The local removal is not undone.
type DeleteFailed struct {
	ID      string
	Message string
}

// PlantUpdated replaces the plant with the same id. Unknown ids are ignored.
type PlantUpdated struct {
	Plant Plant
}

// EnrichRequested marks the plant whose enrichment is in flight.
type EnrichRequested struct {
	ID string
}

// EnrichSucceeded carries the raw text answer of the enrichment service.
// It is ignored for a plant deleted while the request was in flight.
type EnrichSucceeded struct {
	ID    string
	Value string
}

// EnrichFailed clears the pending enrichment and records the error message.
type EnrichFailed struct {
	ID      string
	Message string
}

func (FetchRequested) Name() string  { return "fetch_requested" }
func (FetchSucceeded) Name() string  { return "fetch_succeeded" }
func (FetchFailed) Name() string     { return "fetch_failed" }
func (AddRequested) Name() string    { return "add_requested" }
func (AddSucceeded) Name() string    { return "add_succeeded" }
func (AddFailed) Name() string       { return "add_failed" }
func (PlantDeleted) Name() string    { return "plant_deleted" }
func (DeleteFailed) Name() string    { return "delete_failed" }
func (PlantUpdated) Name() string    { return "plant_updated" }
func (EnrichRequested) Name() string { return "enrich_requested" }
func (EnrichSucceeded) Name() string { return "enrich_succeeded" }
func (EnrichFailed) Name() string    { return "enrich_failed" }

// TransitionEvent describes one applied transition.
type TransitionEvent struct {
	Event  Event
	Before State
	After  State
}

// LifecycleHooks defines callbacks for catalog observability.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
}
