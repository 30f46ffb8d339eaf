// Package runtime holds the catalog state machine: a pure transition function
// from (State, Event) to State. It performs no I/O; the effect runner lives in the
// root package and feeds adapter results back in as events.
package runtime

import (
	"github.com/aretw0/verdant/pkg/domain"
)

// Reduce applies event to state and returns the next state.
// The input state is never mutated. Unknown events return an unchanged copy.
func Reduce(state domain.State, event domain.Event) domain.State {
	next := state.Clone()

	switch ev := event.(type) {
	case domain.FetchRequested:
		next.Loading = true
		next.Error = ""

	case domain.FetchSucceeded:
		next.Loading = false
		next.Items = uniquePlants(ev.Plants)

	case domain.FetchFailed:
		next.Loading = false
		next.Error = messageOr(ev.Message, domain.MsgFetchFailed)

	case domain.AddRequested:
		next.Adding = true
		next.Error = ""

	case domain.AddSucceeded:
		next.Adding = false
		if i := domain.IndexOf(next.Items, ev.Plant.ID); i >= 0 {
			// Ids stay unique: a replayed add overwrites in place.
			next.Items[i] = ev.Plant
		} else {
			next.Items = append(next.Items, ev.Plant)
		}

	case domain.AddFailed:
		next.Adding = false
		next.Error = messageOr(ev.Message, domain.MsgAddFailed)

	case domain.PlantDeleted:
		if i := domain.IndexOf(next.Items, ev.ID); i >= 0 {
			next.Items = append(next.Items[:i], next.Items[i+1:]...)
		}
		delete(next.WateringDays, ev.ID)

	case domain.DeleteFailed:
		next.Error = messageOr(ev.Message, domain.MsgDeleteFailed)

	case domain.PlantUpdated:
		if i := domain.IndexOf(next.Items, ev.Plant.ID); i >= 0 {
			next.Items[i] = ev.Plant
		}

	case domain.EnrichRequested:
		next.PendingEnrichmentID = ev.ID

	case domain.EnrichSucceeded:
		days := ParseWateringDays(ev.Value)
		next.PendingEnrichmentID = ""
		// The plant may have been deleted while the request was in flight.
		if i := domain.IndexOf(next.Items, ev.ID); i >= 0 {
			next.WateringDays[ev.ID] = days
			next.Items[i].WateringPeriod = days
		}

	case domain.EnrichFailed:
		next.PendingEnrichmentID = ""
		next.Error = messageOr(ev.Message, domain.MsgEnrichFailed)
	}

	return next
}

// ReduceAll folds events over state in order.
func ReduceAll(state domain.State, events ...domain.Event) domain.State {
	for _, ev := range events {
		state = Reduce(state, ev)
	}
	return state
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}

// uniquePlants copies plants dropping repeated ids (first occurrence wins).
func uniquePlants(plants []domain.Plant) []domain.Plant {
	out := make([]domain.Plant, 0, len(plants))
	seen := make(map[string]struct{}, len(plants))
	for _, p := range plants {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
