package domain

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// Event is the name of the transition that produced the diff.
	Event string `json:"event,omitempty"`

	// Items is the full list when it changed. Lists are small; no per-item patching.
	Items *[]Plant `json:"items,omitempty"`

	Loading             *bool   `json:"loading,omitempty"`
	Adding              *bool   `json:"adding,omitempty"`
	Error               *string `json:"error,omitempty"`
	PendingEnrichmentID *string `json:"pendingEnrichmentId,omitempty"`

	// WateringDays contains only changed, added or deleted keys.
	// For deletions, the key is present with a nil value.
	WateringDays map[string]*int `json:"wateringDays,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{}

	if oldState == nil || !samePlants(oldState.Items, newState.Items) {
		items := append([]Plant{}, newState.Items...)
		diff.Items = &items
	}
	if oldState == nil || oldState.Loading != newState.Loading {
		diff.Loading = ptr(newState.Loading)
	}
	if oldState == nil || oldState.Adding != newState.Adding {
		diff.Adding = ptr(newState.Adding)
	}
	if oldState == nil || oldState.Error != newState.Error {
		diff.Error = ptr(newState.Error)
	}
	if oldState == nil || oldState.PendingEnrichmentID != newState.PendingEnrichmentID {
		diff.PendingEnrichmentID = ptr(newState.PendingEnrichmentID)
	}
	diff.WateringDays = diffWateringDays(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffWateringDays(old *State, new *State) map[string]*int {
	delta := make(map[string]*int)

	if old == nil {
		for k, v := range new.WateringDays {
			delta[k] = ptr(v)
		}
	} else {
		for k, v := range new.WateringDays {
			if prev, ok := old.WateringDays[k]; !ok || prev != v {
				delta[k] = ptr(v)
			}
		}
		for k := range old.WateringDays {
			if _, ok := new.WateringDays[k]; !ok {
				delta[k] = nil
			}
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

func samePlants(a, b []Plant) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Items == nil &&
		d.Loading == nil &&
		d.Adding == nil &&
		d.Error == nil &&
		d.PendingEnrichmentID == nil &&
		len(d.WateringDays) == 0
}

func ptr[T any](v T) *T {
	return &v
}
