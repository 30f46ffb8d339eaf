package domain

// State represents the current snapshot of the catalog.
type State struct {
	// Items holds the plants in insertion order. Ids are unique.
	Items []Plant `json:"items"`

	// Loading is true while a fetch is outstanding.
	Loading bool `json:"loading"`

	// Error holds the message of the last failed operation ("" means none).
	Error string `json:"error,omitempty"`

	// WateringDays holds the last enrichment result per plant id.
	WateringDays map[string]int `json:"wateringDays"`

	// PendingEnrichmentID is the plant whose enrichment was requested last
	// and has not completed yet ("" means none).
	PendingEnrichmentID string `json:"pendingEnrichmentId,omitempty"`

	// Adding is true while an add is outstanding.
	Adding bool `json:"adding"`
}

// NewState creates the empty initial state.
func NewState() State {
	return State{
		Items:        []Plant{},
		WateringDays: make(map[string]int),
	}
}

// Clone returns a deep copy so that the result shares no memory with s.
func (s State) Clone() State {
	out := s
	out.Items = make([]Plant, len(s.Items))
	copy(out.Items, s.Items)
	out.WateringDays = make(map[string]int, len(s.WateringDays))
	for k, v := range s.WateringDays {
		out.WateringDays[k] = v
	}
	return out
}

// Find returns the plant with the given id.
func (s State) Find(id string) (Plant, bool) {
	if i := IndexOf(s.Items, id); i >= 0 {
		return s.Items[i], true
	}
	return Plant{}, false
}
