package persisted

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/verdant/pkg/domain"
)

// Record is the persisted document. Plants holds the JSON-encoded plant list as a string,
// mirroring how browser storage serializes nested state.
type Record struct {
	Key    string  `json:"key"`
	Plants *string `json:"plants,omitempty"`
}

var (
	errMissingPlants = errors.New("record has no plants field")
	errNotAnArray    = errors.New("plants field is not a JSON array")
)

// EncodeRecord serializes plants into a record document for key.
func EncodeRecord(key string, plants []domain.Plant) (string, error) {
	if plants == nil {
		plants = []domain.Plant{}
	}
	list, err := json.Marshal(plants)
	if err != nil {
		return "", fmt.Errorf("failed to marshal plants: %w", err)
	}
	s := string(list)
	doc, err := json.Marshal(Record{Key: key, Plants: &s})
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}
	return string(doc), nil
}

// DecodeRecord parses a record document. Every malformation (bad JSON, missing field,
// non-array payload, bad plant entries) is reported as an error.
func DecodeRecord(raw string) ([]domain.Plant, error) {
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	if rec.Plants == nil {
		return nil, errMissingPlants
	}

	var probe any
	if err := json.Unmarshal([]byte(*rec.Plants), &probe); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plants: %w", err)
	}
	if _, ok := probe.([]any); !ok {
		return nil, errNotAnArray
	}

	var plants []domain.Plant
	if err := json.Unmarshal([]byte(*rec.Plants), &plants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plants: %w", err)
	}
	return plants, nil
}

// Merge reconciles candidates against the persisted list by id: persisted plants are kept
// untouched and in order, candidates whose id is not persisted are appended.
func Merge(persisted, candidates []domain.Plant) []domain.Plant {
	out := make([]domain.Plant, 0, len(persisted)+len(candidates))
	seen := make(map[string]struct{}, len(persisted)+len(candidates))
	for _, p := range persisted {
		out = append(out, p)
		seen[p.ID] = struct{}{}
	}
	for _, c := range candidates {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		out = append(out, c)
		seen[c.ID] = struct{}{}
	}
	return out
}
