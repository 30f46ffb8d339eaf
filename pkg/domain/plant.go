package domain

import (
	"strings"
)

// DefaultWateringPeriod is used when no better watering period is known.
const DefaultWateringPeriod = 7

// Plant is a catalog record.
type Plant struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	WateringPeriod int    `json:"wateringPeriod"`
}

// Validate applies the PlantInput rules to an existing record.
func (p Plant) Validate() error {
	return PlantInput{Type: p.Type, WateringPeriod: p.WateringPeriod}.Validate()
}

// PlantInput is the payload used to create a plant. The id is assigned by the repository.
type PlantInput struct {
	Type           string `json:"type"`
	WateringPeriod int    `json:"wateringPeriod"`
}

// Validate checks the input and returns a *ValidationError for the first invalid field.
func (in PlantInput) Validate() error {
	if strings.TrimSpace(in.Type) == "" {
		return &ValidationError{Field: "type", Reason: "must not be empty"}
	}
	if in.WateringPeriod <= 0 {
		return &ValidationError{Field: "wateringPeriod", Reason: "must be a positive number of days", Value: in.WateringPeriod}
	}
	return nil
}

// WithID builds the plant record for this input.
func (in PlantInput) WithID(id string) Plant {
	return Plant{
		ID:             id,
		Type:           strings.TrimSpace(in.Type),
		WateringPeriod: in.WateringPeriod,
	}
}

// DefaultPlants returns the seed list used by fresh and unreadable catalogs.
// A new slice is returned on every call.
func DefaultPlants() []Plant {
	return []Plant{
		{ID: "1", Type: "Monstera", WateringPeriod: 7},
		{ID: "2", Type: "Snake Plant", WateringPeriod: 14},
		{ID: "3", Type: "Peace Lily", WateringPeriod: 5},
		{ID: "4", Type: "ZZ Plant", WateringPeriod: 14},
		{ID: "5", Type: "Pothos", WateringPeriod: 7},
	}
}

// IndexOf returns the position of the plant with the given id, or -1.
func IndexOf(plants []Plant, id string) int {
	for i, p := range plants {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Filter returns the plants whose type contains query, compared case-insensitively.
// An empty query matches everything. The input slice is never modified.
func Filter(plants []Plant, query string) []Plant {
	q := strings.ToLower(query)
	out := make([]Plant, 0, len(plants))
	for _, p := range plants {
		if q == "" || strings.Contains(strings.ToLower(p.Type), q) {
			out = append(out, p)
		}
	}
	return out
}
