package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/verdant/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_InitialLoad(t *testing.T) {
	s := domain.NewState()
	s.Items = domain.DefaultPlants()

	diff := domain.Diff(nil, &s)
	require.NotNil(t, diff)
	require.NotNil(t, diff.Items)
	assert.Len(t, *diff.Items, 5)
	require.NotNil(t, diff.Loading)
	assert.False(t, *diff.Loading)
}

func TestDiff_NoChange(t *testing.T) {
	s := domain.NewState()
	s.Items = domain.DefaultPlants()
	other := s.Clone()
	assert.Nil(t, domain.Diff(&s, &other))
}

func TestDiff_Changes(t *testing.T) {
	before := domain.NewState()
	before.Items = []domain.Plant{{ID: "1", Type: "Monstera", WateringPeriod: 7}}
	before.WateringDays["1"] = 7
	before.WateringDays["gone"] = 3

	after := before.Clone()
	after.Items[0].WateringPeriod = 10
	after.WateringDays["1"] = 10
	delete(after.WateringDays, "gone")
	after.PendingEnrichmentID = ""
	after.Error = "boom"

	diff := domain.Diff(&before, &after)
	require.NotNil(t, diff)
	assert.NotNil(t, diff.Items)
	assert.Nil(t, diff.Loading)
	assert.Nil(t, diff.Adding)
	require.NotNil(t, diff.Error)
	assert.Equal(t, "boom", *diff.Error)

	require.Contains(t, diff.WateringDays, "1")
	assert.Equal(t, 10, *diff.WateringDays["1"])
	require.Contains(t, diff.WateringDays, "gone")
	assert.Nil(t, diff.WateringDays["gone"])

	raw, err := json.Marshal(diff)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"gone":null`)
	assert.NotContains(t, string(raw), `"loading"`)
}

func TestState_CloneIsDeep(t *testing.T) {
	s := domain.NewState()
	s.Items = []domain.Plant{{ID: "1", Type: "Monstera", WateringPeriod: 7}}
	s.WateringDays["1"] = 7

	c := s.Clone()
	c.Items[0].Type = "changed"
	c.WateringDays["1"] = 99

	assert.Equal(t, "Monstera", s.Items[0].Type)
	assert.Equal(t, 7, s.WateringDays["1"])
}
