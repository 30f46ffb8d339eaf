package domain_test

import (
	"testing"

	"github.com/aretw0/verdant/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	items := []domain.Plant{
		{ID: "1", Type: "Monstera", WateringPeriod: 7},
		{ID: "2", Type: "Pothos", WateringPeriod: 7},
	}

	t.Run("case insensitive substring", func(t *testing.T) {
		got := domain.Filter(items, "mon")
		require.Len(t, got, 1)
		assert.Equal(t, "Monstera", got[0].Type)

		got = domain.Filter(items, "THO")
		require.Len(t, got, 1)
		assert.Equal(t, "Pothos", got[0].Type)
	})

	t.Run("empty query keeps order", func(t *testing.T) {
		got := domain.Filter(items, "")
		assert.Equal(t, items, got)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, domain.Filter(items, "cactus"))
	})

	t.Run("idempotent and pure", func(t *testing.T) {
		once := domain.Filter(items, "o")
		twice := domain.Filter(once, "o")
		assert.Equal(t, once, twice)
		assert.Equal(t, "Monstera", items[0].Type)
		assert.Len(t, items, 2)
	})
}

func TestPlantInput_Validate(t *testing.T) {
	tests := []struct {
		name      string
		in        domain.PlantInput
		wantField string
	}{
		{name: "valid", in: domain.PlantInput{Type: "Fern", WateringPeriod: 3}},
		{name: "blank type", in: domain.PlantInput{Type: "   ", WateringPeriod: 3}, wantField: "type"},
		{name: "zero period", in: domain.PlantInput{Type: "Fern"}, wantField: "wateringPeriod"},
		{name: "negative period", in: domain.PlantInput{Type: "Fern", WateringPeriod: -2}, wantField: "wateringPeriod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestPlantInput_WithID(t *testing.T) {
	p := domain.PlantInput{Type: "  Fern ", WateringPeriod: 3}.WithID("abc")
	assert.Equal(t, domain.Plant{ID: "abc", Type: "Fern", WateringPeriod: 3}, p)
}

func TestDefaultPlants_FreshSlice(t *testing.T) {
	a := domain.DefaultPlants()
	a[0].Type = "mutated"
	b := domain.DefaultPlants()
	assert.Equal(t, "Monstera", b[0].Type)
	assert.Len(t, b, 5)
}

func TestNewID_Format(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id := domain.NewID()
		assert.Regexp(t, `^[a-z0-9]{9}$`, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 190)
}

func TestNotFound_Wraps(t *testing.T) {
	err := domain.NotFound("42")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "42")
}
