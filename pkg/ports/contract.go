package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/verdant/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunPlantRepositoryContract runs a suite of tests to verify that a PlantRepository
// implementation adheres to the defined interface contract.
// The repository's enricher must answer "10" for every plant type.
func RunPlantRepositoryContract(t *testing.T, repo PlantRepository) {
	ctx := context.Background()

	t.Run("Create and List", func(t *testing.T) {
		before, err := repo.List(ctx)
		require.NoError(t, err)

		created, err := repo.Create(ctx, domain.PlantInput{Type: "Contract Fern", WateringPeriod: 3})
		require.NoError(t, err, "Create should not return error")
		assert.NotEmpty(t, created.ID, "Create must assign an id")
		assert.Equal(t, "Contract Fern", created.Type)
		assert.Equal(t, 3, created.WateringPeriod)

		after, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, after, len(before)+1)
		assert.Equal(t, created, after[len(after)-1], "new plants are appended")
		assert.Equal(t, before, after[:len(before)], "existing plants are untouched")
	})

	t.Run("Create assigns unique ids", func(t *testing.T) {
		a, err := repo.Create(ctx, domain.PlantInput{Type: "Twin", WateringPeriod: 2})
		require.NoError(t, err)
		b, err := repo.Create(ctx, domain.PlantInput{Type: "Twin", WateringPeriod: 2})
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("Update", func(t *testing.T) {
		created, err := repo.Create(ctx, domain.PlantInput{Type: "Update Me", WateringPeriod: 4})
		require.NoError(t, err)

		updated, err := repo.Update(ctx, created.ID, domain.Plant{Type: "Updated", WateringPeriod: 6})
		require.NoError(t, err)
		assert.Equal(t, domain.Plant{ID: created.ID, Type: "Updated", WateringPeriod: 6}, updated, "update keeps the path id")

		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, list, updated)
	})

	t.Run("Update Non-Existent", func(t *testing.T) {
		_, err := repo.Update(ctx, "non-existent-"+stamp(), domain.Plant{Type: "X", WateringPeriod: 1})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		created, err := repo.Create(ctx, domain.PlantInput{Type: "Delete Me", WateringPeriod: 4})
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, created.ID), "Delete should not return error")

		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, -1, domain.IndexOf(list, created.ID))

		assert.ErrorIs(t, repo.Delete(ctx, created.ID), domain.ErrNotFound, "second Delete reports ErrNotFound")
	})

	t.Run("Enrich", func(t *testing.T) {
		created, err := repo.Create(ctx, domain.PlantInput{Type: "Enrich Me", WateringPeriod: 4})
		require.NoError(t, err)

		answer, err := repo.Enrich(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "10", answer)

		_, err = repo.Enrich(ctx, "non-existent-"+stamp())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

// RunStorageContract verifies that a Storage implementation adheres to the interface contract.
func RunStorageContract(t *testing.T, storage Storage) {
	ctx := context.Background()
	key := "contract-" + stamp()

	t.Run("Get Missing", func(t *testing.T) {
		_, found, err := storage.GetItem(ctx, "missing-"+key)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Set and Get", func(t *testing.T) {
		require.NoError(t, storage.SetItem(ctx, key, `{"hello":"world"}`))
		val, found, err := storage.GetItem(ctx, key)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `{"hello":"world"}`, val)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, storage.SetItem(ctx, key, "second"))
		val, _, err := storage.GetItem(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "second", val)
	})

	t.Run("Remove", func(t *testing.T) {
		require.NoError(t, storage.RemoveItem(ctx, key))
		_, found, err := storage.GetItem(ctx, key)
		require.NoError(t, err)
		assert.False(t, found)

		assert.NoError(t, storage.RemoveItem(ctx, key), "removing a missing key is not an error")
	})
}

func stamp() string {
	return time.Now().Format("20060102150405.000000000")
}
