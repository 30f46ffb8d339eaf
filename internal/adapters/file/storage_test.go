package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/verdant/internal/adapters/file"
	"github.com/aretw0/verdant/pkg/adapters/persisted"
	"github.com/aretw0/verdant/pkg/domain"
	"github.com/aretw0/verdant/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_Contract(t *testing.T) {
	ports.RunStorageContract(t, file.New(t.TempDir()))
}

func TestFileStorage_AtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	storage := file.New(dir)
	ctx := context.Background()

	require.NoError(t, storage.SetItem(ctx, "root", "one"))
	require.NoError(t, storage.SetItem(ctx, "root", "two"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "root.json", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, "root.json"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestFileStorage_InvalidKey(t *testing.T) {
	storage := file.New(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"", "../escape", `a\b`, ".."} {
		assert.Error(t, storage.SetItem(ctx, key, "x"), "key %q", key)
		_, _, err := storage.GetItem(ctx, key)
		assert.Error(t, err, "key %q", key)
	}
}

func TestFileStorage_Keys(t *testing.T) {
	storage := file.New(filepath.Join(t.TempDir(), "nested"))
	ctx := context.Background()

	keys, err := storage.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, storage.SetItem(ctx, "root", "x"))
	require.NoError(t, storage.SetItem(ctx, "backup", "y"))

	keys, err = storage.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"root", "backup"}, keys)
}

func TestFileStorage_PersistedSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo := persisted.New(file.New(dir))
	created, err := repo.Create(ctx, domain.PlantInput{Type: "Fiddle Leaf Fig", WateringPeriod: 9})
	require.NoError(t, err)

	reopened := persisted.New(file.New(dir))
	plants, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Len(t, plants, len(domain.DefaultPlants())+1)
	assert.Contains(t, plants, created)
}
