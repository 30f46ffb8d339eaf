package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/aretw0/verdant/pkg/adapters/persisted"
	"github.com/aretw0/verdant/pkg/domain"
	"github.com/aretw0/verdant/pkg/persistence/middleware"
	"github.com/aretw0/verdant/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunStorageContract(t, mw(NewMockStorage()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := NewMockStorage()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secure := mw(underlying)
	ctx := context.Background()

	require.NoError(t, secure.SetItem(ctx, "root", `{"secret":"my-secret-sauce"}`))

	// The underlying storage only sees the envelope.
	raw, found, err := underlying.GetItem(ctx, "root")
	require.NoError(t, err)
	require.True(t, found)
	assert.NotContains(t, raw, "my-secret-sauce")
	assert.Contains(t, raw, "__encrypted__")

	got, found, err := secure.GetItem(ctx, "root")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"secret":"my-secret-sauce"}`, got)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := NewMockStorage()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	secureOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, secureOld.SetItem(ctx, "root", "encrypted-with-old-key"))

	secureNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	got, _, err := secureNew.GetItem(ctx, "root")
	require.NoError(t, err, "fallback key should decrypt")
	assert.Equal(t, "encrypted-with-old-key", got)

	require.NoError(t, secureNew.SetItem(ctx, "root", "encrypted-with-new-key"))

	_, _, err = secureOld.GetItem(ctx, "root")
	assert.Error(t, err, "old key alone cannot read new-key data")
}

func TestEncryptionMiddleware_PlaintextRejected(t *testing.T) {
	underlying := NewMockStorage()
	require.NoError(t, underlying.SetItem(context.Background(), "root", `{"key":"root","plants":"[]"}`))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, _, err := secure.GetItem(context.Background(), "root")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_PersistedRepository(t *testing.T) {
	underlying := NewMockStorage()
	key := generateKey(t)
	ctx := context.Background()

	repo := persisted.New(middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})(underlying))
	created, err := repo.Create(ctx, domain.PlantInput{Type: "Secret Orchid", WateringPeriod: 8})
	require.NoError(t, err)

	raw, _, _ := underlying.GetItem(ctx, persisted.DefaultKey)
	assert.NotContains(t, raw, "Secret Orchid")

	plants, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, plants, created)

	// A reader with the wrong key degrades to the seed list.
	other := persisted.New(middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying))
	plants, err = other.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPlants(), plants)

	// A writer with the wrong key must not replace the record it cannot read.
	_, err = other.Create(ctx, domain.PlantInput{Type: "Fern", WateringPeriod: 3})
	var pe *domain.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "read", pe.Op)

	plants, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, plants, created)
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)
	got, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = middleware.ParseKey("not base64!")
	assert.Error(t, err)

	_, err = middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte("short-key")))
	assert.Error(t, err)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}
