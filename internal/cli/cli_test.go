package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/verdant/internal/config"
	"github.com/aretw0/verdant/internal/logging"
	"github.com/aretw0/verdant/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGen string

func (g fakeGen) Generate(ctx context.Context, prompt string) (string, error) {
	return string(g), nil
}

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a reading test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig(t *testing.T, backend string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Backend = backend
	cfg.File.Dir = t.TempDir()
	cfg.Enrichment.Provider = config.ProviderNone
	return cfg
}

func build(t *testing.T, cfg config.Config, opts ...BuildOption) *Runtime {
	t.Helper()
	rt, err := Build(context.Background(), cfg, logging.NewNop(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func TestRunList(t *testing.T) {
	rt := build(t, testConfig(t, config.BackendMemory))
	var buf bytes.Buffer

	require.NoError(t, RunList(context.Background(), rt, Output{W: &buf}, "PLANT"))
	out := buf.String()
	assert.Contains(t, out, "| 2 | Snake Plant | 14 days |")
	assert.Contains(t, out, "| 4 | ZZ Plant | 14 days |")
	assert.NotContains(t, out, "Monstera")
}

func TestRunList_JSON(t *testing.T) {
	rt := build(t, testConfig(t, config.BackendMemory))
	var buf bytes.Buffer

	require.NoError(t, RunList(context.Background(), rt, Output{W: &buf, JSON: true}, ""))
	var plants []domain.Plant
	require.NoError(t, json.Unmarshal(buf.Bytes(), &plants))
	assert.Equal(t, domain.DefaultPlants(), plants)
}

func TestRunAdd_PersistsAcrossRuntimes(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, RunAdd(ctx, build(t, cfg), Output{W: &buf}, domain.PlantInput{Type: "Fern", WateringPeriod: 3}))
	assert.Contains(t, buf.String(), "Added ")

	buf.Reset()
	require.NoError(t, RunList(ctx, build(t, cfg), Output{W: &buf}, "fern"))
	assert.Contains(t, buf.String(), "| Fern | 3 days |")
}

func TestRunAdd_Invalid(t *testing.T) {
	rt := build(t, testConfig(t, config.BackendMemory))
	err := RunAdd(context.Background(), rt, Output{W: io.Discard}, domain.PlantInput{Type: "Fern"})
	assert.True(t, domain.IsValidation(err))
}

func TestRunRemove(t *testing.T) {
	rt := build(t, testConfig(t, config.BackendMemory))
	var buf bytes.Buffer

	err := RunRemove(context.Background(), rt, Output{W: &buf}, []string{"1", "ghost", "2"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, buf.String(), "Deleted 1.")
	assert.Contains(t, buf.String(), "Deleted 2.")
	assert.Len(t, rt.Catalog.State().Items, 3)
}

func TestRunEnrich(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)
	ctx := context.Background()

	var buf bytes.Buffer
	rt := build(t, cfg, WithTextGenerator(fakeGen("12 days")))
	require.NoError(t, RunEnrich(ctx, rt, Output{W: &buf}, "3"))
	assert.Contains(t, buf.String(), "3 should be watered every 12 days.")

	// The enriched period was written back.
	plants, err := build(t, cfg).Catalog.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, plants[2].WateringPeriod)
}

func TestRunEnrich_Disabled(t *testing.T) {
	rt := build(t, testConfig(t, config.BackendMemory))
	err := RunEnrich(context.Background(), rt, Output{W: io.Discard}, "1")
	require.True(t, domain.IsUpstream(err))
	assert.Equal(t, err.Error(), rt.Catalog.State().Error)
}

func TestBuild_Backends(t *testing.T) {
	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := testConfig(t, config.BackendRedis)
		cfg.Redis.Addr = mr.Addr()
		cfg.Redis.Lock = true

		rt := build(t, cfg)
		_, err := rt.Catalog.Add(context.Background(), domain.PlantInput{Type: "Cactus", WateringPeriod: 21})
		require.NoError(t, err)
		assert.True(t, mr.Exists("verdant:plants"))
	})

	t.Run("redis unreachable", func(t *testing.T) {
		cfg := testConfig(t, config.BackendRedis)
		cfg.Redis.Addr = "127.0.0.1:1"
		_, err := Build(context.Background(), cfg, logging.NewNop())
		assert.Error(t, err)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := testConfig(t, config.BackendSQLite)
		cfg.SQLite.Path = t.TempDir() + "/verdant.db"

		_, err := build(t, cfg).Catalog.Add(context.Background(), domain.PlantInput{Type: "Cactus", WateringPeriod: 21})
		require.NoError(t, err)

		plants, err := build(t, cfg).Catalog.Start(context.Background())
		require.NoError(t, err)
		assert.Len(t, plants, 6)
	})

	t.Run("encrypted file", func(t *testing.T) {
		cfg := testConfig(t, config.BackendFile)
		cfg.EncryptionKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=" // 32 bytes

		_, err := build(t, cfg).Catalog.Add(context.Background(), domain.PlantInput{Type: "Secret Fern", WateringPeriod: 2})
		require.NoError(t, err)

		plants, err := build(t, cfg).Catalog.Start(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Secret Fern", plants[5].Type)
	})

	t.Run("invalid encryption key", func(t *testing.T) {
		cfg := testConfig(t, config.BackendMemory)
		cfg.EncryptionKey = "c2hvcnQ="
		_, err := Build(context.Background(), cfg, logging.NewNop())
		assert.Error(t, err)
	})

	t.Run("gemini without key disables enrichment", func(t *testing.T) {
		cfg := testConfig(t, config.BackendMemory)
		cfg.Enrichment.Provider = config.ProviderGemini
		cfg.Enrichment.APIKey = ""

		rt := build(t, cfg)
		_, err := rt.Catalog.Enrich(context.Background(), "1")
		assert.True(t, domain.IsUpstream(err))
	})
}

func TestServe(t *testing.T) {
	rt := build(t, testConfig(t, config.BackendMemory))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var out syncBuffer
	go func() { done <- Serve(ctx, rt, Output{W: &out}, ln, "") }()

	base := "http://" + ln.Addr().String()
	resp, err := http.Get(base + "/plants?q=lily")
	require.NoError(t, err)
	var plants []domain.Plant
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&plants))
	resp.Body.Close()
	require.Len(t, plants, 1)
	assert.Equal(t, "Peace Lily", plants[0].Type)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `verdant_repository_operations_total{op="list",result="ok"}`)
	assert.Contains(t, string(body), "go_goroutines")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Contains(t, out.String(), "Server stopped.")
}

func TestRunWatch(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)
	watcher := build(t, cfg)
	writer := build(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- RunWatch(ctx, watcher, Output{W: &out}, WatchOptions{Interval: 20 * time.Millisecond})
	}()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "**5 plants**") }, 2*time.Second, 10*time.Millisecond)

	_, err := writer.Catalog.Add(context.Background(), domain.PlantInput{Type: "Watched Fern", WateringPeriod: 4})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "Watched Fern") }, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), "Change detected")

	cancel()
	require.NoError(t, <-done)
	assert.Contains(t, out.String(), "Watcher stopped.")
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8081", baseURL(":8081"))
	assert.Equal(t, "http://10.0.0.1:9000", baseURL("10.0.0.1:9000"))
}
