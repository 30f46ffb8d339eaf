// Package config loads verdant settings from defaults, an optional YAML file and
// VERDANT_* environment variables, in that order of precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no explicit config file is given and it exists.
const DefaultPath = "verdant.yaml"

// Storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Enrichment providers.
const (
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Config is the full runtime configuration.
type Config struct {
	Backend       string           `mapstructure:"backend"`
	StorageKey    string           `mapstructure:"storage_key"`
	EncryptionKey string           `mapstructure:"encryption_key"`
	File          FileConfig       `mapstructure:"file"`
	Redis         RedisConfig      `mapstructure:"redis"`
	SQLite        SQLiteConfig     `mapstructure:"sqlite"`
	Enrichment    EnrichmentConfig `mapstructure:"enrichment"`
	HTTP          HTTPConfig       `mapstructure:"http"`
	Log           LogConfig        `mapstructure:"log"`
}

type FileConfig struct {
	Dir string `mapstructure:"dir"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
	// Lock enables the distributed write lock for catalogs shared between processes.
	Lock bool `mapstructure:"lock"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// EnrichmentConfig configures the watering-period suggestion client.
type EnrichmentConfig struct {
	Provider       string        `mapstructure:"provider"`
	Model          string        `mapstructure:"model"`
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
}

type HTTPConfig struct {
	Addr    string `mapstructure:"addr"`
	MCPAddr string `mapstructure:"mcp_addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend:    BackendFile,
		StorageKey: "plants",
		File:       FileConfig{Dir: ".verdant/data"},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "verdant:",
		},
		SQLite: SQLiteConfig{Path: ".verdant/verdant.db"},
		Enrichment: EnrichmentConfig{
			Provider:       ProviderGemini,
			Model:          "gemini-2.0-flash",
			MaxRetries:     1,
			RequestTimeout: 30 * time.Second,
		},
		HTTP: HTTPConfig{Addr: ":8080", MCPAddr: ":8081"},
		Log:  LogConfig{Level: "info", Format: "text"},
	}
}

// envBindings maps environment variables to config keys.
var envBindings = []struct {
	env  string
	path string
}{
	{"VERDANT_BACKEND", "backend"},
	{"VERDANT_STORAGE_KEY", "storage_key"},
	{"VERDANT_ENCRYPTION_KEY", "encryption_key"},
	{"VERDANT_FILE_DIR", "file.dir"},
	{"VERDANT_REDIS_ADDR", "redis.addr"},
	{"VERDANT_REDIS_PASSWORD", "redis.password"},
	{"VERDANT_REDIS_DB", "redis.db"},
	{"VERDANT_REDIS_PREFIX", "redis.prefix"},
	{"VERDANT_REDIS_TTL", "redis.ttl"},
	{"VERDANT_REDIS_LOCK", "redis.lock"},
	{"VERDANT_SQLITE_PATH", "sqlite.path"},
	{"VERDANT_ENRICH_PROVIDER", "enrichment.provider"},
	{"VERDANT_ENRICH_MODEL", "enrichment.model"},
	{"GEMINI_API_KEY", "enrichment.api_key"},
	{"VERDANT_ENRICH_API_KEY", "enrichment.api_key"},
	{"VERDANT_ENRICH_BASE_URL", "enrichment.base_url"},
	{"VERDANT_ENRICH_MAX_RETRIES", "enrichment.max_retries"},
	{"VERDANT_ENRICH_TIMEOUT", "enrichment.request_timeout"},
	{"VERDANT_ENRICH_RPS", "enrichment.rate_limit_rps"},
	{"VERDANT_HTTP_ADDR", "http.addr"},
	{"VERDANT_MCP_ADDR", "http.mcp_addr"},
	{"VERDANT_LOG_LEVEL", "log.level"},
	{"VERDANT_LOG_FORMAT", "log.format"},
}

// Load builds the configuration. An empty path reads DefaultPath if it exists;
// an explicit path must exist.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	raw, err := readFile(path)
	if err != nil {
		return Config{}, err
	}
	if raw == nil {
		raw = map[string]any{}
	}

	for _, b := range envBindings {
		if v, ok := lookup(b.env); ok && v != "" {
			setPath(raw, b.path, v)
		}
	}

	if err := decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string) (map[string]any, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return raw, nil
}

func decode(raw map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// setPath writes value at a dotted key, creating nested maps as needed.
func setPath(m map[string]any, path, value string) {
	parts := strings.Split(path, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q (want memory, file, redis or sqlite)", c.Backend)
	}
	switch c.Enrichment.Provider {
	case ProviderGemini, ProviderNone:
	default:
		return fmt.Errorf("unknown enrichment provider %q", c.Enrichment.Provider)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Enrichment.RequestTimeout < 0 {
		return errors.New("enrichment.request_timeout must not be negative")
	}
	return nil
}
