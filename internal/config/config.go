// Package config loads the engine configuration from an optional YAML file
// and STARFIELDPEDIA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"starfieldpedia/internal/blob"
	"starfieldpedia/internal/catalog"
	"starfieldpedia/internal/core"
)

// Config holds all starfieldpedia configuration.
type Config struct {
	Dataset  DatasetConfig  `yaml:"dataset"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Blob     BlobConfig     `yaml:"blob"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Logging       LoggingConfig       `yaml:"logging"`
	Watch         WatchConfig         `yaml:"watch"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// DatasetConfig selects which documents of the source are system documents.
type DatasetConfig struct {
	Prefix string `yaml:"prefix"`
}

// CatalogConfig names the two reference documents inside the source.
type CatalogConfig struct {
	InorganicKey string `yaml:"inorganic_key"`
	OrganicKey   string `yaml:"organic_key"`
}

// BlobConfig configures the document source.
type BlobConfig struct {
	Driver string   `yaml:"driver"` // fs, memory, s3
	Root   string   `yaml:"root"`
	S3     S3Config `yaml:"s3"`
}

// S3Config mirrors the S3 driver options. Credentials are never read from
// the file; the default AWS chain or environment supplies them.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// SnapshotConfig configures the last-good-load snapshot store.
type SnapshotConfig struct {
	Driver      string `yaml:"driver"` // none, memory, sqlite, postgres
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Mode  string `yaml:"mode"`  // development, production
	Level string `yaml:"level"` // debug, info, warn, error
}

// WatchConfig configures the dataset directory watcher.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// ObservabilityConfig configures the trace log and the metrics endpoint.
type ObservabilityConfig struct {
	// TracePath appends one JSON line per service operation when set.
	TracePath string `yaml:"trace_path"`
	// Listen is the address the watch command serves /metrics and
	// /debug/vars on; empty disables the endpoint.
	Listen string `yaml:"listen"`
}

const defaultDebounce = 500 * time.Millisecond

var (
	ValidBlobDrivers     = []string{string(blob.DriverFilesystem), string(blob.DriverMemory), string(blob.DriverS3)}
	ValidSnapshotDrivers = []string{string(core.SnapshotNone), string(core.SnapshotMemory), string(core.SnapshotSQLite), string(core.SnapshotPostgres)}
	ValidLogLevels       = []string{"debug", "info", "warn", "error"}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			InorganicKey: catalog.DefaultInorganicKey,
			OrganicKey:   catalog.DefaultOrganicKey,
		},
		Blob: BlobConfig{
			Driver: string(blob.DriverFilesystem),
			Root:   "systems",
		},
		Snapshot: SnapshotConfig{
			Driver: string(core.SnapshotNone),
		},
		Logging: LoggingConfig{
			Mode:  "development",
			Level: "info",
		},
		Watch: WatchConfig{
			Debounce: defaultDebounce.String(),
		},
	}
}

// Load reads configuration from a YAML file and applies environment
// overrides. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	setString := func(dst *string, name string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setBool := func(dst *bool, name string) {
		if v := os.Getenv(name); v != "" {
			*dst = strings.EqualFold(v, "true") || v == "1"
		}
	}

	setString(&c.Dataset.Prefix, "STARFIELDPEDIA_DATASET_PREFIX")
	setString(&c.Catalog.InorganicKey, "STARFIELDPEDIA_CATALOG_INORGANIC")
	setString(&c.Catalog.OrganicKey, "STARFIELDPEDIA_CATALOG_ORGANIC")

	setString(&c.Blob.Driver, "STARFIELDPEDIA_BLOB_DRIVER")
	setString(&c.Blob.Root, "STARFIELDPEDIA_BLOB_FS_ROOT")
	setString(&c.Blob.S3.Bucket, "STARFIELDPEDIA_BLOB_S3_BUCKET")
	setString(&c.Blob.S3.Region, "STARFIELDPEDIA_BLOB_S3_REGION")
	setString(&c.Blob.S3.Endpoint, "STARFIELDPEDIA_BLOB_S3_ENDPOINT")
	setBool(&c.Blob.S3.PathStyle, "STARFIELDPEDIA_BLOB_S3_PATH_STYLE")

	setString(&c.Snapshot.Driver, "STARFIELDPEDIA_SNAPSHOT_DRIVER")
	setString(&c.Snapshot.SQLitePath, "STARFIELDPEDIA_SQLITE_PATH")
	setString(&c.Snapshot.PostgresDSN, "STARFIELDPEDIA_POSTGRES_DSN")

	setString(&c.Logging.Mode, "STARFIELDPEDIA_LOG_MODE")
	setString(&c.Logging.Level, "STARFIELDPEDIA_LOG_LEVEL")

	setString(&c.Watch.Debounce, "STARFIELDPEDIA_WATCH_DEBOUNCE")

	setString(&c.Observability.TracePath, "STARFIELDPEDIA_TRACE_PATH")
	setString(&c.Observability.Listen, "STARFIELDPEDIA_LISTEN")
}

// Validate rejects unknown drivers and unusable values.
func (c *Config) Validate() error {
	if !contains(ValidBlobDrivers, c.Blob.Driver) {
		return fmt.Errorf("invalid blob driver: %s (valid: %v)", c.Blob.Driver, ValidBlobDrivers)
	}
	if c.Blob.Driver == string(blob.DriverS3) && c.Blob.S3.Bucket == "" {
		return fmt.Errorf("blob driver s3 requires a bucket (set STARFIELDPEDIA_BLOB_S3_BUCKET)")
	}
	if !contains(ValidSnapshotDrivers, c.Snapshot.Driver) {
		return fmt.Errorf("invalid snapshot driver: %s (valid: %v)", c.Snapshot.Driver, ValidSnapshotDrivers)
	}
	if c.Logging.Level != "" && !contains(ValidLogLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	if c.Watch.Debounce != "" {
		d, err := time.ParseDuration(c.Watch.Debounce)
		if err != nil {
			return fmt.Errorf("invalid watch debounce %q: %w", c.Watch.Debounce, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid watch debounce %q: negative", c.Watch.Debounce)
		}
	}
	return nil
}

// GetWatchDebounce returns the watcher debounce window as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d < 0 {
		return defaultDebounce
	}
	return d
}

// BlobOptions converts the blob section into factory options.
func (c *Config) BlobOptions() blob.Options {
	return blob.Options{
		Driver: blob.Driver(c.Blob.Driver),
		Root:   c.Blob.Root,
		S3: blob.S3Config{
			Bucket:    c.Blob.S3.Bucket,
			Region:    c.Blob.S3.Region,
			Endpoint:  c.Blob.S3.Endpoint,
			PathStyle: c.Blob.S3.PathStyle,
		},
	}
}

// SnapshotOptions converts the snapshot section into factory options.
func (c *Config) SnapshotOptions() core.SnapshotOptions {
	return core.SnapshotOptions{
		Driver:      core.SnapshotDriver(c.Snapshot.Driver),
		SQLitePath:  c.Snapshot.SQLitePath,
		PostgresDSN: c.Snapshot.PostgresDSN,
	}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
