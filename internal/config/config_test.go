package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"starfieldpedia/internal/blob"
	"starfieldpedia/internal/core"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "absent.yaml")} {
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("load %q: %v", path, err)
		}
		if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
			t.Fatalf("defaults (-want +got):\n%s", diff)
		}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("defaults should validate: %v", err)
		}
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "starfieldpedia.yaml")
	doc := `
dataset:
  prefix: systems/
blob:
  driver: memory
snapshot:
  driver: sqlite
  sqlite_path: /tmp/snap.db
logging:
  level: debug
watch:
  debounce: 2s
observability:
  trace_path: /tmp/trace.jsonl
  listen: 127.0.0.1:9464
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dataset.Prefix != "systems/" || cfg.Blob.Driver != "memory" || cfg.Snapshot.SQLitePath != "/tmp/snap.db" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	// Unset keys keep their defaults.
	if cfg.Catalog.InorganicKey == "" || cfg.Logging.Mode != "development" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.GetWatchDebounce() != 2*time.Second {
		t.Fatalf("unexpected watch config %+v", cfg.Watch)
	}
	if cfg.Observability.TracePath != "/tmp/trace.jsonl" || cfg.Observability.Listen != "127.0.0.1:9464" {
		t.Fatalf("unexpected observability config %+v", cfg.Observability)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("blob: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Run("drivers and paths", func(t *testing.T) {
		t.Setenv("STARFIELDPEDIA_BLOB_DRIVER", "s3")
		t.Setenv("STARFIELDPEDIA_BLOB_S3_BUCKET", "planets")
		t.Setenv("STARFIELDPEDIA_BLOB_S3_PATH_STYLE", "TRUE")
		t.Setenv("STARFIELDPEDIA_SNAPSHOT_DRIVER", "postgres")
		t.Setenv("STARFIELDPEDIA_POSTGRES_DSN", "postgres://db/sfp")
		t.Setenv("STARFIELDPEDIA_TRACE_PATH", "/var/log/sfp.jsonl")
		t.Setenv("STARFIELDPEDIA_LISTEN", ":9464")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		if cfg.Blob.Driver != "s3" || cfg.Blob.S3.Bucket != "planets" || !cfg.Blob.S3.PathStyle {
			t.Fatalf("blob overrides not applied: %+v", cfg.Blob)
		}
		if cfg.Snapshot.Driver != "postgres" || cfg.Snapshot.PostgresDSN != "postgres://db/sfp" {
			t.Fatalf("snapshot overrides not applied: %+v", cfg.Snapshot)
		}
		if cfg.Observability.TracePath != "/var/log/sfp.jsonl" || cfg.Observability.Listen != ":9464" {
			t.Fatalf("observability overrides not applied: %+v", cfg.Observability)
		}
	})

	t.Run("env wins over file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cfg.yaml")
		if err := os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("STARFIELDPEDIA_LOG_LEVEL", "error")
		cfg, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Logging.Level != "error" {
			t.Fatalf("level = %q", cfg.Logging.Level)
		}
	})

	t.Run("empty values are ignored", func(t *testing.T) {
		t.Setenv("STARFIELDPEDIA_BLOB_FS_ROOT", "")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		if cfg.Blob.Root != "systems" {
			t.Fatalf("root = %q", cfg.Blob.Root)
		}
	})
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown blob driver", func(c *Config) { c.Blob.Driver = "ftp" }, "blob driver"},
		{"s3 without bucket", func(c *Config) { c.Blob.Driver = "s3" }, "bucket"},
		{"unknown snapshot driver", func(c *Config) { c.Snapshot.Driver = "etcd" }, "snapshot driver"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "log level"},
		{"bad debounce", func(c *Config) { c.Watch.Debounce = "soon" }, "debounce"},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = "-1s" }, "negative"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cfg.yaml")
	cfg := DefaultConfig()
	cfg.Dataset.Prefix = "data/"
	cfg.Snapshot.Driver = "memory"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestFactoryOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Blob.Driver = "memory"
	cfg.Snapshot = SnapshotConfig{Driver: "sqlite", SQLitePath: "x.db"}
	if got := cfg.BlobOptions(); got.Driver != blob.DriverMemory || got.Root != "systems" {
		t.Fatalf("blob options %+v", got)
	}
	want := core.SnapshotOptions{Driver: core.SnapshotSQLite, SQLitePath: "x.db"}
	if diff := cmp.Diff(want, cfg.SnapshotOptions()); diff != "" {
		t.Fatalf("snapshot options (-want +got):\n%s", diff)
	}
	cfg.Watch.Debounce = "garbage"
	if cfg.GetWatchDebounce() != defaultDebounce {
		t.Fatalf("expected default debounce fallback")
	}
}
