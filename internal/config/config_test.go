package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
mongo:
  database: dating
engine:
  regions:
    eu:
      age_min: 21
      age_max: 70
      height_min: 140
      height_max: 220
  visited_capacity: 25
  group_complaint_window: 72h
  group_block_ratio: 0.6
sweeper:
  batch_size: 50
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Mongo.Database != "dating" {
		t.Fatalf("unexpected mongo database: %s", cfg.Mongo.Database)
	}
	if cfg.Engine.VisitedCapacity != 25 {
		t.Fatalf("unexpected visited capacity: %d", cfg.Engine.VisitedCapacity)
	}
	if cfg.Engine.GroupComplaintWindow != 72*time.Hour {
		t.Fatalf("unexpected group complaint window: %s", cfg.Engine.GroupComplaintWindow)
	}
	if cfg.Engine.GroupBlockRatio != 0.6 {
		t.Fatalf("unexpected group block ratio: %v", cfg.Engine.GroupBlockRatio)
	}
	if cfg.Sweeper.BatchSize != 50 {
		t.Fatalf("unexpected sweeper batch size: %d", cfg.Sweeper.BatchSize)
	}

	eu := cfg.Engine.BoundsFor("eu")
	if eu.AgeMin != 21 || eu.HeightMax != 220 {
		t.Fatalf("unexpected eu bounds: %+v", eu)
	}
	other := cfg.Engine.BoundsFor("mars")
	if other != cfg.Engine.DefaultBounds {
		t.Fatalf("unknown region must fall back to defaults, got %+v", other)
	}

	if cfg.Engine.ProfileComplaintWindow != 30*24*time.Hour {
		t.Fatalf("profile complaint window default should stay 30 days")
	}
	if cfg.Engine.MaxPageSize != 50 {
		t.Fatalf("max page size default should stay 50")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.Engine.VisitedCapacity != 10 {
		t.Fatalf("unexpected default visited capacity: %d", cfg.Engine.VisitedCapacity)
	}
	if cfg.Engine.GroupBlockRatio != 0.5 {
		t.Fatalf("unexpected default block ratio: %v", cfg.Engine.GroupBlockRatio)
	}
	if cfg.Engine.DefaultPageSize != 20 {
		t.Fatalf("unexpected default page size: %d", cfg.Engine.DefaultPageSize)
	}
	if cfg.Engine.StoreTimeout != 5*time.Second {
		t.Fatalf("unexpected store timeout: %s", cfg.Engine.StoreTimeout)
	}
	if cfg.Log.Encoding != "json" {
		t.Fatalf("unexpected log encoding: %s", cfg.Log.Encoding)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("ENGINE_GROUP_BLOCK_RATIO", "0.75")
	t.Setenv("ENGINE_STORE_TIMEOUT", "2s")
	t.Setenv("SWEEPER_INTERVAL", "15m")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Mongo.URI != "mongodb://db:27017" {
		t.Fatalf("unexpected mongo uri: %s", cfg.Mongo.URI)
	}
	if cfg.Engine.GroupBlockRatio != 0.75 {
		t.Fatalf("unexpected block ratio: %v", cfg.Engine.GroupBlockRatio)
	}
	if cfg.Engine.StoreTimeout != 2*time.Second {
		t.Fatalf("unexpected store timeout: %s", cfg.Engine.StoreTimeout)
	}
	if cfg.Sweeper.Interval != 15*time.Minute {
		t.Fatalf("unexpected sweeper interval: %s", cfg.Sweeper.Interval)
	}
}

func TestLoadRejectsInvalidEnvValue(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("ENGINE_GROUP_BLOCK_RATIO", "half")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected parse error for non-numeric ratio")
	}
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "prod")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error when auth.jwt_secret is the default in production")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"LOG_ENCODING",
		"MONGO_URI",
		"MONGO_DATABASE",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"S3_ENDPOINT",
		"S3_ACCESS_KEY",
		"S3_SECRET_KEY",
		"S3_BUCKET",
		"S3_REGION",
		"S3_USE_SSL",
		"JWT_SECRET",
		"JWT_ISSUER",
		"JWT_LEEWAY",
		"ACCOUNTS_BASE_URL",
		"ACCOUNTS_TIMEOUT",
		"ENGINE_VISITED_CAPACITY",
		"ENGINE_PROFILE_COMPLAINT_WINDOW",
		"ENGINE_GROUP_COMPLAINT_WINDOW",
		"ENGINE_GROUP_BLOCK_RATIO",
		"ENGINE_STORE_TIMEOUT",
		"SWEEPER_INTERVAL",
		"SWEEPER_BATCH_SIZE",
		"SWEEPER_METRICS_ADDR",
	} {
		t.Setenv(key, "")
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv("APP_CONFIG", "")
	if got := ResolvePath(""); got != DefaultPath {
		t.Fatalf("unexpected default path: got %q want %q", got, DefaultPath)
	}

	t.Setenv("APP_CONFIG", "/etc/matchcore.yaml")
	if got := ResolvePath(""); got != "/etc/matchcore.yaml" {
		t.Fatalf("unexpected env path: got %q", got)
	}
	if got := ResolvePath("local.yaml"); got != "local.yaml" {
		t.Fatalf("flag must win over env: got %q", got)
	}
}
