package main

import (
	"os"
	"path/filepath"
	"testing"
)

func setArtifactDirEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ARTIFACT_DIR", dir)
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing-config.yaml"))
	setArtifactDirEnv(t)

	cfg := LoadConfig()

	if cfg.ListenAddr != ":8080" {
		t.Fatalf("unexpected listen addr default: %q", cfg.ListenAddr)
	}
	if cfg.DBPath != "./ohcaite.db" {
		t.Fatalf("unexpected db path default: %q", cfg.DBPath)
	}
	if cfg.RetentionDays != 90 {
		t.Fatalf("unexpected retention default: %d", cfg.RetentionDays)
	}
	if cfg.PruneSchedule != "0 3 * * *" {
		t.Fatalf("unexpected prune schedule default: %q", cfg.PruneSchedule)
	}
	if cfg.ReadTimeoutSeconds != 10 || cfg.WriteTimeoutSeconds != 30 || cfg.IdleTimeoutSeconds != 60 {
		t.Fatalf("unexpected timeout defaults: %d/%d/%d",
			cfg.ReadTimeoutSeconds, cfg.WriteTimeoutSeconds, cfg.IdleTimeoutSeconds)
	}
}

func TestLoadConfigYAMLAndEnvOverride(t *testing.T) {
	artifactDir := setArtifactDirEnv(t)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
listen_addr: ":9000"
db_path: "/tmp/yaml.db"
retention_days: 30
prune_schedule: "0 4 * * *"
read_timeout_seconds: 15
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_PATH", cfgPath)
	t.Setenv("DB_PATH", "/tmp/env.db")
	t.Setenv("RETENTION_DAYS", "14")

	cfg := LoadConfig()

	if cfg.ListenAddr != ":9000" {
		t.Fatalf("expected listen addr from yaml, got %q", cfg.ListenAddr)
	}
	if cfg.DBPath != "/tmp/env.db" {
		t.Fatalf("expected db path from env override, got %q", cfg.DBPath)
	}
	if cfg.RetentionDays != 14 {
		t.Fatalf("expected retention from env override, got %d", cfg.RetentionDays)
	}
	if cfg.PruneSchedule != "0 4 * * *" {
		t.Fatalf("expected prune schedule from yaml, got %q", cfg.PruneSchedule)
	}
	if cfg.ReadTimeoutSeconds != 15 {
		t.Fatalf("expected read timeout from yaml, got %d", cfg.ReadTimeoutSeconds)
	}
	if cfg.ArtifactDir != artifactDir {
		t.Fatalf("expected artifact dir from env, got %q", cfg.ArtifactDir)
	}
}
