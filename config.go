package main

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr  string `yaml:"listen_addr"`
	ArtifactDir string `yaml:"artifact_dir"`
	DBPath      string `yaml:"db_path"`

	RetentionDays int    `yaml:"retention_days"`
	PruneSchedule string `yaml:"prune_schedule"`

	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int `yaml:"idle_timeout_seconds"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.ListenAddr, "LISTEN_ADDR")
	envOverride(&cfg.ArtifactDir, "ARTIFACT_DIR")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverrideInt(&cfg.RetentionDays, "RETENTION_DAYS")
	envOverride(&cfg.PruneSchedule, "PRUNE_SCHEDULE")
	envOverrideInt(&cfg.ReadTimeoutSeconds, "READ_TIMEOUT_SECONDS")
	envOverrideInt(&cfg.WriteTimeoutSeconds, "WRITE_TIMEOUT_SECONDS")
	envOverrideInt(&cfg.IdleTimeoutSeconds, "IDLE_TIMEOUT_SECONDS")

	// Defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.ArtifactDir == "" {
		cfg.ArtifactDir = "./artifacts"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./ohcaite.db"
	}
	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = 90
	}
	if cfg.PruneSchedule == "" {
		cfg.PruneSchedule = "0 3 * * *"
	}
	if cfg.ReadTimeoutSeconds == 0 {
		cfg.ReadTimeoutSeconds = 10
	}
	if cfg.WriteTimeoutSeconds == 0 {
		cfg.WriteTimeoutSeconds = 30
	}
	if cfg.IdleTimeoutSeconds == 0 {
		cfg.IdleTimeoutSeconds = 60
	}

	// Validate
	if cfg.RetentionDays < 1 {
		log.Fatalf("invalid retention_days '%d': must be >= 1", cfg.RetentionDays)
	}
	if cfg.ReadTimeoutSeconds < 1 || cfg.WriteTimeoutSeconds < 1 || cfg.IdleTimeoutSeconds < 1 {
		log.Fatalf("invalid server timeouts: read=%d write=%d idle=%d, all must be >= 1",
			cfg.ReadTimeoutSeconds, cfg.WriteTimeoutSeconds, cfg.IdleTimeoutSeconds)
	}
	if info, err := os.Stat(cfg.ArtifactDir); err != nil || !info.IsDir() {
		log.Fatalf("artifact_dir '%s' is not a readable directory", cfg.ArtifactDir)
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
