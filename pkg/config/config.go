package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/united-manufacturing-hub/umh-utils/env"
	"gopkg.in/yaml.v3"
)

// Storage modes for the local backend
const (
	StorageFile   = "file"
	StorageMemory = "memory"
)

// Config is the full service configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Remote  RemoteConfig  `yaml:"remote"`
	Logging LoggingConfig `yaml:"logging"`
	Seed    SeedConfig    `yaml:"seed"`
	Chat    ChatConfig    `yaml:"chat"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	Mode      string `yaml:"mode"`
	DataDir   string `yaml:"data_dir"`
	KeyPrefix string `yaml:"key_prefix"`
}

// RemoteConfig configures the optional Postgres backend. An empty DSN disables it.
type RemoteConfig struct {
	DSN             string        `yaml:"dsn"`
	TablePrefix     string        `yaml:"table_prefix"`
	EnsureTables    bool          `yaml:"ensure_tables"`
	ProbeTimeout    time.Duration `yaml:"probe_timeout"`
	ProbeCollection string        `yaml:"probe_collection"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type SeedConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"`
}

type ChatConfig struct {
	RulesFile string `yaml:"rules_file"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Mode:      StorageFile,
			DataDir:   "tripdb_data",
			KeyPrefix: "tripdb_",
		},
		Remote: RemoteConfig{
			ProbeTimeout:    3 * time.Second,
			ProbeCollection: "hotels",
		},
		Logging: LoggingConfig{
			Level:  "PRODUCTION",
			Format: "CONSOLE",
		},
		Seed: SeedConfig{
			Enabled: true,
		},
	}
}

// LoadFile overlays a YAML file onto cfg. Fields absent from the file keep
// their current values.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto cfg
func ApplyEnv(cfg *Config) error {
	var err error
	if cfg.Server.Port, err = env.GetAsInt("TRIPDB_PORT", false, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to get TRIPDB_PORT from env: %w", err)
	}
	if cfg.Storage.Mode, err = env.GetAsString("TRIPDB_STORAGE", false, cfg.Storage.Mode); err != nil {
		return fmt.Errorf("failed to get TRIPDB_STORAGE from env: %w", err)
	}
	if cfg.Storage.DataDir, err = env.GetAsString("TRIPDB_DATA_DIR", false, cfg.Storage.DataDir); err != nil {
		return fmt.Errorf("failed to get TRIPDB_DATA_DIR from env: %w", err)
	}
	if cfg.Storage.KeyPrefix, err = env.GetAsString("TRIPDB_KEY_PREFIX", false, cfg.Storage.KeyPrefix); err != nil {
		return fmt.Errorf("failed to get TRIPDB_KEY_PREFIX from env: %w", err)
	}
	if cfg.Remote.DSN, err = env.GetAsString("TRIPDB_REMOTE_DSN", false, cfg.Remote.DSN); err != nil {
		return fmt.Errorf("failed to get TRIPDB_REMOTE_DSN from env: %w", err)
	}
	if cfg.Remote.EnsureTables, err = env.GetAsBool("TRIPDB_REMOTE_ENSURE_TABLES", false, cfg.Remote.EnsureTables); err != nil {
		return fmt.Errorf("failed to get TRIPDB_REMOTE_ENSURE_TABLES from env: %w", err)
	}
	probeTimeout, err := env.GetAsString("TRIPDB_PROBE_TIMEOUT", false, cfg.Remote.ProbeTimeout.String())
	if err != nil {
		return fmt.Errorf("failed to get TRIPDB_PROBE_TIMEOUT from env: %w", err)
	}
	if cfg.Remote.ProbeTimeout, err = time.ParseDuration(probeTimeout); err != nil {
		return fmt.Errorf("invalid TRIPDB_PROBE_TIMEOUT %q: %w", probeTimeout, err)
	}
	if cfg.Logging.Level, err = env.GetAsString("LOGGING_LEVEL", false, cfg.Logging.Level); err != nil {
		return fmt.Errorf("failed to get LOGGING_LEVEL from env: %w", err)
	}
	if cfg.Logging.Format, err = env.GetAsString("LOGGING_FORMAT", false, cfg.Logging.Format); err != nil {
		return fmt.Errorf("failed to get LOGGING_FORMAT from env: %w", err)
	}
	if cfg.Seed.Enabled, err = env.GetAsBool("TRIPDB_SEED", false, cfg.Seed.Enabled); err != nil {
		return fmt.Errorf("failed to get TRIPDB_SEED from env: %w", err)
	}
	if cfg.Seed.File, err = env.GetAsString("TRIPDB_SEED_FILE", false, cfg.Seed.File); err != nil {
		return fmt.Errorf("failed to get TRIPDB_SEED_FILE from env: %w", err)
	}
	if cfg.Chat.RulesFile, err = env.GetAsString("TRIPDB_CHAT_RULES", false, cfg.Chat.RulesFile); err != nil {
		return fmt.Errorf("failed to get TRIPDB_CHAT_RULES from env: %w", err)
	}
	return nil
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of precedence
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := LoadFile(&cfg, path); err != nil {
			return cfg, err
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the service cannot start with
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	switch c.Storage.Mode {
	case StorageFile:
		if strings.TrimSpace(c.Storage.DataDir) == "" {
			return fmt.Errorf("data directory is required for %s storage", StorageFile)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage mode %q (want %s or %s)", c.Storage.Mode, StorageFile, StorageMemory)
	}
	if c.Remote.ProbeTimeout <= 0 {
		return fmt.Errorf("probe timeout must be positive, got %v", c.Remote.ProbeTimeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %v", c.Server.ShutdownTimeout)
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}
