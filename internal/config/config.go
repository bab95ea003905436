package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the server and CLI settings.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Admin    AdminConfig    `yaml:"admin"`
	Log      LogConfig      `yaml:"log"`
	Pairing  PairingConfig  `yaml:"pairing"`
	NRDB     NRDBConfig     `yaml:"nrdb"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	BaseURL         string        `yaml:"base_url"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds the SQLite location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AdminConfig holds the organiser login.
type AdminConfig struct {
	Password        string `yaml:"password"`
	LoginsPerMinute int    `yaml:"logins_per_minute"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	HTTP   bool   `yaml:"http"`
}

// PairingConfig holds defaults for new tournaments.
type PairingConfig struct {
	ScoreFactor int    `yaml:"score_factor"`
	Seed        uint64 `yaml:"seed"`
}

// NRDBConfig holds the card database client settings.
type NRDBConfig struct {
	URL               string        `yaml:"url"`
	CachePath         string        `yaml:"cache_path"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080, ShutdownTimeout: 10 * time.Second},
		Database: DatabaseConfig{Path: "aesops.db"},
		Admin:    AdminConfig{LoginsPerMinute: 10},
		Log:      LogConfig{Level: "info", Format: "text"},
		Pairing:  PairingConfig{ScoreFactor: 3},
		NRDB: NRDBConfig{
			URL:               "https://netrunnerdb.com/api/2.0/public/cards",
			CachePath:         "ids.json",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 1,
		},
	}
}

// Load reads filename over the defaults, then applies a .env file and
// environment overrides. A missing file is not an error.
func Load(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// .env is optional; values already in the environment win.
	_ = godotenv.Load()

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("AESOPS_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AESOPS_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("AESOPS_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("AESOPS_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("AESOPS_ADMIN_PASSWORD"); v != "" {
		cfg.Admin.Password = v
	}
	if v := os.Getenv("AESOPS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("AESOPS_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("AESOPS_SCORE_FACTOR"); v != "" {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AESOPS_SCORE_FACTOR: %w", err)
		}
		cfg.Pairing.ScoreFactor = f
	}
	if v := os.Getenv("NRDB_URL"); v != "" {
		cfg.NRDB.URL = v
	}
	if v := os.Getenv("NRDB_CACHE_PATH"); v != "" {
		cfg.NRDB.CachePath = v
	}
	return nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Pairing.ScoreFactor < 1 {
		return fmt.Errorf("score_factor must be at least 1, got %d", c.Pairing.ScoreFactor)
	}
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	return nil
}
