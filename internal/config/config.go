package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	env "github.com/Netflix/go-env"
)

// Config holds the top-level streak configuration.
type Config struct {
	User   UserConfig   `toml:"user"`
	Engine EngineConfig `toml:"engine"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

// UserConfig names the default user for CLI commands.
type UserConfig struct {
	Name string `toml:"name" env:"STREAK_USER"`
	ID   string `toml:"id" env:"STREAK_USER_ID"`
}

// EngineConfig tunes per-user engines.
type EngineConfig struct {
	// MaxIntervals caps stored history per user. 0 keeps everything.
	MaxIntervals int `toml:"max_intervals" env:"STREAK_MAX_INTERVALS"`
}

// CacheConfig sizes the in-memory engine cache.
type CacheConfig struct {
	MaxEngines int `toml:"max_engines" env:"STREAK_CACHE_MAX_ENGINES"`
	TTLMinutes int `toml:"ttl_minutes" env:"STREAK_CACHE_TTL_MINUTES"`
}

// TTL returns the idle lifetime of a cached engine.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// ServerConfig controls `streak serve`.
type ServerConfig struct {
	Addr       string `toml:"addr" env:"STREAK_SERVER_ADDR"`
	RatePerSec int    `toml:"rate_per_sec" env:"STREAK_SERVER_RATE"`
	Burst      int    `toml:"burst" env:"STREAK_SERVER_BURST"`
	TrustProxy bool   `toml:"trust_proxy" env:"STREAK_SERVER_TRUST_PROXY"`

	// Metrics credentials only ever come from the environment.
	MetricsUser     string `toml:"-" env:"STREAK_METRICS_USER"`
	MetricsPassword string `toml:"-" env:"STREAK_METRICS_PASSWORD"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `toml:"level" env:"STREAK_LOG_LEVEL"`   // debug, info, warn, error
	Format string `toml:"format" env:"STREAK_LOG_FORMAT"` // text or json
	Source bool   `toml:"source" env:"STREAK_LOG_SOURCE"`
}

// Paths returns standard XDG-compliant paths.
type Paths struct {
	ConfigDir  string
	DataDir    string
	CacheDir   string
	StateDir   string
	ConfigFile string
	DBFile     string
}

// GetPaths returns the resolved paths, respecting XDG env vars.
func GetPaths() Paths {
	home, _ := os.UserHomeDir()

	configDir := envOr("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	dataDir := envOr("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))
	cacheDir := envOr("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
	stateDir := envOr("XDG_STATE_HOME", filepath.Join(home, ".local", "state"))

	streakConfig := filepath.Join(configDir, "streak")
	streakData := filepath.Join(dataDir, "streak")

	return Paths{
		ConfigDir:  streakConfig,
		DataDir:    streakData,
		CacheDir:   filepath.Join(cacheDir, "streak"),
		StateDir:   filepath.Join(stateDir, "streak"),
		ConfigFile: filepath.Join(streakConfig, "config.toml"),
		DBFile:     filepath.Join(streakData, "streak.db"),
	}
}

// EnsureDirs creates all required directories.
func (p Paths) EnsureDirs() error {
	dirs := []string{p.ConfigDir, p.DataDir, p.CacheDir, p.StateDir}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Load reads config from disk over the defaults, then applies STREAK_*
// environment overrides.
func Load() (*Config, error) {
	paths := GetPaths()
	cfg := defaultConfig()

	data, err := os.ReadFile(paths.ConfigFile)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", paths.ConfigFile, err)
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv overlays any STREAK_* variables that are set. Unset variables
// leave the current values alone.
func (c *Config) LoadFromEnv() error {
	sections := []struct {
		name string
		v    any
	}{
		{"user", &c.User},
		{"engine", &c.Engine},
		{"cache", &c.Cache},
		{"server", &c.Server},
		{"log", &c.Log},
	}
	for _, s := range sections {
		if _, err := env.UnmarshalFromEnviron(s.v); err != nil {
			return fmt.Errorf("reading %s environment overrides: %w", s.name, err)
		}
	}
	return nil
}

// Save writes config to disk.
func Save(cfg *Config) error {
	paths := GetPaths()
	if err := paths.EnsureDirs(); err != nil {
		return err
	}

	f, err := os.Create(paths.ConfigFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Initialized returns true if streak has been set up.
func Initialized() bool {
	paths := GetPaths()
	_, err := os.Stat(paths.ConfigFile)
	return err == nil
}

const (
	DefaultAddr       = "127.0.0.1:8080"
	DefaultMaxEngines = 10_000
	DefaultTTLMinutes = 30
	DefaultRatePerSec = 10
	DefaultBurst      = 20
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

func defaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			MaxEngines: DefaultMaxEngines,
			TTLMinutes: DefaultTTLMinutes,
		},
		Server: ServerConfig{
			Addr:       DefaultAddr,
			RatePerSec: DefaultRatePerSec,
			Burst:      DefaultBurst,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
