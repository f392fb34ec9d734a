package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"wallet-flow-backend/internal/demo"
	"wallet-flow-backend/internal/helius"
	"wallet-flow-backend/internal/server"
	"wallet-flow-backend/internal/stats"
	"wallet-flow-backend/internal/tracker"
	"wallet-flow-backend/internal/utils"
)

// Config holds all application configuration
type Config struct {
	LogLevel string         `toml:"log_level"`
	Server   server.Config  `toml:"server"`
	Indexer  helius.Config  `toml:"indexer"`
	Analysis AnalysisConfig `toml:"analysis"`
	Cache    CacheConfig    `toml:"cache"`
	Tracker  tracker.Config `toml:"tracker"`
	Demo     demo.Config    `toml:"demo"`
}

// AnalysisConfig holds the flow analysis settings
type AnalysisConfig struct {
	WindowDays              int           `toml:"window_days"`
	TopCounterparties       int           `toml:"top_counterparties"`
	TopWindowCounterparties int           `toml:"top_window_counterparties"`
	HourlyLookback          time.Duration `toml:"hourly_lookback"`
	Timezone                string        `toml:"timezone"` // IANA name, "Local" for the host zone
}

// CacheConfig selects the indexer response cache. An empty RedisAddr keeps
// the cache in process memory.
type CacheConfig struct {
	Enabled    bool   `toml:"enabled"`
	RedisAddr  string `toml:"redis_addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	KeyPrefix  string `toml:"key_prefix"`
}

// DefaultConfig returns default configuration for the entire application
func DefaultConfig() Config {
	analysis := stats.DefaultConfig()
	return Config{
		LogLevel: "INFO",
		Server:   server.DefaultConfig(),
		Indexer:  helius.DefaultConfig(),
		Analysis: AnalysisConfig{
			WindowDays:              analysis.WindowDays,
			TopCounterparties:       analysis.TopCounterparties,
			TopWindowCounterparties: analysis.TopWindowCounterparties,
			HourlyLookback:          analysis.HourlyLookback,
			Timezone:                "Local",
		},
		Cache: CacheConfig{
			Enabled:    true,
			PoolSize:   10,
			MaxRetries: 3,
			KeyPrefix:  "wfa",
		},
		Tracker: tracker.DefaultConfig(),
		Demo:    demo.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, an optional TOML file at path,
// a .env file if present, and WFA_* environment overrides, in that order.
// The result has not been validated.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return nil, utils.WrapError(err, utils.ErrorTypeConfig, "BAD_CONFIG_FILE", "failed to decode config file", "config").
					WithDetails(path)
			}
		} else if !os.IsNotExist(err) {
			return nil, utils.WrapError(err, utils.ErrorTypeConfig, "BAD_CONFIG_FILE", "cannot read config file", "config").
				WithDetails(path)
		}
	}

	// missing .env is fine
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.LogLevel, "WFA_LOG_LEVEL")

	setStr(&cfg.Server.Port, "WFA_SERVER_PORT")
	setDuration(&cfg.Server.RefreshInterval, "WFA_SERVER_REFRESH_INTERVAL")
	setBool(&cfg.Server.EnableDemo, "WFA_SERVER_ENABLE_DEMO")

	setStr(&cfg.Indexer.BaseURL, "WFA_INDEXER_BASE_URL")
	setStr(&cfg.Indexer.APIKey, "HELIUS_API_KEY")
	setStr(&cfg.Indexer.APIKey, "WFA_INDEXER_API_KEY")
	setInt(&cfg.Indexer.PageLimit, "WFA_INDEXER_PAGE_LIMIT")
	setInt(&cfg.Indexer.MaxPages, "WFA_INDEXER_MAX_PAGES")
	setDuration(&cfg.Indexer.Timeout, "WFA_INDEXER_TIMEOUT")
	setDuration(&cfg.Indexer.CacheTTL, "WFA_INDEXER_CACHE_TTL")

	setStr(&cfg.Analysis.Timezone, "WFA_ANALYSIS_TIMEZONE")
	setInt(&cfg.Analysis.TopCounterparties, "WFA_ANALYSIS_TOP_COUNTERPARTIES")

	setBool(&cfg.Cache.Enabled, "WFA_CACHE_ENABLED")
	setStr(&cfg.Cache.RedisAddr, "WFA_CACHE_REDIS_ADDR")
	setStr(&cfg.Cache.Password, "WFA_CACHE_PASSWORD")
	setInt(&cfg.Cache.DB, "WFA_CACHE_DB")

	setInt(&cfg.Tracker.Concurrency, "WFA_TRACKER_CONCURRENCY")
	setDuration(&cfg.Tracker.WalletTimeout, "WFA_TRACKER_WALLET_TIMEOUT")
}

// Validate checks the configuration for values the services cannot run with
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Server.Port) == "" {
		problems = append(problems, "server.port is required")
	}
	if u, err := url.Parse(c.Indexer.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("indexer.base_url %q is not an absolute URL", c.Indexer.BaseURL))
	}
	if c.Indexer.APIKey == "" && !c.Server.EnableDemo {
		problems = append(problems, "indexer.api_key is required when demo mode is disabled")
	}
	if c.Indexer.PageLimit < 1 || c.Indexer.PageLimit > 100 {
		problems = append(problems, "indexer.page_limit must be between 1 and 100")
	}
	if c.Indexer.MaxPages < 1 {
		problems = append(problems, "indexer.max_pages must be positive")
	}
	if c.Analysis.WindowDays < 1 {
		problems = append(problems, "analysis.window_days must be positive")
	}
	if c.Tracker.MaxWallets < 1 || c.Tracker.MaxWallets > 3 {
		problems = append(problems, "tracker.max_wallets must be between 1 and 3")
	}
	if _, err := c.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("analysis.timezone: %v", err))
	}

	if len(problems) > 0 {
		return utils.NewAppError(utils.ErrorTypeConfig, "INVALID_CONFIG", "invalid configuration", "config").
			WithDetails(strings.Join(problems, "; "))
	}
	return nil
}

// Location resolves the analysis timezone; "" and "Local" mean the host zone
func (c *Config) Location() (*time.Location, error) {
	switch c.Analysis.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	return time.LoadLocation(c.Analysis.Timezone)
}

// StatsConfig returns the analyzer configuration
func (c *Config) StatsConfig() stats.Config {
	loc, err := c.Location()
	if err != nil {
		loc = time.Local
	}
	return stats.Config{
		WindowDays:              c.Analysis.WindowDays,
		TopCounterparties:       c.Analysis.TopCounterparties,
		TopWindowCounterparties: c.Analysis.TopWindowCounterparties,
		HourlyLookback:          c.Analysis.HourlyLookback,
		Location:                loc,
	}
}

// IndexerConfig returns the indexer client configuration, sharing the
// analysis window and timezone so fetch cutoffs line up with day buckets
func (c *Config) IndexerConfig() helius.Config {
	cfg := c.Indexer
	cfg.WindowDays = c.Analysis.WindowDays
	cfg.Location = c.StatsConfig().Location
	return cfg
}

// Typed env-var helpers. Each only mutates the target when the variable is
// present and non-empty.

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
