package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for a single pipeline run.
type Config struct {
	MetaAds   MetaAdsConfig   `yaml:"meta_ads"`
	Snowflake SnowflakeConfig `yaml:"snowflake"`
	Redis     RedisConfig     `yaml:"redis"`
	Run       RunConfig       `yaml:"run"`
}

// MetaAdsConfig holds Meta Marketing API credentials and tuning.
type MetaAdsConfig struct {
	AccessToken    string `yaml:"access_token"`
	AppID          string `yaml:"app_id"`
	AppSecret      string `yaml:"app_secret"`
	AdAccountID    string `yaml:"ad_account_id"`
	BaseURL        string `yaml:"base_url"`
	PageSize       int    `yaml:"page_size"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured request timeout as a duration.
func (c MetaAdsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SnowflakeConfig holds warehouse connection settings.
type SnowflakeConfig struct {
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	Account   string `yaml:"account"`
	Warehouse string `yaml:"warehouse"`
	Database  string `yaml:"database"`
	Schema    string `yaml:"schema"`
	Role      string `yaml:"role"`
}

// RedisConfig holds the handoff/lock store connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RunConfig holds per-stage retry and lifetime tuning.
type RunConfig struct {
	ExtractMaxRetries   int `yaml:"extract_max_retries"`
	LoadMaxRetries      int `yaml:"load_max_retries"`
	LoadRetryDelaySecs  int `yaml:"load_retry_delay_seconds"`
	HandoffTTLMinutes   int `yaml:"handoff_ttl_minutes"`
	LockTTLMinutes      int `yaml:"lock_ttl_minutes"`
	LoadTimeoutSeconds  int `yaml:"load_timeout_seconds"`
}

// LoadRetryDelay returns the base delay between load connection retries.
func (c RunConfig) LoadRetryDelay() time.Duration {
	return time.Duration(c.LoadRetryDelaySecs) * time.Second
}

// HandoffTTL returns the lifetime of a stage handoff token.
func (c RunConfig) HandoffTTL() time.Duration {
	return time.Duration(c.HandoffTTLMinutes) * time.Minute
}

// LockTTL returns the lifetime of the run lock.
func (c RunConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLMinutes) * time.Minute
}

// LoadTimeout returns the per-statement timeout for warehouse operations.
func (c RunConfig) LoadTimeout() time.Duration {
	return time.Duration(c.LoadTimeoutSeconds) * time.Second
}

// Load reads and parses the configuration file, applying defaults.
// An empty path yields a default (file-less) configuration so that fully
// env-driven deployments need no config file at all.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Defaults
	if cfg.MetaAds.BaseURL == "" {
		cfg.MetaAds.BaseURL = "https://graph.facebook.com/v19.0"
	}
	if cfg.MetaAds.PageSize == 0 {
		cfg.MetaAds.PageSize = 1000
	}
	if cfg.MetaAds.TimeoutSeconds == 0 {
		cfg.MetaAds.TimeoutSeconds = 60
	}
	if cfg.Run.ExtractMaxRetries == 0 {
		cfg.Run.ExtractMaxRetries = 3
	}
	if cfg.Run.LoadMaxRetries == 0 {
		cfg.Run.LoadMaxRetries = 3
	}
	if cfg.Run.LoadRetryDelaySecs == 0 {
		cfg.Run.LoadRetryDelaySecs = 5
	}
	if cfg.Run.HandoffTTLMinutes == 0 {
		cfg.Run.HandoffTTLMinutes = 360
	}
	if cfg.Run.LockTTLMinutes == 0 {
		cfg.Run.LockTTLMinutes = 60
	}
	if cfg.Run.LoadTimeoutSeconds == 0 {
		cfg.Run.LoadTimeoutSeconds = 120
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file first (if present) so secrets can live in .env
// locally and in real env vars on the scheduler host. Environment values
// win over the file.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("META_ADS_ACCESS_TOKEN"); v != "" {
		cfg.MetaAds.AccessToken = v
	}
	if v := os.Getenv("META_ADS_APP_ID"); v != "" {
		cfg.MetaAds.AppID = v
	}
	if v := os.Getenv("META_ADS_APP_SECRET"); v != "" {
		cfg.MetaAds.AppSecret = v
	}
	if v := os.Getenv("META_ADS_AD_ACCOUNT_ID"); v != "" {
		cfg.MetaAds.AdAccountID = v
	}
	if v := os.Getenv("META_ADS_BASE_URL"); v != "" {
		cfg.MetaAds.BaseURL = v
	}

	if v := os.Getenv("SNOWFLAKE_USER"); v != "" {
		cfg.Snowflake.User = v
	}
	if v := os.Getenv("SNOWFLAKE_PASSWORD"); v != "" {
		cfg.Snowflake.Password = v
	}
	if v := os.Getenv("SNOWFLAKE_ACCOUNT"); v != "" {
		cfg.Snowflake.Account = v
	}
	if v := os.Getenv("SNOWFLAKE_WAREHOUSE"); v != "" {
		cfg.Snowflake.Warehouse = v
	}
	if v := os.Getenv("SNOWFLAKE_DATABASE"); v != "" {
		cfg.Snowflake.Database = v
	}
	if v := os.Getenv("SNOWFLAKE_SCHEMA"); v != "" {
		cfg.Snowflake.Schema = v
	}
	if v := os.Getenv("SNOWFLAKE_ROLE"); v != "" {
		cfg.Snowflake.Role = v
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}

	return cfg, nil
}
