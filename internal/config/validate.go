package config

import "fmt"

// ConfigError reports a missing or invalid configuration option.
// It is checked before any stage executes; a run carrying one never
// issues a network call.
type ConfigError struct {
	Side   string // "meta_ads" or "snowflake"
	Option string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required %s option %q", e.Side, e.Option)
}

// Validate checks that every required API and warehouse option is present.
// Role is optional on the Snowflake side; everything else is required.
func (c *Config) Validate() error {
	meta := map[string]string{
		"access_token":  c.MetaAds.AccessToken,
		"app_id":        c.MetaAds.AppID,
		"app_secret":    c.MetaAds.AppSecret,
		"ad_account_id": c.MetaAds.AdAccountID,
	}
	for _, opt := range []string{"access_token", "app_id", "app_secret", "ad_account_id"} {
		if meta[opt] == "" {
			return &ConfigError{Side: "meta_ads", Option: opt}
		}
	}

	sf := map[string]string{
		"user":      c.Snowflake.User,
		"password":  c.Snowflake.Password,
		"account":   c.Snowflake.Account,
		"warehouse": c.Snowflake.Warehouse,
		"database":  c.Snowflake.Database,
		"schema":    c.Snowflake.Schema,
	}
	for _, opt := range []string{"user", "password", "account", "warehouse", "database", "schema"} {
		if sf[opt] == "" {
			return &ConfigError{Side: "snowflake", Option: opt}
		}
	}

	return nil
}
