// Package snowflake implements the load stage: idempotent, transactional
// writes of canonical batches into the meta_ads_daily warehouse table.
package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/snowflakedb/gosnowflake" // Snowflake driver

	"github.com/ignite/meta-ads-loader/internal/config"
)

// Client provides access to the Snowflake warehouse. The connection is
// scoped to one run: opened for EnsureSchema+LoadBatch and closed on every
// exit path.
type Client struct {
	cfg config.SnowflakeConfig
	db  *sql.DB
}

// NewClient opens a Snowflake connection pool.
// DSN format: user:password@account/database/schema?warehouse=xxx&role=yyy
func NewClient(cfg config.SnowflakeConfig) (*Client, error) {
	dsn := fmt.Sprintf("%s:%s@%s/%s/%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		cfg.Account,
		cfg.Database,
		cfg.Schema,
	)

	params := url.Values{}
	if cfg.Warehouse != "" {
		params.Set("warehouse", cfg.Warehouse)
	}
	if cfg.Role != "" {
		params.Set("role", cfg.Role)
	}
	if len(params) > 0 {
		dsn += "?" + params.Encode()
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, &ConnectError{Err: fmt.Errorf("opening snowflake connection: %w", err)}
	}

	// One run writes one partition; a small pool is plenty.
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Client{cfg: cfg, db: db}, nil
}

// NewClientWithDB wraps an existing database handle (used in tests).
func NewClientWithDB(db *sql.DB) *Client {
	return &Client{db: db}
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Ping verifies the connection and credentials.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return &ConnectError{Err: fmt.Errorf("pinging snowflake: %w", err)}
	}
	return nil
}
