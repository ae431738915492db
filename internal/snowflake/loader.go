package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ignite/meta-ads-loader/internal/domain"
	"github.com/ignite/meta-ads-loader/internal/pkg/logger"
)

// TableName is the warehouse table holding daily ad performance rows.
const TableName = "meta_ads_daily"

const createTableSQL = `CREATE TABLE IF NOT EXISTS meta_ads_daily (
	ad_account_id   VARCHAR,
	ad_account_name VARCHAR,
	campaign_name   VARCHAR,
	campaign_id     VARCHAR,
	adgroup_id      VARCHAR,
	adgroup_name    VARCHAR,
	cost            FLOAT,
	currency        VARCHAR,
	clicks          INT,
	impressions     INT,
	date            DATE
)`

// insertChunkSize bounds the number of rows per INSERT statement to keep
// statement size under the server limit.
const insertChunkSize = 500

// EnsureSchema creates the target table if it does not exist. Safe to call
// every run; it never alters existing data.
func (c *Client) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, createTableSQL); err != nil {
		return &ConnectError{Err: fmt.Errorf("ensuring %s schema: %w", TableName, err)}
	}
	return nil
}

// LoadBatch writes the batch into the warehouse partition for its day.
// The write is idempotent and atomic: within one transaction any existing
// rows for the window's day are deleted, then every row of the batch is
// inserted, then the transaction commits once. Re-running the same batch
// leaves the partition unchanged. Any failure rolls the whole transaction
// back; no partial partition write is ever visible.
func (c *Client) LoadBatch(ctx context.Context, batch *domain.LoadBatch) (int64, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &ConnectError{Err: fmt.Errorf("beginning load transaction: %w", err)}
	}

	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	day := batch.Window.Date()
	if _, err := tx.ExecContext(ctx, "DELETE FROM meta_ads_daily WHERE date = ?", day); err != nil {
		return 0, &StatementError{Err: fmt.Errorf("clearing partition %s: %w", day, err)}
	}

	var total int64
	for start := 0; start < len(batch.Rows); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(batch.Rows) {
			end = len(batch.Rows)
		}
		n, err := insertRows(ctx, tx, batch.Rows[start:end])
		if err != nil {
			return 0, err
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, &StatementError{Err: fmt.Errorf("committing partition %s: %w", day, err)}
	}
	committed = true

	logger.Info("batch loaded",
		"table", TableName,
		"date", day,
		"rows", fmt.Sprintf("%d", total),
	)
	return total, nil
}

// insertRows issues one multi-row INSERT for the chunk.
func insertRows(ctx context.Context, tx *sql.Tx, rows []domain.CanonicalRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO meta_ads_daily (ad_account_id, ad_account_name, campaign_name, campaign_id, adgroup_id, adgroup_name, cost, currency, clicks, impressions, date) VALUES ")

	args := make([]interface{}, 0, len(rows)*11)
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			row.AdAccountID, row.AdAccountName, row.CampaignName, row.CampaignID,
			row.AdgroupID, row.AdgroupName, row.Cost, row.Currency,
			row.Clicks, row.Impressions, row.Date,
		)
	}

	res, err := tx.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, &StatementError{Err: fmt.Errorf("inserting %d rows: %w", len(rows), err)}
	}

	n, err := res.RowsAffected()
	if err != nil {
		// Driver cannot report the count; the statement still succeeded.
		return int64(len(rows)), nil
	}
	return n, nil
}
