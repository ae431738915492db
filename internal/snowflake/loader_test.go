package snowflake

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ignite/meta-ads-loader/internal/domain"
)

func setupTestDB(t *testing.T) (*Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewClientWithDB(db), mock
}

func testBatch(rows int) *domain.LoadBatch {
	batch := &domain.LoadBatch{
		Window: domain.Day(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
	}
	for i := 0; i < rows; i++ {
		batch.Rows = append(batch.Rows, domain.CanonicalRow{
			AdAccountID:   "123",
			AdAccountName: "Acme",
			CampaignName:  "Summer",
			CampaignID:    "c1",
			AdgroupID:     "a1",
			AdgroupName:   "Set1",
			AdID:          fmt.Sprintf("ad%d", i),
			Cost:          12.50,
			Currency:      "USD",
			Clicks:        4,
			Impressions:   100,
			Date:          "2024-06-01",
		})
	}
	return batch
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	client, mock := setupTestDB(t)

	// CREATE TABLE IF NOT EXISTS is safe to run every time.
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS meta_ads_daily").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS meta_ads_daily").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := client.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	if err := client.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("Second EnsureSchema failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestEnsureSchemaErrorIsRetryable(t *testing.T) {
	client, mock := setupTestDB(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS meta_ads_daily").WillReturnError(errors.New("network unreachable"))

	err := client.EnsureSchema(context.Background())
	if err == nil {
		t.Fatal("Expected error")
	}
	var connErr *ConnectError
	if !errors.As(err, &connErr) {
		t.Errorf("Expected ConnectError, got %T: %v", err, err)
	}
}

func TestLoadBatchDeleteThenInsert(t *testing.T) {
	client, mock := setupTestDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM meta_ads_daily WHERE date").
		WithArgs("2024-06-01").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO meta_ads_daily").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	rows, err := client.LoadBatch(context.Background(), testBatch(2))
	if err != nil {
		t.Fatalf("LoadBatch failed: %v", err)
	}
	if rows != 2 {
		t.Errorf("Expected 2 committed rows, got %d", rows)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestLoadBatchIdempotentRerun(t *testing.T) {
	client, mock := setupTestDB(t)

	// Re-running the same batch performs the same delete+insert and
	// leaves the partition with the same row set.
	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM meta_ads_daily WHERE date").
			WithArgs("2024-06-01").
			WillReturnResult(sqlmock.NewResult(0, int64(i))) // second run deletes the first run's row
		mock.ExpectExec("INSERT INTO meta_ads_daily").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	for i := 0; i < 2; i++ {
		rows, err := client.LoadBatch(context.Background(), testBatch(1))
		if err != nil {
			t.Fatalf("LoadBatch run %d failed: %v", i+1, err)
		}
		if rows != 1 {
			t.Errorf("Run %d: expected 1 committed row, got %d", i+1, rows)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestLoadBatchChunksLargeBatches(t *testing.T) {
	client, mock := setupTestDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM meta_ads_daily WHERE date").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO meta_ads_daily").
		WillReturnResult(sqlmock.NewResult(0, int64(insertChunkSize)))
	mock.ExpectExec("INSERT INTO meta_ads_daily").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rows, err := client.LoadBatch(context.Background(), testBatch(insertChunkSize+1))
	if err != nil {
		t.Fatalf("LoadBatch failed: %v", err)
	}
	if rows != int64(insertChunkSize+1) {
		t.Errorf("Expected %d committed rows, got %d", insertChunkSize+1, rows)
	}
}

func TestLoadBatchInsertFailureRollsBack(t *testing.T) {
	client, mock := setupTestDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM meta_ads_daily WHERE date").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO meta_ads_daily").
		WillReturnError(errors.New("numeric value out of range"))
	mock.ExpectRollback()

	_, err := client.LoadBatch(context.Background(), testBatch(1))
	if err == nil {
		t.Fatal("Expected error")
	}
	var stmtErr *StatementError
	if !errors.As(err, &stmtErr) {
		t.Errorf("Expected StatementError, got %T: %v", err, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Expected rollback, unmet expectations: %v", err)
	}
}

func TestLoadBatchCommitFailureIsFatal(t *testing.T) {
	client, mock := setupTestDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM meta_ads_daily WHERE date").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO meta_ads_daily").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	_, err := client.LoadBatch(context.Background(), testBatch(1))
	var stmtErr *StatementError
	if !errors.As(err, &stmtErr) {
		t.Errorf("Expected StatementError, got %T: %v", err, err)
	}
}

func TestLoadBatchBeginFailureIsRetryable(t *testing.T) {
	client, mock := setupTestDB(t)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	_, err := client.LoadBatch(context.Background(), testBatch(1))
	var connErr *ConnectError
	if !errors.As(err, &connErr) {
		t.Errorf("Expected ConnectError, got %T: %v", err, err)
	}
}

func TestLoadBatchEmptyStillClearsPartition(t *testing.T) {
	client, mock := setupTestDB(t)

	// Zero raw records is a legitimate day (account paused); the run
	// still owns the partition and clears any stale rows.
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM meta_ads_daily WHERE date").
		WithArgs("2024-06-01").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	rows, err := client.LoadBatch(context.Background(), testBatch(0))
	if err != nil {
		t.Fatalf("LoadBatch failed: %v", err)
	}
	if rows != 0 {
		t.Errorf("Expected 0 rows, got %d", rows)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}
