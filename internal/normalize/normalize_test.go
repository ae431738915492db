package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/meta-ads-loader/internal/domain"
	"github.com/ignite/meta-ads-loader/internal/metaads"
)

func window() domain.TimeWindow {
	return domain.Day(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
}

func rawRecord() metaads.InsightRecord {
	return metaads.InsightRecord{
		AccountID:    "123",
		AccountName:  "Acme",
		CampaignID:   "c1",
		CampaignName: "Summer",
		AdsetID:      "a1",
		AdsetName:    "Set1",
		AdID:         "ad1",
		AdName:       "Ad One",
		Spend:        "12.50",
		Currency:     "USD",
		Clicks:       "4",
		Impressions:  "100",
		DateStart:    "2024-06-01",
		DateStop:     "2024-06-01",
	}
}

func TestNormalizeRenameAndCast(t *testing.T) {
	batch, err := Normalize(window(), []metaads.InsightRecord{rawRecord()})
	require.NoError(t, err)
	require.Len(t, batch.Rows, 1)

	row := batch.Rows[0]
	assert.Equal(t, "123", row.AdAccountID)
	assert.Equal(t, "Acme", row.AdAccountName)
	assert.Equal(t, "c1", row.CampaignID)
	assert.Equal(t, "Summer", row.CampaignName)
	assert.Equal(t, "a1", row.AdgroupID)
	assert.Equal(t, "Set1", row.AdgroupName)
	assert.Equal(t, 12.50, row.Cost)
	assert.Equal(t, "USD", row.Currency)
	assert.Equal(t, int64(4), row.Clicks)
	assert.Equal(t, int64(100), row.Impressions)
	assert.Equal(t, "2024-06-01", row.Date)
	assert.Equal(t, "2024-06-01", batch.Window.Date())
}

func TestNormalizePreservesOrder(t *testing.T) {
	recs := make([]metaads.InsightRecord, 5)
	for i := range recs {
		recs[i] = rawRecord()
		recs[i].AdID = string(rune('a' + i))
	}

	batch, err := Normalize(window(), recs)
	require.NoError(t, err)
	require.Len(t, batch.Rows, 5)
	for i, row := range batch.Rows {
		assert.Equal(t, string(rune('a'+i)), row.AdID)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	batch, err := Normalize(window(), nil)
	require.NoError(t, err)
	assert.Empty(t, batch.Rows)
}

func TestNormalizeMissingSpendAbortsBatch(t *testing.T) {
	good := rawRecord()
	bad := rawRecord()
	bad.AdID = "ad2"
	bad.Spend = ""

	batch, err := Normalize(window(), []metaads.InsightRecord{good, bad})
	require.Error(t, err)
	assert.Nil(t, batch, "a bad record must abort the whole batch")

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "spend", schemaErr.Field)
}

func TestNormalizeNonNumericSpend(t *testing.T) {
	rec := rawRecord()
	rec.Spend = "twelve fifty"

	_, err := Normalize(window(), []metaads.InsightRecord{rec})
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "spend", schemaErr.Field)
}

func TestNormalizeNegativeClicks(t *testing.T) {
	rec := rawRecord()
	rec.Clicks = "-1"

	_, err := Normalize(window(), []metaads.InsightRecord{rec})
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "clicks", schemaErr.Field)
}

func TestNormalizeBadDate(t *testing.T) {
	rec := rawRecord()
	rec.DateStart = "June 1st"

	_, err := Normalize(window(), []metaads.InsightRecord{rec})
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "date_start", schemaErr.Field)
}

func TestNormalizeEveryRequiredField(t *testing.T) {
	fields := []struct {
		name  string
		strip func(*metaads.InsightRecord)
	}{
		{"account_id", func(r *metaads.InsightRecord) { r.AccountID = "" }},
		{"account_name", func(r *metaads.InsightRecord) { r.AccountName = "" }},
		{"campaign_id", func(r *metaads.InsightRecord) { r.CampaignID = "" }},
		{"campaign_name", func(r *metaads.InsightRecord) { r.CampaignName = "" }},
		{"adset_id", func(r *metaads.InsightRecord) { r.AdsetID = "" }},
		{"adset_name", func(r *metaads.InsightRecord) { r.AdsetName = "" }},
		{"ad_id", func(r *metaads.InsightRecord) { r.AdID = "" }},
		{"currency", func(r *metaads.InsightRecord) { r.Currency = "" }},
		{"impressions", func(r *metaads.InsightRecord) { r.Impressions = "" }},
		{"date_start", func(r *metaads.InsightRecord) { r.DateStart = "" }},
	}

	for _, f := range fields {
		t.Run(f.name, func(t *testing.T) {
			rec := rawRecord()
			f.strip(&rec)

			_, err := Normalize(window(), []metaads.InsightRecord{rec})
			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, f.name, schemaErr.Field)
		})
	}
}

func TestNormalizeRejectsDuplicateKey(t *testing.T) {
	_, err := Normalize(window(), []metaads.InsightRecord{rawRecord(), rawRecord()})
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "ad_id", schemaErr.Field)
}

func TestNormalizeDropsDateStop(t *testing.T) {
	rec := rawRecord()
	rec.DateStop = "" // date_stop is not required and never mapped

	batch, err := Normalize(window(), []metaads.InsightRecord{rec})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", batch.Rows[0].Date)
}
