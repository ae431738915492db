// Package normalize maps raw Marketing API insight records onto the
// canonical warehouse row shape. It performs no I/O and is deterministic:
// output order matches input order.
package normalize

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ignite/meta-ads-loader/internal/domain"
	"github.com/ignite/meta-ads-loader/internal/metaads"
)

// SchemaError reports a record the rename/cast table cannot map. It is
// fatal for the whole batch; one bad record means the vendor contract
// changed and nothing from this run should reach the warehouse.
type SchemaError struct {
	Field  string
	Value  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("schema mismatch: field %q %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("schema mismatch: field %q value %q %s", e.Field, e.Value, e.Reason)
}

// Normalize converts the full set of raw records for a window into a
// LoadBatch. The rename/cast table is fixed:
//
//	account_id   → ad_account_id          adset_id   → adgroup_id
//	account_name → ad_account_name        adset_name → adgroup_name
//	spend        → cost (float)           clicks     → clicks (int)
//	date_start   → date (date_stop dropped)
//
// Duplicate (ad_account_id, campaign_id, adgroup_id, ad_id, date) keys in
// the input are rejected; the extractor never legitimately produces them.
func Normalize(window domain.TimeWindow, records []metaads.InsightRecord) (*domain.LoadBatch, error) {
	rows := make([]domain.CanonicalRow, 0, len(records))
	seen := make(map[string]bool, len(records))

	for _, rec := range records {
		row, err := normalizeRecord(rec)
		if err != nil {
			return nil, err
		}

		key := row.AdAccountID + "|" + row.CampaignID + "|" + row.AdgroupID + "|" + row.AdID + "|" + row.Date
		if seen[key] {
			return nil, &SchemaError{Field: "ad_id", Value: row.AdID, Reason: "duplicates an earlier record for the same day"}
		}
		seen[key] = true

		rows = append(rows, row)
	}

	return &domain.LoadBatch{Window: window, Rows: rows}, nil
}

func normalizeRecord(rec metaads.InsightRecord) (domain.CanonicalRow, error) {
	var row domain.CanonicalRow

	required := []struct {
		field string
		value string
	}{
		{"account_id", rec.AccountID},
		{"account_name", rec.AccountName},
		{"campaign_id", rec.CampaignID},
		{"campaign_name", rec.CampaignName},
		{"adset_id", rec.AdsetID},
		{"adset_name", rec.AdsetName},
		{"ad_id", rec.AdID},
		{"spend", rec.Spend},
		{"currency", rec.Currency},
		{"clicks", rec.Clicks},
		{"impressions", rec.Impressions},
		{"date_start", rec.DateStart},
	}
	for _, r := range required {
		if r.value == "" {
			return row, &SchemaError{Field: r.field, Reason: "is missing"}
		}
	}

	cost, err := strconv.ParseFloat(rec.Spend, 64)
	if err != nil {
		return row, &SchemaError{Field: "spend", Value: rec.Spend, Reason: "is not numeric"}
	}

	clicks, err := strconv.ParseInt(rec.Clicks, 10, 64)
	if err != nil || clicks < 0 {
		return row, &SchemaError{Field: "clicks", Value: rec.Clicks, Reason: "is not a non-negative integer"}
	}

	impressions, err := strconv.ParseInt(rec.Impressions, 10, 64)
	if err != nil || impressions < 0 {
		return row, &SchemaError{Field: "impressions", Value: rec.Impressions, Reason: "is not a non-negative integer"}
	}

	if _, err := time.Parse(domain.DateLayout, rec.DateStart); err != nil {
		return row, &SchemaError{Field: "date_start", Value: rec.DateStart, Reason: "is not a date"}
	}

	return domain.CanonicalRow{
		AdAccountID:   rec.AccountID,
		AdAccountName: rec.AccountName,
		CampaignName:  rec.CampaignName,
		CampaignID:    rec.CampaignID,
		AdgroupID:     rec.AdsetID,
		AdgroupName:   rec.AdsetName,
		AdID:          rec.AdID,
		Cost:          cost,
		Currency:      rec.Currency,
		Clicks:        clicks,
		Impressions:   impressions,
		Date:          rec.DateStart,
	}, nil
}
