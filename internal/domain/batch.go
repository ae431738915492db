package domain

// CanonicalRow is the warehouse-bound shape of one insight record, keyed by
// (ad_account_id, campaign_id, adgroup_id, ad_id, date) within a run.
type CanonicalRow struct {
	AdAccountID   string  `json:"ad_account_id"`
	AdAccountName string  `json:"ad_account_name"`
	CampaignName  string  `json:"campaign_name"`
	CampaignID    string  `json:"campaign_id"`
	AdgroupID     string  `json:"adgroup_id"`
	AdgroupName   string  `json:"adgroup_name"`
	AdID          string  `json:"ad_id"`
	Cost          float64 `json:"cost"`
	Currency      string  `json:"currency"`
	Clicks        int64   `json:"clicks"`
	Impressions   int64   `json:"impressions"`
	Date          string  `json:"date"`
}

// LoadBatch is the unit of atomicity for loading: all rows for one window
// land in the warehouse together or not at all.
type LoadBatch struct {
	Window TimeWindow     `json:"window"`
	Rows   []CanonicalRow `json:"rows"`
}
