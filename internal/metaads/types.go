package metaads

// InsightRecord is one row of the insights report as returned by the
// Marketing API. Every metric arrives as a string on the wire; casting
// happens in the normalizer, never here.
type InsightRecord struct {
	AccountID    string `json:"account_id"`
	AccountName  string `json:"account_name"`
	CampaignID   string `json:"campaign_id"`
	CampaignName string `json:"campaign_name"`
	AdsetID      string `json:"adset_id"`
	AdsetName    string `json:"adset_name"`
	AdID         string `json:"ad_id"`
	AdName       string `json:"ad_name"`
	Spend        string `json:"spend"`
	Currency     string `json:"currency"`
	Clicks       string `json:"clicks"`
	Impressions  string `json:"impressions"`
	DateStart    string `json:"date_start"`
	DateStop     string `json:"date_stop"`
}

// insightsResponse is one page of the insights endpoint.
type insightsResponse struct {
	Data   []InsightRecord `json:"data"`
	Paging *paging         `json:"paging"`
}

type paging struct {
	Cursors cursors `json:"cursors"`
	Next    string  `json:"next"`
}

type cursors struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// errorResponse is the Graph API error envelope.
type errorResponse struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		Subcode   int    `json:"error_subcode"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}
