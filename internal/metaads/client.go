// Package metaads implements the extraction stage: paginated retrieval of
// ad-level insight records from the Meta Marketing API for one calendar day.
package metaads

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/ignite/meta-ads-loader/internal/config"
	"github.com/ignite/meta-ads-loader/internal/domain"
	"github.com/ignite/meta-ads-loader/internal/pkg/httpretry"
	"github.com/ignite/meta-ads-loader/internal/pkg/logger"
)

// insightsFields is the fixed field set requested at the ad/day grain.
// The order matches the warehouse column discussion; the API ignores order.
const insightsFields = "account_id,account_name,campaign_id,campaign_name," +
	"adset_id,adset_name,ad_id,ad_name,spend,currency,clicks,impressions," +
	"date_start,date_stop"

// maxPages bounds a single window's pagination as a safety stop against a
// misbehaving cursor; a day of per-ad rows never legitimately reaches it.
const maxPages = 500

// Client is a Meta Marketing API insights client scoped to one ad account.
// It is constructed per run and never shared across runs.
type Client struct {
	baseURL     string
	adAccountID string
	proof       string
	pageSize    int
	httpClient  httpretry.HTTPDoer
}

// NewClient creates a new insights client. The access token rides in an
// Authorization header via an oauth2 static-token transport; the
// appsecret_proof parameter (HMAC-SHA256 of the token keyed by the app
// secret) accompanies every call, as the API requires for server-to-server
// apps.
func NewClient(cfg config.MetaAdsConfig, maxRetries int) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})
	base := oauth2.NewClient(context.Background(), src)
	base.Timeout = cfg.Timeout()

	return &Client{
		baseURL:     cfg.BaseURL,
		adAccountID: cfg.AdAccountID,
		proof:       appSecretProof(cfg.AccessToken, cfg.AppSecret),
		pageSize:    cfg.PageSize,
		httpClient:  httpretry.New(base, httpretry.Options{MaxRetries: maxRetries}),
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing).
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

// appSecretProof computes the appsecret_proof parameter.
func appSecretProof(accessToken, appSecret string) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write([]byte(accessToken))
	return hex.EncodeToString(mac.Sum(nil))
}

// GetInsights retrieves every ad-level insight record for the window,
// following pagination cursors until the API signals no further pages.
// One page is in flight at a time; the API enforces a global rate budget
// per credential set that parallel fetches would blow through.
//
// A failure anywhere discards the partial result. Restarting means
// re-issuing the whole window query; the pagination cursor is not persisted.
func (c *Client) GetInsights(ctx context.Context, window domain.TimeWindow) ([]InsightRecord, error) {
	var all []InsightRecord
	after := ""

	for page := 1; ; page++ {
		resp, err := c.fetchPage(ctx, window, after)
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Data...)

		if resp.Paging == nil || resp.Paging.Next == "" || resp.Paging.Cursors.After == "" {
			break
		}
		after = resp.Paging.Cursors.After

		if page >= maxPages {
			logger.Warn("insights pagination hit safety limit",
				"ad_account_id", c.adAccountID,
				"window", window.Date(),
				"pages", strconv.Itoa(page),
			)
			break
		}
	}

	logger.Info("insights extraction complete",
		"ad_account_id", c.adAccountID,
		"window", window.Date(),
		"records", strconv.Itoa(len(all)),
	)
	return all, nil
}

// fetchPage requests one page of insights.
func (c *Client) fetchPage(ctx context.Context, window domain.TimeWindow, after string) (*insightsResponse, error) {
	params := url.Values{}
	params.Set("fields", insightsFields)
	params.Set("level", "ad")
	params.Set("time_increment", "1")
	params.Set("limit", strconv.Itoa(c.pageSize))
	params.Set("time_range", fmt.Sprintf(`{"since":"%s","until":"%s"}`, window.Date(), window.Stop.Format(domain.DateLayout)))
	params.Set("appsecret_proof", c.proof)
	if after != "" {
		params.Set("after", after)
	}

	fullURL := fmt.Sprintf("%s/act_%s/insights?%s", c.baseURL, c.adAccountID, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating insights request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching insights page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading insights response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseAPIError(resp.StatusCode, body)
	}

	var page insightsResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("parsing insights response: %w", err)
	}

	return &page, nil
}

// parseAPIError decodes the Graph error envelope into a typed error.
// An unparsable body still yields an APIError carrying the status code.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: string(body)}

	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Subcode = envelope.Error.Subcode
		apiErr.Type = envelope.Error.Type
		apiErr.Message = envelope.Error.Message
		apiErr.TraceID = envelope.Error.FBTraceID
	}
	return apiErr
}
