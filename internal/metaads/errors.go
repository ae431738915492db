package metaads

import (
	"fmt"
	"net/http"
)

// Rate-limit error codes the Graph API reports alongside HTTP 400/403
// instead of a clean 429. Code 4 is app-level throttling, 17 user-level,
// 32 page-level, 613 custom rate limit.
var rateLimitCodes = map[int]bool{4: true, 17: true, 32: true, 613: true}

// APIError is a non-2xx response from the Marketing API after the retry
// budget is spent.
type APIError struct {
	StatusCode int
	Code       int
	Subcode    int
	Type       string
	Message    string
	TraceID    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("meta ads API error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
}

// RateLimited reports whether the error is API-reported throttling.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests || rateLimitCodes[e.Code]
}

// Transient reports whether the error is a server-side failure worth
// re-running the window for.
func (e *APIError) Transient() bool {
	return e.StatusCode >= 500
}

// Permanent reports whether the error indicates a caller mistake (bad
// account, expired token) that retrying cannot fix.
func (e *APIError) Permanent() bool {
	return !e.RateLimited() && !e.Transient()
}
