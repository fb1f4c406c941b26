package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/good-yellow-bee/breachwatch/internal/metrics"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.xposedornot.com/v1"

const (
	// minInterval is the provider's account-wide pacing requirement. It is
	// a hard external constraint, not a tunable: issuing calls faster risks
	// the provider blocking the whole account.
	minInterval = time.Second

	checkTimeout     = 10 * time.Second
	analyticsTimeout = 15 * time.Second

	// maxBodySize caps response reads; analytics payloads are well under this.
	maxBodySize = 4 << 20
)

// Config holds client settings.
type Config struct {
	BaseURL   string // defaults to DefaultBaseURL
	APIKey    string // optional, sent as x-api-key when set
	UserAgent string // optional
}

// Client talks to the breach intelligence API. All calls share one pacing
// limiter, so a single Client must be shared across the whole process for
// the provider's rate limit to actually hold.
type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a Client. Construct exactly one per process.
func NewClient(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "breachwatch"
	}
	return &Client{
		baseURL:   base,
		apiKey:    cfg.APIKey,
		userAgent: ua,
		// Per-call deadlines are applied via context; this is a backstop.
		http:    &http.Client{Timeout: analyticsTimeout + 5*time.Second},
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// CheckEmail fetches the breach summary for an address (names only).
// A 404 from the provider is returned as a KindNotFound error, which callers
// treat as "no breach".
func (c *Client) CheckEmail(ctx context.Context, email string) (*CheckResponse, error) {
	u := c.baseURL + "/check-email/" + url.PathEscape(email)
	body, err := c.get(ctx, "check", u, checkTimeout)
	if err != nil {
		return nil, err
	}
	var out CheckResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &Error{Kind: KindMalformed, Err: fmt.Errorf("decode check response: %w", err)}
	}
	return &out, nil
}

// BreachAnalytics fetches the full analytics payload for an address. The raw
// body is preserved on the response for snapshot persistence.
func (c *Client) BreachAnalytics(ctx context.Context, email string) (*AnalyticsResponse, error) {
	u := c.baseURL + "/breach-analytics?email=" + url.QueryEscape(email)
	body, err := c.get(ctx, "analytics", u, analyticsTimeout)
	if err != nil {
		return nil, err
	}
	var out AnalyticsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &Error{Kind: KindMalformed, Err: fmt.Errorf("decode analytics response: %w", err)}
	}
	out.Raw = body
	return &out, nil
}

// get performs one paced request and returns the response body for 200s, or
// a classified *Error otherwise.
func (c *Client) get(ctx context.Context, endpoint, rawurl string, timeout time.Duration) ([]byte, error) {
	// Block until the minimum interval since the previous call start has
	// elapsed. The limiter is the only shared mutable state in the engine.
	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, classifyTransport(err)
	}
	metrics.ProviderWaitSeconds.Observe(time.Since(waitStart).Seconds())

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	metrics.ProviderRequestsTotal.WithLabelValues(endpoint, statusClass(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// classifyStatus maps a non-200 status to a stable error kind.
func classifyStatus(status int) *Error {
	switch {
	case status == http.StatusNotFound:
		return &Error{Kind: KindNotFound, StatusCode: status}
	case status == http.StatusForbidden:
		return &Error{Kind: KindBlocked, StatusCode: status}
	case status == http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, StatusCode: status}
	case status >= 500:
		return &Error{Kind: KindServerError, StatusCode: status}
	default:
		return &Error{Kind: KindMalformed, StatusCode: status, Err: fmt.Errorf("unexpected status %d", status)}
	}
}

// classifyTransport maps transport-level failures; context deadlines become
// KindTimeout so the routing layer can answer 504.
func classifyTransport(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindNetwork, Err: err}
}

// statusClass buckets a status code for metrics labels.
func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}
