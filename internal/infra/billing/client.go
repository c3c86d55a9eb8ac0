package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"plek/internal/app/policies"
)

// Client verifies purchases against the external billing provider. Calls go
// through a circuit breaker so a degraded provider fails fast instead of
// stalling every confirmation.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Logger  *slog.Logger
	breaker *gobreaker.CircuitBreaker
}

func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	c := &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: timeout},
		Logger:  logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "billing",
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 2
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("billing circuit breaker state change", "from", from.String(), "to", to.String())
			}
		},
	})
	return c
}

func (c *Client) HasRecentNonRefundedTransaction(ctx context.Context, customerID string, within time.Duration) (bool, error) {
	query := url.Values{}
	query.Set("customer", customerID)
	query.Set("within_seconds", strconv.FormatInt(int64(within.Seconds()), 10))
	query.Set("exclude_refunded", "true")
	return c.check(ctx, "/v1/transactions/recent", query)
}

func (c *Client) HasActiveEntitlement(ctx context.Context, customerID string) (bool, error) {
	query := url.Values{}
	query.Set("customer", customerID)
	return c.check(ctx, "/v1/entitlements/active", query)
}

type checkResponse struct {
	Found bool `json:"found"`
}

func (c *Client) check(ctx context.Context, path string, query url.Values) (bool, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+query.Encode(), nil)
		if err != nil {
			return false, err
		}
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
		req.Header.Set("Accept", "application/json")
		resp, err := c.HTTP.Do(req)
		if err != nil {
			return false, fmt.Errorf("%w: %w", policies.ErrBillingUnavailable, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		if resp.StatusCode != http.StatusOK {
			return false, fmt.Errorf("%w: provider returned %d", policies.ErrBillingUnavailable, resp.StatusCode)
		}
		var body checkResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return false, fmt.Errorf("%w: decode: %w", policies.ErrBillingUnavailable, err)
		}
		return body.Found, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

var _ policies.BillingPort = (*Client)(nil)
