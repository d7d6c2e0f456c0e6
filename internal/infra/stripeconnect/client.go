// Package stripeconnect is the payments provider client. It speaks the
// provider's form-encoded REST API directly: connected accounts, hosted
// onboarding links, charges, transfers, catalog, payment links and payouts.
//
// Calls are never retried here — a replayed charge is a double charge.
// The only resilience applied is a bulkhead capping concurrent calls.
package stripeconnect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/holzmann/marketpay-go/internal/infra/resilience"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("stripeconnect")

// Client wraps HTTP calls to the payments provider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
	bulkhead   *resilience.Bulkhead
	logger     *zap.Logger
}

// NewClient creates a provider client. baseURL is the provider API root
// (override it to point at a mock in tests).
func NewClient(httpClient *http.Client, baseURL, secretKey string, bulkhead *resilience.Bulkhead, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		bulkhead:   bulkhead,
		logger:     logger,
	}
}

// apiError is the provider's error envelope.
type apiError struct {
	Err struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// doForm executes one form-encoded request. account, when non-empty, scopes
// the call to a connected account via the provider's account header.
func (c *Client) doForm(ctx context.Context, method, path string, form url.Values, account string, out any) error {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return err
	}
	defer c.bulkhead.Release()

	var body io.Reader
	if method != http.MethodGet && form != nil {
		body = strings.NewReader(form.Encode())
	}

	endpoint := c.baseURL + path
	if method == http.MethodGet && form != nil && len(form) > 0 {
		endpoint += "?" + form.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if account != "" {
		req.Header.Set("Stripe-Account", account)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("provider: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		if json.Unmarshal(raw, &ae) == nil && ae.Err.Message != "" {
			c.logger.Warn("provider: API error",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.String("type", ae.Err.Type),
				zap.String("code", ae.Err.Code),
				zap.String("message", ae.Err.Message),
			)
			return fmt.Errorf("provider %s: %s (%s)", path, ae.Err.Message, ae.Err.Type)
		}
		c.logger.Warn("provider: non-2xx response",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(raw)),
		)
		return fmt.Errorf("provider %s returned status %d", path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}
