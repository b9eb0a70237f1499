// gateway/client.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// API is the slice of the payment gateway this backend depends on:
// authorize (initialize) and verify. The concrete Client talks to the real
// gateway; tests substitute a stub.
type API interface {
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error)
	Verify(ctx context.Context, reference string) (*VerifyResponse, error)
}

type InitializeRequest struct {
	Email       string         `json:"email"`
	Amount      int64          `json:"amount"` // minor units
	Currency    string         `json:"currency,omitempty"`
	Reference   string         `json:"reference"`
	CallbackURL string         `json:"callback_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type InitializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type VerifyResponse struct {
	Status          string `json:"status"` // "success" means captured
	Amount          int64  `json:"amount"` // minor units actually captured
	Currency        string `json:"currency"`
	Channel         string `json:"channel"`
	TransactionID   int64  `json:"id"`
	Reference       string `json:"reference"`
	GatewayResponse string `json:"gateway_response"`
	PaidAt          string `json:"paid_at"`
}

// Success reports whether the gateway actually captured the money.
func (v *VerifyResponse) Success() bool { return v.Status == "success" }

// envelope is the gateway's standard response wrapper.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	BaseURL   string
	SecretKey string
	HTTP      *http.Client
}

func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		HTTP:      &http.Client{Timeout: timeout},
	}
}

// Initialize asks the gateway for an authorization URL for the given
// reference and amount. No retries here; the caller surfaces failures.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: encode initialize request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gateway: build initialize request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.SecretKey)

	var out InitializeResponse
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	if out.AuthorizationURL == "" {
		return nil, fmt.Errorf("gateway: initialize returned no authorization url")
	}
	return &out, nil
}

// Verify fetches the authoritative transaction result for a reference. A
// declined transaction is NOT an error here: the caller must check
// Success() on the response. Errors mean the result is unknown (transport,
// timeout, malformed body) and the attempt may be retried later.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, fmt.Errorf("gateway: build verify request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.SecretKey)

	var out VerifyResponse
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, data any) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("gateway: read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("gateway: decode response (http %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Status {
		return fmt.Errorf("gateway: rejected request (http %d): %s", resp.StatusCode, env.Message)
	}
	if err := json.Unmarshal(env.Data, data); err != nil {
		return fmt.Errorf("gateway: decode data: %w", err)
	}
	return nil
}

// ToMinor converts a decimal currency amount to the gateway's minor units.
func ToMinor(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// FromMinor converts gateway minor units back to a decimal amount. The
// conversion happens exactly once, here, so the rest of the system only
// ever sees decimal amounts.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
