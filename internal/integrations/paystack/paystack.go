package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrNotConfigured means no secret key is set; callers run in mock mode.
	ErrNotConfigured = errors.New("paystack is not configured")
	// ErrUnavailable means the gateway was reached but the call failed.
	ErrUnavailable = errors.New("payment gateway unavailable")
)

// Client is a thin HTTP client for the Paystack API. Every call carries
// an explicit deadline so a slow gateway cannot stall a request forever.
type Client struct {
	httpClient *http.Client
	secretKey  string
	baseURL    string
	loggerf    func(format string, args ...interface{})
}

func NewClient(secretKey, baseURL string, loggerf func(format string, args ...interface{})) *Client {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		secretKey:  secretKey,
		baseURL:    baseURL,
		loggerf:    loggerf,
	}
}

// Live reports whether a real secret key is configured.
func (c *Client) Live() bool { return c.secretKey != "" }

type InitializeRequest struct {
	Email     string `json:"email"`
	Amount    int64  `json:"amount"` // pesewas
	Reference string `json:"reference"`
	Currency  string `json:"currency"`
}

type InitializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type ChargeRequest struct {
	Email     string `json:"email"`
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
	Currency  string `json:"currency"`
	MobileMoney struct {
		Phone    string `json:"phone"`
		Provider string `json:"provider"` // mtn | vod | atl
	} `json:"mobile_money"`
}

type ChargeResponse struct {
	Reference   string `json:"reference"`
	Status      string `json:"status"`
	DisplayText string `json:"display_text"`
}

type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// InitializeTransaction creates a hosted checkout session for card payments.
func (c *Client) InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	if !c.Live() {
		return nil, ErrNotConfigured
	}
	if req.Currency == "" {
		req.Currency = "GHS"
	}

	var out InitializeResponse
	if err := c.post(ctx, "/transaction/initialize", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChargeMobileMoney starts a mobile-money charge; the customer approves
// it on their handset and the outcome arrives via webhook.
func (c *Client) ChargeMobileMoney(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	if !c.Live() {
		return nil, ErrNotConfigured
	}
	if req.Currency == "" {
		req.Currency = "GHS"
	}

	var out ChargeResponse
	if err := c.post(ctx, "/charge", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type VerifyResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"` // success | failed | abandoned | pending
	Amount    int64  `json:"amount"`
	ID        int64  `json:"id"`
}

// VerifyTransaction re-checks a transaction's status with the gateway.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*VerifyResponse, error) {
	if !c.Live() {
		return nil, ErrNotConfigured
	}

	var out VerifyResponse
	if err := c.get(ctx, "/transaction/verify/"+reference, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.loggerf("level=error msg=paystack request failed path=%s err=%v", req.URL.Path, err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if !env.Status {
		return fmt.Errorf("paystack: %s", env.Message)
	}
	if out != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

// ValidSignature checks the HMAC-SHA512 webhook signature over the raw
// request body.
func ValidSignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the webhook signature; used by tests and the mock gateway.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
