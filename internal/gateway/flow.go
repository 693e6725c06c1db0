// Package gateway is the client for the Flow payment API.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/RaikyD/studio-booking-service/internal/domain"
	"github.com/RaikyD/studio-booking-service/internal/logger"
	"github.com/RaikyD/studio-booking-service/internal/signature"
	"github.com/sethvargo/go-retry"
)

// Provider status codes reported by getStatus.
const (
	StatusPending   = 1
	StatusPaid      = 2
	StatusRejected  = 3
	StatusCancelled = 4
)

// CallbackAck is the body the gateway expects from a processed confirmation.
const CallbackAck = "PAYMENT_CONFIRMED"

const maxBody = 1 << 20

type Config struct {
	BaseURL         string
	APIKey          string
	SecretKey       string
	URLConfirmation string
	URLReturn       string
	Currency        string
	PaymentMethod   int
	Timeout         time.Duration
	RetryBackoff    time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
}

type Payment struct {
	RedirectURL string
	Token       string
	FlowOrder   int64
}

type Status struct {
	StatusCode    int
	Amount        int64
	PayerEmail    string
	CommerceOrder string
	FlowOrder     int64
	Raw           json.RawMessage
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 300 * time.Millisecond
	}
	if cfg.Currency == "" {
		cfg.Currency = "CLP"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// CallbackParams are the fields a confirmation callback signature covers.
func (c *Client) CallbackParams(token string) map[string]any {
	return map[string]any{
		"apiKey": c.cfg.APIKey,
		"token":  token,
	}
}

// VerifyCallback checks the signature the gateway attached to a callback.
func (c *Client) VerifyCallback(token, sig string) bool {
	return signature.Verify(c.CallbackParams(token), sig, c.cfg.SecretKey)
}

type createResponse struct {
	URL       string `json:"url"`
	Token     string `json:"token"`
	FlowOrder int64  `json:"flowOrder"`
}

type errorResponse struct {
	Code    json.Number `json:"code"`
	Message string      `json:"message"`
}

func (c *Client) CreatePayment(ctx context.Context, o *domain.Order) (*Payment, error) {
	optional, err := json.Marshal(o.Customer)
	if err != nil {
		return nil, fmt.Errorf("marshal optional: %w", err)
	}
	currency := o.Currency
	if currency == "" {
		currency = c.cfg.Currency
	}

	params := map[string]any{
		"apiKey":          c.cfg.APIKey,
		"commerceOrder":   o.OrderID,
		"subject":         o.Subject,
		"currency":        currency,
		"amount":          o.Amount,
		"email":           o.Customer.Email,
		"urlConfirmation": c.cfg.URLConfirmation,
		"urlReturn":       c.cfg.URLReturn,
		"optional":        string(optional),
	}
	if c.cfg.PaymentMethod > 0 {
		params["paymentMethod"] = c.cfg.PaymentMethod
	}

	var resp createResponse
	if _, err := c.post(ctx, "/payment/create", params, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.URL == "" {
		return nil, fmt.Errorf("%w: response without token", domain.ErrGatewayRejected)
	}

	logger.Info("flow payment created", "order_id", o.OrderID, "token", logger.Mask(resp.Token))
	return &Payment{
		RedirectURL: resp.URL + "?token=" + url.QueryEscape(resp.Token),
		Token:       resp.Token,
		FlowOrder:   resp.FlowOrder,
	}, nil
}

type statusResponse struct {
	FlowOrder     int64       `json:"flowOrder"`
	CommerceOrder string      `json:"commerceOrder"`
	Status        int         `json:"status"`
	Amount        json.Number `json:"amount"`
	Payer         string      `json:"payer"`
}

func (c *Client) GetStatus(ctx context.Context, token string) (*Status, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: token is empty", domain.ErrValidation)
	}

	var resp statusResponse
	raw, err := c.post(ctx, "/payment/getStatus", c.CallbackParams(token), &resp)
	if err != nil {
		return nil, err
	}

	amount, err := parseAmount(resp.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q: %v", domain.ErrGatewayUnavailable, resp.Amount, err)
	}

	return &Status{
		StatusCode:    resp.Status,
		Amount:        amount,
		PayerEmail:    resp.Payer,
		CommerceOrder: resp.CommerceOrder,
		FlowOrder:     resp.FlowOrder,
		Raw:           raw,
	}, nil
}

// post sends a signed form and decodes the JSON answer into out. Transient
// failures are retried once; gateway rejections never are.
func (c *Client) post(ctx context.Context, path string, params map[string]any, out any) (json.RawMessage, error) {
	body := signature.Form(params, c.cfg.SecretKey).Encode()
	backoff := retry.WithMaxRetries(1, retry.NewExponential(c.cfg.RetryBackoff))

	var raw []byte
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		b, err := c.do(ctx, path, body)
		if err != nil {
			if errors.Is(err, domain.ErrGatewayUnavailable) {
				logger.Warn("flow request failed, may retry", "path", path, "err", err)
				return retry.RetryableError(err)
			}
			return err
		}
		raw = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrGatewayUnavailable, path, err)
	}
	return raw, nil
}

func (c *Client) do(ctx context.Context, path, body string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrGatewayUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrGatewayRejected, resp.StatusCode, errorMessage(b))
	}

	var e errorResponse
	if json.Unmarshal(b, &e) == nil && e.Code != "" && e.Message != "" {
		return nil, fmt.Errorf("%w: code %s: %s", domain.ErrGatewayRejected, e.Code, e.Message)
	}
	return b, nil
}

func errorMessage(b []byte) string {
	var e errorResponse
	if err := json.Unmarshal(b, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return http.StatusText(http.StatusBadRequest)
}

// parseAmount accepts "50000", 50000 and "50000.00".
func parseAmount(n json.Number) (int64, error) {
	if n == "" {
		return 0, nil
	}
	if v, err := n.Int64(); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("fractional amount")
	}
	return int64(f), nil
}
