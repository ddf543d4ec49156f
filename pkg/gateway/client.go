package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/config"
	pkgerrors "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/errors"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/logger"
)

var (
	errBaseURLRequired = errors.New("gateway base url is required")
	errKeyRequired     = errors.New("gateway key id and secret are required")
	errLoggerRequired  = errors.New("gateway logger is required")
)

// Client exposes payment gateway primitives with centralized auth, logging,
// retries, and error mapping.
type Client struct {
	http      *http.Client
	baseURL   string
	keyID     string
	keySecret string
	logger    *logger.Logger
}

// NewClient initializes the gateway wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.GatewayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keyID == "" || keySecret == "" {
		return nil, errKeyRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		logger:    logg,
	}

	logg.Info(ctx, "payment gateway client initialized")
	return c, nil
}

// IntentParams describes a payment intent to open at the gateway.
// IdempotencyKey is sent as a header, not in the body, so the internal retry
// of the create POST cannot mint a duplicate intent.
type IntentParams struct {
	AmountCents    int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	IdempotencyKey string `json:"-"`
}

// Intent is the gateway-side record that a client completes payment against.
type Intent struct {
	ID          string `json:"id"`
	AmountCents int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
}

// PaymentRecord is the gateway's authoritative view of a captured payment.
type PaymentRecord struct {
	ID          string `json:"id"`
	IntentID    string `json:"order_id"`
	AmountCents int64  `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	Method      string `json:"method"`
}

// RefundResult reports the gateway's acceptance of a refund instruction.
type RefundResult struct {
	ID          string `json:"id"`
	PaymentID   string `json:"payment_id"`
	AmountCents int64  `json:"amount"`
	Status      string `json:"status"`
}

// CreateIntent opens a gateway intent for the given amount.
func (c *Client) CreateIntent(ctx context.Context, params IntentParams) (*Intent, error) {
	c.log(ctx, "request", "create_intent", map[string]any{
		"amount":   params.AmountCents,
		"currency": params.Currency,
		"receipt":  params.Receipt,
	})

	var intent Intent
	if err := c.do(ctx, http.MethodPost, "/v1/orders", params, &intent, params.IdempotencyKey); err != nil {
		c.log(ctx, "error", "create_intent", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "create_intent", map[string]any{
		"intent_id": intent.ID,
		"status":    intent.Status,
	})
	return &intent, nil
}

// FetchPayment returns the gateway's authoritative record for a payment.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*PaymentRecord, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}
	c.log(ctx, "request", "fetch_payment", map[string]any{"payment_id": paymentID})

	var record PaymentRecord
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &record, ""); err != nil {
		c.log(ctx, "error", "fetch_payment", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "fetch_payment", map[string]any{
		"payment_id": record.ID,
		"status":     record.Status,
	})
	return &record, nil
}

// Refund instructs the gateway to return amountCents of the captured payment.
func (c *Client) Refund(ctx context.Context, paymentID string, amountCents int64) (*RefundResult, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}
	c.log(ctx, "request", "refund", map[string]any{
		"payment_id": paymentID,
		"amount":     amountCents,
	})

	body := map[string]any{"amount": amountCents}
	var result RefundResult
	if err := c.do(ctx, http.MethodPost, "/v1/payments/"+paymentID+"/refund", body, &result, ""); err != nil {
		c.log(ctx, "error", "refund", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "refund", map[string]any{
		"refund_id": result.ID,
		"status":    result.Status,
	})
	return &result, nil
}

// VerifySignature checks the callback signature in constant time. The signed
// payload is "<intentID>|<paymentID>" and the signature is hex-encoded
// HMAC-SHA256 under the key secret.
func (c *Client) VerifySignature(intentID, paymentID, signature string) bool {
	if intentID == "" || paymentID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	fmt.Fprintf(mac, "%s|%s", intentID, paymentID)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, idempotencyKey string) error {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode gateway request")
		}
		payload = encoded
	}

	// Non-GET requests are only retried when the caller supplied an
	// idempotency key the gateway can dedupe on.
	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	retriable := method == http.MethodGet || idempotencyKey != ""
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.doOnce(ctx, method, path, payload, out, idempotencyKey)
		if err != nil && retriable && pkgerrors.HasCode(err, pkgerrors.CodeGateway) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) doOnce(ctx context.Context, method, path string, payload []byte, out any, idempotencyKey string) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build gateway request")
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "gateway request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "read gateway response")
	}

	if resp.StatusCode >= 400 {
		return c.mapGatewayError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "decode gateway response")
		}
	}
	return nil
}

func (c *Client) mapGatewayError(status int, raw []byte) error {
	var payload struct {
		Error struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	}
	description := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error.Description != "" {
		description = payload.Error.Description
	}
	return pkgerrors.New(domainCodeForStatus(status), fmt.Sprintf("gateway responded %d: %s", status, description))
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeGateway
	}
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("gateway %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("gateway %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"card", "token", "cvv", "secret", "signature", "email", "phone"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
