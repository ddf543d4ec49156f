package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/config"
	pkgerrors "github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/errors"
	"github.com/RudrakshTaya/Ecommerce-sellerDashboard-sub000/pkg/logger"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	logg := logger.New(logger.Options{Level: zerolog.Disabled, Output: io.Discard})
	c, err := NewClient(context.Background(), config.GatewayConfig{
		BaseURL:   baseURL,
		KeyID:     "key_test",
		KeySecret: "secret_test",
		Timeout:   2 * time.Second,
	}, logg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func signPayload(secret, intentID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s|%s", intentID, paymentID)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if user, pass, ok := r.BasicAuth(); !ok || user != "key_test" || pass != "secret_test" {
			t.Fatalf("missing basic auth")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"intent_123","amount":50000,"currency":"USD","status":"created"}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	intent, err := c.CreateIntent(context.Background(), IntentParams{AmountCents: 50000, Currency: "USD", Receipt: "ORD-1"})
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	if intent.ID != "intent_123" || intent.AmountCents != 50000 {
		t.Fatalf("unexpected intent %+v", intent)
	}
}

func TestFetchPaymentMapsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"code":"NOT_FOUND","description":"payment missing"}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.FetchPayment(context.Background(), "pay_missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND code, got %v", err)
	}
}

func TestServerErrorsAreRetried(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"id":"pay_9","order_id":"intent_9","amount":1200,"currency":"USD","status":"captured","method":"card"}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	record, err := c.FetchPayment(context.Background(), "pay_9")
	if err != nil {
		t.Fatalf("fetch payment: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if record.Status != "captured" {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestCreateIntentRetryCarriesIdempotencyKey(t *testing.T) {
	attempts := 0
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"id":"intent_7","amount":1200,"currency":"USD","status":"created"}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	intent, err := c.CreateIntent(context.Background(), IntentParams{
		AmountCents:    1200,
		Currency:       "USD",
		Receipt:        "ORD-7",
		IdempotencyKey: "order-7",
	})
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	if intent.ID != "intent_7" {
		t.Fatalf("unexpected intent %+v", intent)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	for i, key := range keys {
		if key != "order-7" {
			t.Fatalf("attempt %d missing idempotency key, got %q", i+1, key)
		}
	}
}

func TestUnkeyedPostIsNotRetried(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Refund(context.Background(), "pay_1", 500)
	if err == nil {
		t.Fatalf("expected gateway error")
	}
	if !pkgerrors.HasCode(err, pkgerrors.CodeGateway) {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 1 {
		t.Fatalf("refund without a dedupe key must not be retried, got %d attempts", attempts)
	}
}

func TestRefundValidatesAmount(t *testing.T) {
	c := newTestClient(t, "http://localhost:0")
	_, err := c.Refund(context.Background(), "pay_1", 0)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestVerifySignature(t *testing.T) {
	c := newTestClient(t, "http://localhost:0")

	good := signPayload("secret_test", "intent_1", "pay_1")
	if !c.VerifySignature("intent_1", "pay_1", good) {
		t.Fatal("expected valid signature to verify")
	}

	// Signature over different ids must not verify.
	if c.VerifySignature("intent_1", "pay_2", good) {
		t.Fatal("expected signature mismatch")
	}

	// Wrong secret must not verify.
	bad := signPayload("other_secret", "intent_1", "pay_1")
	if c.VerifySignature("intent_1", "pay_1", bad) {
		t.Fatal("expected signature from wrong secret to fail")
	}

	if c.VerifySignature("", "pay_1", good) || c.VerifySignature("intent_1", "pay_1", "") {
		t.Fatal("expected empty components to fail")
	}
}

func TestDomainCodeForStatus(t *testing.T) {
	tests := []struct {
		status int
		code   pkgerrors.Code
	}{
		{http.StatusUnauthorized, pkgerrors.CodeUnauthorized},
		{http.StatusForbidden, pkgerrors.CodeForbidden},
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusConflict, pkgerrors.CodeConflict},
		{http.StatusTooManyRequests, pkgerrors.CodeRateLimit},
		{http.StatusBadRequest, pkgerrors.CodeValidation},
		{http.StatusInternalServerError, pkgerrors.CodeGateway},
		{http.StatusBadGateway, pkgerrors.CodeGateway},
	}
	for _, tt := range tests {
		if got := domainCodeForStatus(tt.status); got != tt.code {
			t.Fatalf("status %d expected %s got %s", tt.status, tt.code, got)
		}
	}
}

func TestRedact(t *testing.T) {
	out := redact("gateway_signature", "abc123")
	if out != "[REDACTED]" {
		t.Fatalf("expected redacted value, got %v", out)
	}
	if v := redact("status", "ok"); v != "ok" {
		t.Fatalf("unexpected redaction for safe key")
	}
}
