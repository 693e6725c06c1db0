package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RaikyD/studio-booking-service/internal/domain"
	"github.com/RaikyD/studio-booking-service/internal/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey = "api-key"
	testSecret = "secret-key"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{
		BaseURL:         srv.URL,
		APIKey:          testAPIKey,
		SecretKey:       testSecret,
		URLConfirmation: "https://example.com/api/flow/confirm",
		URLReturn:       "https://example.com/api/flow/return",
		PaymentMethod:   9,
		Timeout:         2 * time.Second,
		RetryBackoff:    time.Millisecond,
	})
	return c, &calls
}

func testOrder() *domain.Order {
	return &domain.Order{
		OrderID:  "MAKA-1700000000000-42",
		Amount:   50000,
		Currency: "CLP",
		Subject:  "Maka Tatuajes - Abono",
		Customer: domain.Customer{Name: "Ana", Email: "ana@example.com", Phone: "+56 9 1234 5678"},
	}
}

func TestCreatePayment_Success(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment/create", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())

		assert.Equal(t, testAPIKey, r.PostForm.Get("apiKey"))
		assert.Equal(t, "MAKA-1700000000000-42", r.PostForm.Get("commerceOrder"))
		assert.Equal(t, "50000", r.PostForm.Get("amount"))
		assert.Equal(t, "9", r.PostForm.Get("paymentMethod"))
		assert.True(t, signature.Verify(signature.Values(r.PostForm), r.PostForm.Get("s"), testSecret))

		var optional domain.Customer
		assert.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("optional")), &optional))
		assert.Equal(t, "Ana", optional.Name)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"url":       "https://sandbox.flow.cl/app/web/pay.php",
			"token":     "tok_123",
			"flowOrder": 991,
		})
	})

	p, err := c.CreatePayment(context.Background(), testOrder())

	require.NoError(t, err)
	assert.Equal(t, "tok_123", p.Token)
	assert.Equal(t, "https://sandbox.flow.cl/app/web/pay.php?token=tok_123", p.RedirectURL)
	assert.Equal(t, int64(991), p.FlowOrder)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestCreatePayment_ErrorPayload(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":108,"message":"Invalid amount"}`))
	})

	_, err := c.CreatePayment(context.Background(), testOrder())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGatewayRejected)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestCreatePayment_4xxNotRetried(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":105,"message":"apiKey not found"}`))
	})

	_, err := c.CreatePayment(context.Background(), testOrder())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGatewayRejected)
	assert.Contains(t, err.Error(), "apiKey not found")
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestCreatePayment_5xxRetriedOnce(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.CreatePayment(context.Background(), testOrder())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestCreatePayment_RecoversAfterTransientFailure(t *testing.T) {
	var n int32
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&n, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"url":"https://flow/pay","token":"tok_9","flowOrder":1}`))
	})

	p, err := c.CreatePayment(context.Background(), testOrder())

	require.NoError(t, err)
	assert.Equal(t, "tok_9", p.Token)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestCreatePayment_MissingToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"url":"https://flow/pay"}`))
	})

	_, err := c.CreatePayment(context.Background(), testOrder())

	assert.ErrorIs(t, err, domain.ErrGatewayRejected)
}

func TestGetStatus_Success(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment/getStatus", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "tok_123", r.PostForm.Get("token"))
		assert.Equal(t, signature.Sign(map[string]any{"apiKey": testAPIKey, "token": "tok_123"}, testSecret), r.PostForm.Get("s"))

		_, _ = w.Write([]byte(`{"flowOrder":991,"commerceOrder":"MAKA-1","status":2,"amount":"50000.00","payer":"ana@example.com"}`))
	})

	st, err := c.GetStatus(context.Background(), "tok_123")

	require.NoError(t, err)
	assert.Equal(t, StatusPaid, st.StatusCode)
	assert.Equal(t, int64(50000), st.Amount)
	assert.Equal(t, "ana@example.com", st.PayerEmail)
	assert.Equal(t, "MAKA-1", st.CommerceOrder)
	assert.JSONEq(t, `{"flowOrder":991,"commerceOrder":"MAKA-1","status":2,"amount":"50000.00","payer":"ana@example.com"}`, string(st.Raw))
}

func TestGetStatus_InvalidJSON(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})

	_, err := c.GetStatus(context.Background(), "tok")

	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestGetStatus_EmptyToken(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := c.GetStatus(context.Background(), " ")

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestVerifyCallback(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://unused", APIKey: testAPIKey, SecretKey: testSecret})
	sig := signature.Sign(map[string]any{"apiKey": testAPIKey, "token": "tok"}, testSecret)

	assert.True(t, c.VerifyCallback("tok", sig))
	assert.False(t, c.VerifyCallback("tok2", sig))
	assert.False(t, c.VerifyCallback("tok", ""))
}

func TestParseAmount(t *testing.T) {
	v, err := parseAmount("50000")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), v)

	v, err = parseAmount("1500.00")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), v)

	_, err = parseAmount("10.5")
	assert.Error(t, err)
}
