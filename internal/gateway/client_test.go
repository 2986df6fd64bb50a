package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:     baseURL,
		EntityID:    "entity-1",
		BearerToken: "token-1",
		Timeout:     2 * time.Second,
	})
}

func TestClient_CreateCheckout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkouts", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "entity-1", r.PostForm.Get("entityId"))
		assert.Equal(t, "480.00", r.PostForm.Get("amount"))
		assert.Equal(t, "EUR", r.PostForm.Get("currency"))
		assert.Equal(t, "42", r.PostForm.Get("merchantTransactionId"))
		assert.Equal(t, "DB", r.PostForm.Get("paymentType"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chk-1","result":{"code":"000.200.100","description":"session created"}}`))
	}))
	defer server.Close()

	session, err := testClient(server.URL).CreateCheckout(context.Background(), CheckoutRequest{
		MerchantTransactionID: "42",
		AmountCents:           48000,
		Currency:              "EUR",
		CustomerName:          "Ana",
		CustomerEmail:         "ana@test.com",
	})
	assert.NoError(t, err)
	assert.Equal(t, "chk-1", session.ID)
	assert.Equal(t, "000.200.100", session.ResultCode)
}

func TestClient_QueryPaymentStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/checkouts/chk-1/payment", r.URL.Path)
		assert.Equal(t, "entity-1", r.URL.Query().Get("entityId"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "tx-100",
			"result": {"code": "000.000.000", "description": "Transaction succeeded"},
			"amount": "480.00",
			"currency": "EUR",
			"paymentBrand": "VISA",
			"timestamp": "2026-08-28 10:15:00.000+0000",
			"card": {"bin": "411111", "last4Digits": "1111"}
		}`))
	}))
	defer server.Close()

	outcome, err := testClient(server.URL).QueryPaymentStatus(context.Background(), "chk-1")
	assert.NoError(t, err)
	assert.Equal(t, "tx-100", outcome.TransactionID)
	assert.Equal(t, "000.000.000", outcome.ResultCode)
	assert.Equal(t, int32(48000), outcome.AmountCents)
	assert.Equal(t, "VISA", outcome.Brand)
	assert.Equal(t, "1111", outcome.CardLast4)
	assert.Equal(t, 2026, outcome.Timestamp.Year())
}

func TestClient_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := testClient(server.URL).QueryPaymentStatus(context.Background(), "chk-1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_TimeoutIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:     server.URL,
		EntityID:    "entity-1",
		BearerToken: "token-1",
		Timeout:     50 * time.Millisecond,
	})

	_, err := client.QueryPaymentStatus(context.Background(), "chk-1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_MalformedBodyIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).QueryPaymentStatus(context.Background(), "chk-1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := testClient(server.URL)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := client.QueryPaymentStatus(ctx, "chk-1")
		assert.ErrorIs(t, err, ErrUnavailable)
	}

	// The breaker is now open; the call fails without reaching the server.
	_, err := client.QueryPaymentStatus(ctx, "chk-1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAmountRoundTrip(t *testing.T) {
	assert.Equal(t, "1000.50", formatAmount(100050))
	assert.Equal(t, "0.05", formatAmount(5))
	assert.Equal(t, int32(100050), ParseAmount("1000.50"))
	assert.Equal(t, int32(0), ParseAmount(""))
	assert.Equal(t, int32(0), ParseAmount("abc"))
}
