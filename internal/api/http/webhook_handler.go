package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"stayhub-backend/internal/gateway"
	"stayhub-backend/internal/logger"
	"stayhub-backend/internal/service"
)

// WebhookHandler receives asynchronous payment notifications from the
// gateway. The gateway retries undelivered notifications, so the handler
// acknowledges with 200 before processing; reconciliation is idempotent
// and absorbs duplicate deliveries.
type WebhookHandler struct {
	reconciler service.PaymentReconciler
	secret     []byte
	// timeout bounds the detached reconciliation, which outlives the
	// request context.
	timeout time.Duration
}

func NewWebhookHandler(reconciler service.PaymentReconciler, secret string) *WebhookHandler {
	return &WebhookHandler{
		reconciler: reconciler,
		secret:     []byte(secret),
		timeout:    30 * time.Second,
	}
}

type webhookPayload struct {
	ID                    string `json:"id"`
	MerchantTransactionID string `json:"merchantTransactionId"`
	NDC                   string `json:"ndc"`
	Amount                string `json:"amount"`
	Currency              string `json:"currency"`
	PaymentBrand          string `json:"paymentBrand"`
	Timestamp             string `json:"timestamp"`
	Result                struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"result"`
	Card struct {
		Bin         string `json:"bin"`
		Last4Digits string `json:"last4Digits"`
	} `json:"card"`
}

func (h *WebhookHandler) HandleNotification(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	if !h.verifySignature(body, r.Header.Get("X-Gateway-Signature")) {
		logger.Warn("Webhook with invalid signature rejected", "remote_addr", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		// Acknowledged anyway: a malformed body will never become valid
		// on redelivery.
		logger.Error("Malformed webhook payload", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	// Ack before processing so gateway retries are driven by delivery,
	// not by our processing latency.
	w.WriteHeader(http.StatusOK)

	bookingID, err := strconv.ParseInt(payload.MerchantTransactionID, 10, 32)
	if err != nil || bookingID <= 0 {
		logger.Warn("Webhook without usable merchant transaction id",
			"merchant_transaction_id", payload.MerchantTransactionID)
		return
	}
	if payload.Result.Code == "" {
		logger.Warn("Webhook without result code", "booking_id", bookingID)
		return
	}

	outcome := outcomeFromWebhook(&payload)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		result, err := h.reconciler.Apply(ctx, int32(bookingID), outcome, gateway.TriggerWebhook)
		if err != nil {
			logger.Error("Webhook reconciliation failed", "booking_id", bookingID, "error", err)
			return
		}
		logger.Info("Webhook reconciled",
			"booking_id", bookingID,
			"outcome", result.Outcome.String(),
			"applied", result.Applied,
			"already_confirmed", result.AlreadyConfirmed)
	}()
}

// verifySignature checks the HMAC-SHA256 of the raw body against the
// X-Gateway-Signature header.
func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if len(h.secret) == 0 || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func outcomeFromWebhook(p *webhookPayload) *gateway.PaymentOutcome {
	outcome := &gateway.PaymentOutcome{
		CheckoutID:        p.NDC,
		TransactionID:     p.ID,
		ResultCode:        p.Result.Code,
		ResultDescription: p.Result.Description,
		AmountCents:       gateway.ParseAmount(p.Amount),
		Currency:          p.Currency,
		Brand:             p.PaymentBrand,
		CardBin:           p.Card.Bin,
		CardLast4:         p.Card.Last4Digits,
	}
	if ts, err := time.Parse("2006-01-02 15:04:05.000-0700", p.Timestamp); err == nil {
		outcome.Timestamp = ts
	} else {
		outcome.Timestamp = time.Now()
	}
	return outcome
}
