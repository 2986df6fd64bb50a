package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"stayhub-backend/internal/logger"
)

// ErrUnavailable classifies timeouts, connection failures, non-2xx replies
// and malformed bodies. It is an infrastructure error: the true payment
// outcome is unknown and must be re-queried, never treated as a decline.
var ErrUnavailable = errors.New("payment gateway unavailable")

// Config carries the deployment-specific gateway settings (test vs
// production base URL, credentials, callback URLs).
type Config struct {
	BaseURL          string
	EntityID         string
	BearerToken      string
	Timeout          time.Duration
	ShopperResultURL string
	NotificationURL  string
}

// CheckoutRequest opens a checkout session for one booking. The merchant
// transaction id is the booking id, so asynchronous callbacks can be
// correlated back.
type CheckoutRequest struct {
	MerchantTransactionID string
	AmountCents           int32
	Currency              string
	CustomerName          string
	CustomerEmail         string
	CustomerPhone         string
}

// CheckoutSession is the gateway-side transaction context created before
// the payer completes payment.
type CheckoutSession struct {
	ID                string
	ResultCode        string
	ResultDescription string
}

// PaymentOutcome is the normalized result of a payment, whichever channel
// reported it.
type PaymentOutcome struct {
	CheckoutID        string
	TransactionID     string
	ResultCode        string
	ResultDescription string
	AmountCents       int32
	Currency          string
	Brand             string
	CardBin           string
	CardLast4         string
	Timestamp         time.Time
}

// Client wraps the two outbound calls to the external payment processor.
// It is a pure boundary translator: it never mutates booking state.
type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: gobreaker.NewCircuitBreaker(
			gobreaker.Settings{
				Name:        "payment-gateway",
				MaxRequests: 1,
				Timeout:     10 * time.Second,
				Interval:    0,
				ReadyToTrip: func(counts gobreaker.Counts) bool {
					return counts.ConsecutiveFailures > 2
				},
				OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
					logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
				},
			},
		),
	}
}

type wireResult struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type wireCheckout struct {
	ID     string     `json:"id"`
	Result wireResult `json:"result"`
}

type wirePayment struct {
	ID           string     `json:"id"`
	Result       wireResult `json:"result"`
	Amount       string     `json:"amount"`
	Currency     string     `json:"currency"`
	PaymentBrand string     `json:"paymentBrand"`
	Timestamp    string     `json:"timestamp"`
	Card         struct {
		Bin         string `json:"bin"`
		Last4Digits string `json:"last4Digits"`
	} `json:"card"`
}

// CreateCheckout opens a checkout session for the given booking reference.
func (c *Client) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("entityId", c.cfg.EntityID)
	form.Set("amount", formatAmount(req.AmountCents))
	form.Set("currency", req.Currency)
	form.Set("paymentType", "DB")
	form.Set("merchantTransactionId", req.MerchantTransactionID)
	form.Set("customer.givenName", req.CustomerName)
	form.Set("customer.email", req.CustomerEmail)
	if req.CustomerPhone != "" {
		form.Set("customer.phone", req.CustomerPhone)
	}
	if c.cfg.ShopperResultURL != "" {
		form.Set("shopperResultUrl", c.cfg.ShopperResultURL)
	}
	if c.cfg.NotificationURL != "" {
		form.Set("notificationUrl", c.cfg.NotificationURL)
	}

	logger.ExternalServiceCall("payment-gateway", "CreateCheckout", "merchant_transaction_id", req.MerchantTransactionID)
	body, err := c.do(ctx, http.MethodPost, "/v1/checkouts", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	logger.ExternalServiceResult("payment-gateway", "CreateCheckout", err)
	if err != nil {
		return nil, err
	}

	var wc wireCheckout
	if err := json.Unmarshal(body, &wc); err != nil {
		return nil, fmt.Errorf("%w: malformed checkout response: %v", ErrUnavailable, err)
	}
	if wc.ID == "" {
		return nil, fmt.Errorf("%w: checkout response missing session id", ErrUnavailable)
	}
	return &CheckoutSession{
		ID:                wc.ID,
		ResultCode:        wc.Result.Code,
		ResultDescription: wc.Result.Description,
	}, nil
}

// QueryPaymentStatus fetches the current payment result for a checkout
// session. Used by the poll trigger after the shopper returns from the
// gateway redirect flow.
func (c *Client) QueryPaymentStatus(ctx context.Context, checkoutID string) (*PaymentOutcome, error) {
	path := fmt.Sprintf("/v1/checkouts/%s/payment?entityId=%s", url.PathEscape(checkoutID), url.QueryEscape(c.cfg.EntityID))

	logger.ExternalServiceCall("payment-gateway", "QueryPaymentStatus", "checkout_id", checkoutID)
	body, err := c.do(ctx, http.MethodGet, path, nil, "")
	logger.ExternalServiceResult("payment-gateway", "QueryPaymentStatus", err)
	if err != nil {
		return nil, err
	}

	var wp wirePayment
	if err := json.Unmarshal(body, &wp); err != nil {
		return nil, fmt.Errorf("%w: malformed payment response: %v", ErrUnavailable, err)
	}
	if wp.Result.Code == "" {
		return nil, fmt.Errorf("%w: payment response missing result code", ErrUnavailable)
	}

	outcome := &PaymentOutcome{
		CheckoutID:        checkoutID,
		TransactionID:     wp.ID,
		ResultCode:        wp.Result.Code,
		ResultDescription: wp.Result.Description,
		AmountCents:       ParseAmount(wp.Amount),
		Currency:          wp.Currency,
		Brand:             wp.PaymentBrand,
		CardBin:           wp.Card.Bin,
		CardLast4:         wp.Card.Last4Digits,
	}
	if ts, err := time.Parse("2006-01-02 15:04:05.000-0700", wp.Timestamp); err == nil {
		outcome.Timestamp = ts
	} else {
		outcome.Timestamp = time.Now()
	}
	return outcome, nil
}

// do performs one HTTP exchange through the circuit breaker and collapses
// every transport-level failure into ErrUnavailable.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.BearerToken)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
		}
		return data, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return result.([]byte), nil
}

// formatAmount renders cents as the gateway's decimal string, e.g. 100050
// cents becomes "1000.50".
func formatAmount(cents int32) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// ParseAmount converts the gateway's decimal amount string back to cents.
func ParseAmount(amount string) int32 {
	if amount == "" {
		return 0
	}
	f, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0
	}
	return int32(f*100 + 0.5)
}
