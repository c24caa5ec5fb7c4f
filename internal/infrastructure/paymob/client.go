package paymob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

const (
	requestTimeout = 10 * time.Second

	// SessionExpiration is the fixed lifetime of a payment key, in seconds.
	SessionExpiration = 3600
)

// Client wraps the three processor endpoints. It is stateless: each call
// maps one request to one typed response, with no retries — retrying an
// order creation blindly risks duplicate processor-side orders, so retry
// policy belongs to the caller.
type Client struct {
	BaseURL       string
	APIKey        string
	IntegrationID int64
	Currency      string
	HTTP          *http.Client

	breaker *gobreaker.CircuitBreaker[httpResult]
}

func NewClient(baseURL, apiKey string, integrationID int64, currency string) *Client {
	c := &Client{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		APIKey:        apiKey,
		IntegrationID: integrationID,
		Currency:      currency,
	}
	c.breaker = gobreaker.NewCircuitBreaker[httpResult](gobreaker.Settings{
		Name:    "paymob",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return c
}

type OrderItem struct {
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

// BillingData mirrors the processor schema: all eleven fields are required
// strings, so absent values must be filled with a sentinel by the caller.
type BillingData struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Apartment   string `json:"apartment"`
	Floor       string `json:"floor"`
	Street      string `json:"street"`
	Building    string `json:"building"`
	City        string `json:"city"`
	Country     string `json:"country"`
	State       string `json:"state"`
}

type authReq struct {
	APIKey string `json:"api_key"`
}

type authResp struct {
	Token string `json:"token"`
}

// Authenticate exchanges the API key for a short-lived bearer token. The
// token lives only within one orchestration run and is never persisted.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	var out authResp
	if err := c.postJSON(ctx, "/auth/tokens", authReq{APIKey: c.APIKey}, &out); err != nil {
		return "", &AuthError{Err: err}
	}
	if strings.TrimSpace(out.Token) == "" {
		return "", &AuthError{Err: fmt.Errorf("missing token in response")}
	}
	return out.Token, nil
}

type orderReq struct {
	AuthToken      string      `json:"auth_token"`
	DeliveryNeeded bool        `json:"delivery_needed"`
	AmountCents    int64       `json:"amount_cents"`
	Currency       string      `json:"currency"`
	Items          []OrderItem `json:"items"`
}

type orderResp struct {
	ID int64 `json:"id"`
}

// CreateOrder registers the order with the processor and returns the
// processor-assigned order ID.
func (c *Client) CreateOrder(ctx context.Context, token string, deliveryNeeded bool, amountCents int64, items []OrderItem) (int64, error) {
	body := orderReq{
		AuthToken:      token,
		DeliveryNeeded: deliveryNeeded,
		AmountCents:    amountCents,
		Currency:       c.Currency,
		Items:          items,
	}
	var out orderResp
	if err := c.postJSON(ctx, "/ecommerce/orders", body, &out); err != nil {
		return 0, &OrderCreationError{Err: err}
	}
	if out.ID == 0 {
		return 0, &OrderCreationError{Err: fmt.Errorf("missing order id in response")}
	}
	return out.ID, nil
}

type paymentKeyReq struct {
	AuthToken     string      `json:"auth_token"`
	AmountCents   int64       `json:"amount_cents"`
	Expiration    int         `json:"expiration"`
	OrderID       int64       `json:"order_id"`
	BillingData   BillingData `json:"billing_data"`
	Currency      string      `json:"currency"`
	IntegrationID int64       `json:"integration_id"`
}

type paymentKeyResp struct {
	Token string `json:"token"`
}

// PaymentKey generates a payment token bound to the processor order.
func (c *Client) PaymentKey(ctx context.Context, token string, orderID int64, amountCents int64, billing BillingData) (string, error) {
	body := paymentKeyReq{
		AuthToken:     token,
		AmountCents:   amountCents,
		Expiration:    SessionExpiration,
		OrderID:       orderID,
		BillingData:   billing,
		Currency:      c.Currency,
		IntegrationID: c.IntegrationID,
	}
	var out paymentKeyResp
	if err := c.postJSON(ctx, "/acceptance/payment_keys", body, &out); err != nil {
		return "", &PaymentKeyError{Err: err}
	}
	if strings.TrimSpace(out.Token) == "" {
		return "", &PaymentKeyError{Err: fmt.Errorf("missing payment token in response")}
	}
	return out.Token, nil
}

// IframeURL builds the hosted payment page URL for a payment token.
func (c *Client) IframeURL(paymentToken string) string {
	return fmt.Sprintf("%s/acceptance/iframes/%d?payment_token=%s", c.BaseURL, c.IntegrationID, paymentToken)
}

type httpResult struct {
	status int
	body   []byte
}

func (c *Client) postJSON(ctx context.Context, path string, in any, out any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	hc := c.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: requestTimeout}
	}
	// The breaker counts transport errors and 5xx responses; a 4xx is the
	// processor rejecting this request, not the processor being down.
	res, err := c.breaker.Execute(func() (httpResult, error) {
		resp, err := hc.Do(req)
		if err != nil {
			return httpResult{}, err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return httpResult{}, err
		}
		if resp.StatusCode >= 500 {
			return httpResult{}, fmt.Errorf("processor unavailable: %s %s", resp.Status, strings.TrimSpace(string(body)))
		}
		return httpResult{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		return err
	}
	if res.status < 200 || res.status >= 300 {
		return fmt.Errorf("unexpected status %d: %s", res.status, strings.TrimSpace(string(res.body)))
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("malformed response body: %w", err)
	}
	return nil
}
