// Package paypal reads PayPal order confirmations and verifies them against
// the PayPal Orders API.
package paypal

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

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var (
	ErrMalformedConfirmation = errors.New("malformed paypal confirmation")
	ErrVerificationFailed    = errors.New("paypal order verification failed")
	ErrOrderNotFound         = errors.New("paypal order not found")
)

type Amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type PurchaseUnit struct {
	Amount Amount `json:"amount"`
}

// Order is the part of a PayPal order the storefront reads.
type Order struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	PurchaseUnits []PurchaseUnit `json:"purchase_units"`
}

// Confirmation is a client-posted PayPal order as received by the confirm
// callback.
type Confirmation struct {
	OrderID  string
	Status   string
	Value    string
	Amount   float64
	Currency string
	Raw      string
}

// ParseConfirmation decodes a callback body. The declared amount is
// purchase_units[0].amount.value.
func ParseConfirmation(body []byte) (*Confirmation, error) {
	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedConfirmation, err)
	}
	if len(order.PurchaseUnits) == 0 {
		return nil, fmt.Errorf("%w: no purchase units", ErrMalformedConfirmation)
	}

	value := strings.TrimSpace(order.PurchaseUnits[0].Amount.Value)
	amount, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return nil, fmt.Errorf("%w: invalid amount %q", ErrMalformedConfirmation, value)
	}

	return &Confirmation{
		OrderID:  order.ID,
		Status:   order.Status,
		Value:    value,
		Amount:   amount,
		Currency: order.PurchaseUnits[0].Amount.CurrencyCode,
		Raw:      string(body),
	}, nil
}

// Cents is the declared amount in minor units.
func (c *Confirmation) Cents() int64 {
	return toCents(c.Amount)
}

type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
}

// Client calls the PayPal REST API with a client-credentials token.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client whose requests carry an OAuth2 bearer token.
// base is used both for token requests and API calls.
func NewClient(cfg Config, base *http.Client) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	credentials := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     baseURL + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	tokenCtx := context.Background()
	if base != nil {
		tokenCtx = context.WithValue(tokenCtx, oauth2.HTTPClient, base)
	}

	httpClient := credentials.Client(tokenCtx)
	if base != nil {
		httpClient.Timeout = base.Timeout
	}

	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// GetOrder fetches an order by id.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrMalformedConfirmation)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/checkout/orders/"+url.PathEscape(orderID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch paypal order: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read paypal response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrOrderNotFound
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("paypal returned status %d", resp.StatusCode)
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to decode paypal order: %w", err)
	}
	return &order, nil
}

// Verify checks that PayPal knows the confirmed order as approved or
// completed for the declared amount.
func (c *Client) Verify(ctx context.Context, confirmation *Confirmation) error {
	if confirmation == nil {
		return ErrMalformedConfirmation
	}

	order, err := c.GetOrder(ctx, confirmation.OrderID)
	if errors.Is(err, ErrOrderNotFound) {
		return fmt.Errorf("%w: order %s is unknown", ErrVerificationFailed, confirmation.OrderID)
	}
	if err != nil {
		return err
	}

	return MatchOrder(order, confirmation)
}

// MatchOrder compares a PayPal order with a client confirmation.
func MatchOrder(order *Order, confirmation *Confirmation) error {
	switch order.Status {
	case "COMPLETED", "APPROVED":
	default:
		return fmt.Errorf("%w: order status %q", ErrVerificationFailed, order.Status)
	}
	if len(order.PurchaseUnits) == 0 {
		return fmt.Errorf("%w: order has no purchase units", ErrVerificationFailed)
	}

	declared := order.PurchaseUnits[0].Amount
	if confirmation.Currency != "" && !strings.EqualFold(declared.CurrencyCode, confirmation.Currency) {
		return fmt.Errorf("%w: currency %s does not match %s", ErrVerificationFailed,
			declared.CurrencyCode, confirmation.Currency)
	}

	verified, err := strconv.ParseFloat(declared.Value, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid verified amount", ErrVerificationFailed)
	}
	if toCents(verified) != toCents(confirmation.Amount) {
		return fmt.Errorf("%w: amount %s does not match %s", ErrVerificationFailed,
			declared.Value, confirmation.Value)
	}
	return nil
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
