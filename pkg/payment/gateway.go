// Package payment talks to the card payment gateway: it opens orders for a
// checkout and verifies the signatures the gateway attaches to results.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"travelpartner/pkg/client"
)

const ordersPath = "/v1/orders"

var ErrInvalidSignature = errors.New("payment signature does not match")

type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type orderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture bool   `json:"payment_capture"`
}

type Gateway struct {
	http      *client.HttpClient
	keyID     string
	keySecret string
}

func NewGateway(baseURL, keyID, keySecret string, timeout time.Duration) *Gateway {
	return &Gateway{
		http:      client.NewHttpClient(strings.TrimRight(baseURL, "/"), timeout).WithBasicAuth(keyID, keySecret),
		keyID:     keyID,
		keySecret: keySecret,
	}
}

// KeyID is the public key the client-side payment widget is opened with.
func (g *Gateway) KeyID() string {
	return g.keyID
}

// CreateOrder opens a gateway order for amountMinor in the currency's minor
// unit. receipt is echoed back by the gateway and ties the order to a checkout.
func (g *Gateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*Order, error) {
	if amountMinor <= 0 {
		return nil, fmt.Errorf("order amount must be positive, got %d", amountMinor)
	}

	resp, err := g.http.POST(ctx, ordersPath, orderRequest{
		Amount:         amountMinor,
		Currency:       currency,
		Receipt:        receipt,
		PaymentCapture: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("payment gateway rejected order (status %d): %s", resp.StatusCode, client.GetErrorMessage(resp))
	}

	var order Order
	if err := resp.DecodeJSON(&order); err != nil {
		return nil, fmt.Errorf("failed to decode payment order: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("payment gateway returned an order without id: %s", resp.ToString())
	}
	return &order, nil
}

// VerifyPayment checks the signature the gateway returns to the client after
// a successful payment: hex HMAC-SHA256 of "order_id|payment_id" keyed by the
// key secret.
func (g *Gateway) VerifyPayment(orderID, paymentID, signature string) error {
	if orderID == "" || paymentID == "" || signature == "" || g.keySecret == "" {
		return ErrInvalidSignature
	}
	expected := Sign(g.keySecret, orderID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return ErrInvalidSignature
	}
	return nil
}

func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
