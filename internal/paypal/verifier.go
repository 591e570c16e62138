// Package paypal verifies captured pay-per-job orders against the PayPal REST
// API before a job is marked paid.
package paypal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/plutov/paypal/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	Currency = "USD"

	statusCompleted = "COMPLETED"
)

var (
	ErrOrderNotCaptured = errors.New("order is not captured")
	ErrAmountMismatch   = errors.New("order amount does not match the job price")
)

// OrderVerifier confirms that orderID paid for one job.
type OrderVerifier interface {
	VerifyOrder(ctx context.Context, orderID string) error
}

type Verifier struct {
	client   *paypal.Client
	amount   string
	currency string

	mu     sync.Mutex
	authed bool
}

func NewVerifier(clientID, secret, apiBase, amount string) (*Verifier, error) {
	client, err := paypal.NewClient(clientID, secret, apiBase)
	if err != nil {
		return nil, fmt.Errorf("failed to create paypal client: %w", err)
	}
	client.SetHTTPClient(&http.Client{
		Timeout:   15 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
	return &Verifier{client: client, amount: amount, currency: Currency}, nil
}

func (v *Verifier) VerifyOrder(ctx context.Context, orderID string) error {
	if err := v.authenticate(ctx); err != nil {
		return err
	}
	order, err := v.client.GetOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to get order %s: %w", orderID, err)
	}
	return CheckOrder(order, v.amount, v.currency)
}

func (v *Verifier) authenticate(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.authed {
		return nil
	}
	if _, err := v.client.GetAccessToken(ctx); err != nil {
		return fmt.Errorf("failed to get paypal access token: %w", err)
	}
	v.authed = true
	return nil
}

// CheckOrder accepts a completed order whose first purchase unit carries
// exactly amount in currency.
func CheckOrder(order *paypal.Order, amount, currency string) error {
	if order == nil {
		return ErrOrderNotCaptured
	}
	if !strings.EqualFold(order.Status, statusCompleted) {
		return fmt.Errorf("%w: status %s", ErrOrderNotCaptured, order.Status)
	}
	if len(order.PurchaseUnits) == 0 || order.PurchaseUnits[0].Amount == nil {
		return fmt.Errorf("%w: no purchase unit", ErrAmountMismatch)
	}

	got := order.PurchaseUnits[0].Amount
	if !strings.EqualFold(got.Currency, currency) {
		return fmt.Errorf("%w: currency %s", ErrAmountMismatch, got.Currency)
	}
	want, err := cents(amount)
	if err != nil {
		return fmt.Errorf("invalid configured amount %q: %w", amount, err)
	}
	paid, err := cents(got.Value)
	if err != nil || paid != want {
		return fmt.Errorf("%w: paid %s %s", ErrAmountMismatch, got.Value, got.Currency)
	}
	return nil
}

func cents(value string) (int64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(f * 100)), nil
}
