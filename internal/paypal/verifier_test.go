package paypal_test

import (
	"testing"

	sdk "github.com/plutov/paypal/v4"
	"github.com/stretchr/testify/assert"
	"vim-audiosync/internal/paypal"
)

func order(status, currency, value string) *sdk.Order {
	return &sdk.Order{
		ID:     "ORDER-1",
		Status: status,
		PurchaseUnits: []sdk.PurchaseUnit{
			{Amount: &sdk.PurchaseUnitAmount{Currency: currency, Value: value}},
		},
	}
}

func TestCheckOrder_Completed(t *testing.T) {
	assert.NoError(t, paypal.CheckOrder(order("COMPLETED", "USD", "7.00"), "7.00", "USD"))
	assert.NoError(t, paypal.CheckOrder(order("COMPLETED", "usd", "7"), "7.00", "USD"))
}

func TestCheckOrder_NotCaptured(t *testing.T) {
	err := paypal.CheckOrder(order("APPROVED", "USD", "7.00"), "7.00", "USD")
	assert.ErrorIs(t, err, paypal.ErrOrderNotCaptured)

	assert.ErrorIs(t, paypal.CheckOrder(nil, "7.00", "USD"), paypal.ErrOrderNotCaptured)
}

func TestCheckOrder_WrongAmount(t *testing.T) {
	assert.ErrorIs(t, paypal.CheckOrder(order("COMPLETED", "USD", "1.00"), "7.00", "USD"), paypal.ErrAmountMismatch)
	assert.ErrorIs(t, paypal.CheckOrder(order("COMPLETED", "EUR", "7.00"), "7.00", "USD"), paypal.ErrAmountMismatch)
	assert.ErrorIs(t, paypal.CheckOrder(&sdk.Order{Status: "COMPLETED"}, "7.00", "USD"), paypal.ErrAmountMismatch)
}
