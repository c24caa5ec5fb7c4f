package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutRequest is one checkout attempt. Prices arrive in major currency
// units and are converted to integer minor units exactly once, at the
// orchestrator boundary.
type CheckoutRequest struct {
	CustomerName string
	Phone        string
	Email        string
	Street       string
	Building     string
	Floor        string
	Apartment    string
	City         string
	Fulfillment  string
	Items        []CheckoutItem
}

type CheckoutItem struct {
	Name        string
	Description string
	Quantity    int
	// UnitPrice is in major currency units, as received from the client.
	UnitPrice float64
}

// Cents converts a major-unit amount to minor units, rounding half away
// from zero. decimal keeps 249.999... float inputs from drifting a cent.
func Cents(major float64) int64 {
	return decimal.NewFromFloat(major).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// PaymentSession is the result of a successful checkout orchestration.
// Immutable once created.
type PaymentSession struct {
	PaymentURL       string    `json:"paymentUrl"`
	ProcessorOrderID int64     `json:"processorOrderId"`
	PaymentToken     string    `json:"-"`
	ExpiresAt        time.Time `json:"expiresAt"`
}
