package domain

import "time"

type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderPaid           OrderStatus = "paid"
	OrderPaymentFailed  OrderStatus = "payment_failed"
	OrderDelivered      OrderStatus = "delivered"
	OrderDeliveryFailed OrderStatus = "delivery_failed"
)

// CanTransition reports whether the status state machine allows moving an
// order from one status to another. Same-status moves are not transitions.
func CanTransition(from, to OrderStatus) bool {
	switch from {
	case OrderPending:
		return to == OrderPaid || to == OrderPaymentFailed
	case OrderPaid:
		return to == OrderDelivered || to == OrderDeliveryFailed
	default:
		return false
	}
}

const (
	FulfillmentDelivery = "delivery"
	FulfillmentPickup   = "pickup"
)

type LineItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity"`
	// UnitPriceCents is the per-unit price in minor currency units.
	UnitPriceCents int64 `json:"unitPriceCents"`
}

func (li LineItem) SubtotalCents() int64 {
	return li.UnitPriceCents * int64(li.Quantity)
}

// Order is the merchant-side order record. Status is owned by the
// reconciler; other components read it or request a transition.
type Order struct {
	OrderID      string      `json:"orderId"`
	CustomerName string      `json:"customerName"`
	Phone        string      `json:"phone"`
	Email        string      `json:"email,omitempty"`
	Street       string      `json:"street,omitempty"`
	Building     string      `json:"building,omitempty"`
	Floor        string      `json:"floor,omitempty"`
	Apartment    string      `json:"apartment,omitempty"`
	City         string      `json:"city,omitempty"`
	Fulfillment  string      `json:"fulfillment"`
	Items        []LineItem  `json:"items"`
	AmountCents  int64       `json:"amountCents"`
	Currency     string      `json:"currency"`
	Status       OrderStatus `json:"status"`
	// ProcessorOrderID correlates this order with the processor's own order
	// record; webhook events are matched back through it.
	ProcessorOrderID int64     `json:"-"`
	PaymentToken     string    `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (o *Order) NeedsDelivery() bool {
	return o.Fulfillment != FulfillmentPickup
}
