package domain

import (
	"encoding/json"
	"fmt"
)

const (
	EventTransaction    = "TRANSACTION"
	EventDeliveryStatus = "DELIVERY_STATUS"
)

// WebhookEvent is a verified inbound notification, parsed once into a tagged
// union: exactly one of Transaction or Delivery is set for the recognized
// types, and neither for anything else.
type WebhookEvent struct {
	Type        string
	Transaction *TransactionEvent
	Delivery    *DeliveryStatusEvent
}

type TransactionEvent struct {
	Success         bool             `json:"success"`
	Pending         bool             `json:"pending"`
	AmountCents     int64            `json:"amount_cents"`
	Currency        string           `json:"currency"`
	Order           TransactionOrder `json:"order"`
	TxnResponseCode string           `json:"txn_response_code"`
	IntegrationID   int64            `json:"integration_id"`
}

type TransactionOrder struct {
	ID              int64  `json:"id"`
	MerchantOrderID string `json:"merchant_order_id"`
}

type DeliveryStatusEvent struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

// ParseWebhookEvent decodes an already-verified payload. The raw bytes are
// never re-serialized; signature checking happens before this on the exact
// bytes received.
func ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var envelope struct {
		Type string          `json:"type"`
		Obj  json.RawMessage `json:"obj"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("malformed webhook payload: %w", err)
	}
	ev := &WebhookEvent{Type: envelope.Type}
	switch envelope.Type {
	case EventTransaction:
		var tx TransactionEvent
		if err := json.Unmarshal(envelope.Obj, &tx); err != nil {
			return nil, fmt.Errorf("malformed transaction object: %w", err)
		}
		ev.Transaction = &tx
	case EventDeliveryStatus:
		var d DeliveryStatusEvent
		if err := json.Unmarshal(envelope.Obj, &d); err != nil {
			return nil, fmt.Errorf("malformed delivery status object: %w", err)
		}
		ev.Delivery = &d
	}
	return ev, nil
}
