package usecase

import (
	"context"
	"errors"
	"log"

	"shop-backend/internal/domain"
	"shop-backend/internal/infrastructure/paymob"
)

type TransactionApplier interface {
	ApplyTransactionEvent(ctx context.Context, ev *domain.TransactionEvent) error
}

// WebhookService takes an inbound notification through the gate: verify the
// signature over the raw bytes, parse once, route by declared type. Anything
// verified and parseable is acknowledged, understood or not, so the
// processor does not endlessly redeliver events this system has no handler
// for.
type WebhookService struct {
	Secret       string
	Transactions TransactionApplier
}

// Dispatch returns ErrSignatureInvalid for unauthenticated payloads,
// ErrBadRequest for signed-but-malformed ones, and a plain error only on
// genuine internal failure. nil means the event was acknowledged.
func (s *WebhookService) Dispatch(ctx context.Context, payload []byte, signature string) error {
	if !paymob.VerifySignature(payload, signature, s.Secret) {
		return ErrSignatureInvalid
	}
	ev, err := domain.ParseWebhookEvent(payload)
	if err != nil {
		return ErrBadRequest(err.Error())
	}
	switch ev.Type {
	case domain.EventTransaction:
		err := s.Transactions.ApplyTransactionEvent(ctx, ev.Transaction)
		if errors.Is(err, ErrUnmatchedOrder) {
			log.Printf("webhook: %v", err)
			return nil
		}
		return err
	case domain.EventDeliveryStatus:
		// No delivery-tracking model; acknowledge without side effects.
		log.Printf("webhook: delivery status %q for processor order %d", ev.Delivery.Status, ev.Delivery.OrderID)
		return nil
	default:
		log.Printf("webhook: unrecognized event type %q acknowledged", ev.Type)
		return nil
	}
}
