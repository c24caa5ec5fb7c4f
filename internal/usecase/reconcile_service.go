package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"shop-backend/internal/domain"
	"shop-backend/internal/infrastructure/repo"
)

// ReconcileService owns every write to an order's status. Transitions are
// applied under a per-order lock so concurrent redeliveries of the same
// event cannot double-process, and repeated events are no-ops.
type ReconcileService struct {
	Repo OrderRepo

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewReconcileService(r OrderRepo) *ReconcileService {
	return &ReconcileService{Repo: r, locks: make(map[string]*sync.Mutex)}
}

func (s *ReconcileService) lockOrder(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// ApplyTransactionEvent reconciles a verified payment outcome against the
// merchant order it references.
//
// success && !pending moves pending -> paid; !success moves pending ->
// payment_failed. Both are idempotent against redelivery, and a failing
// event never regresses an already-paid order. success && pending means the
// payment is still in flight and nothing changes.
func (s *ReconcileService) ApplyTransactionEvent(ctx context.Context, ev *domain.TransactionEvent) error {
	merchantRef := ev.Order.MerchantOrderID
	if merchantRef == "" {
		return fmt.Errorf("%w: event carries no merchant order id", ErrUnmatchedOrder)
	}

	l := s.lockOrder(merchantRef)
	l.Lock()
	defer l.Unlock()

	o, err := s.Repo.Get(ctx, merchantRef)
	if errors.Is(err, repo.ErrOrderNotFound) {
		return fmt.Errorf("%w: %s", ErrUnmatchedOrder, merchantRef)
	}
	if err != nil {
		return err
	}
	if o.ProcessorOrderID != 0 && ev.Order.ID != 0 && o.ProcessorOrderID != ev.Order.ID {
		return fmt.Errorf("%w: processor ref %d does not match order %s", ErrUnmatchedOrder, ev.Order.ID, merchantRef)
	}

	if ev.Success && ev.Pending {
		log.Printf("reconcile: order %s payment still in flight, no transition", o.OrderID)
		return nil
	}

	target := domain.OrderPaymentFailed
	if ev.Success {
		target = domain.OrderPaid
	}
	if o.Status == target {
		// Redelivered event; already applied.
		return nil
	}
	if !domain.CanTransition(o.Status, target) {
		log.Printf("reconcile: order %s is %s, ignoring %s event", o.OrderID, o.Status, target)
		return nil
	}
	if ev.AmountCents != 0 && ev.AmountCents != o.AmountCents {
		log.Printf("reconcile: order %s amount mismatch: event %d, order %d", o.OrderID, ev.AmountCents, o.AmountCents)
	}
	if err := s.Repo.UpdateStatus(ctx, o.OrderID, target); err != nil {
		return err
	}
	log.Printf("reconcile: order %s %s -> %s (txn code %s)", o.OrderID, o.Status, target, ev.TxnResponseCode)
	return nil
}
