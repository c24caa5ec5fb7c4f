package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-backend/internal/domain"
	"shop-backend/internal/infrastructure/repo"
)

func seedOrder(t *testing.T, orders *repo.MemoryOrderRepo, id string, status domain.OrderStatus) {
	t.Helper()
	now := time.Now().UTC()
	err := orders.Put(context.Background(), &domain.Order{
		OrderID:          id,
		CustomerName:     "Mona Hassan",
		Phone:            "+201005550101",
		Fulfillment:      domain.FulfillmentDelivery,
		Items:            []domain.LineItem{{Name: "mug", Quantity: 2, UnitPriceCents: 12500}},
		AmountCents:      25000,
		Currency:         "EGP",
		Status:           status,
		ProcessorOrderID: 777,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	require.NoError(t, err)
}

func successEvent(merchantRef string) *domain.TransactionEvent {
	return &domain.TransactionEvent{
		Success:     true,
		AmountCents: 25000,
		Currency:    "EGP",
		Order:       domain.TransactionOrder{ID: 777, MerchantOrderID: merchantRef},
	}
}

func statusOf(t *testing.T, orders *repo.MemoryOrderRepo, id string) domain.OrderStatus {
	t.Helper()
	o, err := orders.Get(context.Background(), id)
	require.NoError(t, err)
	return o.Status
}

func TestApplyTransactionEvent_SuccessTransitionsToPaid(t *testing.T) {
	orders := repo.NewMemoryOrderRepo()
	seedOrder(t, orders, "X", domain.OrderPending)
	svc := NewReconcileService(orders)

	err := svc.ApplyTransactionEvent(context.Background(), successEvent("X"))

	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaid, statusOf(t, orders, "X"))
}

func TestApplyTransactionEvent_RedeliveryIsIdempotent(t *testing.T) {
	orders := repo.NewMemoryOrderRepo()
	seedOrder(t, orders, "X", domain.OrderPending)
	svc := NewReconcileService(orders)

	require.NoError(t, svc.ApplyTransactionEvent(context.Background(), successEvent("X")))
	require.NoError(t, svc.ApplyTransactionEvent(context.Background(), successEvent("X")))

	assert.Equal(t, domain.OrderPaid, statusOf(t, orders, "X"))
}

func TestApplyTransactionEvent_FailureAfterSuccessDoesNotRegress(t *testing.T) {
	orders := repo.NewMemoryOrderRepo()
	seedOrder(t, orders, "X", domain.OrderPaid)
	svc := NewReconcileService(orders)

	ev := successEvent("X")
	ev.Success = false

	require.NoError(t, svc.ApplyTransactionEvent(context.Background(), ev))
	assert.Equal(t, domain.OrderPaid, statusOf(t, orders, "X"))
}

func TestApplyTransactionEvent_FailureTransitions(t *testing.T) {
	orders := repo.NewMemoryOrderRepo()
	seedOrder(t, orders, "X", domain.OrderPending)
	svc := NewReconcileService(orders)

	ev := successEvent("X")
	ev.Success = false

	require.NoError(t, svc.ApplyTransactionEvent(context.Background(), ev))
	assert.Equal(t, domain.OrderPaymentFailed, statusOf(t, orders, "X"))

	// Repeats stay failed.
	require.NoError(t, svc.ApplyTransactionEvent(context.Background(), ev))
	assert.Equal(t, domain.OrderPaymentFailed, statusOf(t, orders, "X"))
}

func TestApplyTransactionEvent_PendingIsIgnored(t *testing.T) {
	orders := repo.NewMemoryOrderRepo()
	seedOrder(t, orders, "X", domain.OrderPending)
	svc := NewReconcileService(orders)

	ev := successEvent("X")
	ev.Pending = true

	require.NoError(t, svc.ApplyTransactionEvent(context.Background(), ev))
	assert.Equal(t, domain.OrderPending, statusOf(t, orders, "X"))
}

func TestApplyTransactionEvent_UnknownReference(t *testing.T) {
	orders := repo.NewMemoryOrderRepo()
	svc := NewReconcileService(orders)

	err := svc.ApplyTransactionEvent(context.Background(), successEvent("nope"))
	assert.ErrorIs(t, err, ErrUnmatchedOrder)

	err = svc.ApplyTransactionEvent(context.Background(), successEvent(""))
	assert.ErrorIs(t, err, ErrUnmatchedOrder)
}

func TestApplyTransactionEvent_ProcessorRefMismatch(t *testing.T) {
	orders := repo.NewMemoryOrderRepo()
	seedOrder(t, orders, "X", domain.OrderPending)
	svc := NewReconcileService(orders)

	ev := successEvent("X")
	ev.Order.ID = 999

	err := svc.ApplyTransactionEvent(context.Background(), ev)

	assert.ErrorIs(t, err, ErrUnmatchedOrder)
	assert.Equal(t, domain.OrderPending, statusOf(t, orders, "X"))
}

func TestApplyTransactionEvent_ConcurrentRedelivery(t *testing.T) {
	orders := repo.NewMemoryOrderRepo()
	seedOrder(t, orders, "X", domain.OrderPending)
	svc := NewReconcileService(orders)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.ApplyTransactionEvent(context.Background(), successEvent("X"))
		}()
	}
	wg.Wait()

	assert.Equal(t, domain.OrderPaid, statusOf(t, orders, "X"))
}
