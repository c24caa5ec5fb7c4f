package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-backend/internal/domain"
)

func sample(id string) *domain.Order {
	now := time.Now().UTC()
	return &domain.Order{
		OrderID:      id,
		CustomerName: "Mona Hassan",
		Phone:        "+201005550101",
		Items:        []domain.LineItem{{Name: "mug", Quantity: 1, UnitPriceCents: 10000}},
		AmountCents:  10000,
		Currency:     "EGP",
		Status:       domain.OrderPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMemoryOrderRepo_PutGet(t *testing.T) {
	r := NewMemoryOrderRepo()
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, sample("a")))

	got, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Mona Hassan", got.CustomerName)

	_, err = r.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestMemoryOrderRepo_AttachAndLookupByRef(t *testing.T) {
	r := NewMemoryOrderRepo()
	ctx := context.Background()
	require.NoError(t, r.Put(ctx, sample("a")))

	require.NoError(t, r.AttachProcessorRef(ctx, "a", 777, "pay-1"))

	got, err := r.GetByProcessorRef(ctx, 777)
	require.NoError(t, err)
	assert.Equal(t, "a", got.OrderID)
	assert.Equal(t, "pay-1", got.PaymentToken)

	_, err = r.GetByProcessorRef(ctx, 1)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.ErrorIs(t, r.AttachProcessorRef(ctx, "missing", 1, ""), ErrOrderNotFound)
}

func TestMemoryOrderRepo_UpdateStatus(t *testing.T) {
	r := NewMemoryOrderRepo()
	ctx := context.Background()
	require.NoError(t, r.Put(ctx, sample("a")))

	require.NoError(t, r.UpdateStatus(ctx, "a", domain.OrderPaid))

	got, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaid, got.Status)

	assert.ErrorIs(t, r.UpdateStatus(ctx, "missing", domain.OrderPaid), ErrOrderNotFound)
}

func TestMemoryOrderRepo_GetReturnsCopy(t *testing.T) {
	r := NewMemoryOrderRepo()
	ctx := context.Background()
	require.NoError(t, r.Put(ctx, sample("a")))

	got, err := r.Get(ctx, "a")
	require.NoError(t, err)
	got.Status = domain.OrderPaid

	again, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, again.Status)
}
