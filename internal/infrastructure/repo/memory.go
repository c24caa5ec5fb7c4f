package repo

import (
	"context"
	"sync"
	"time"

	"shop-backend/internal/domain"
)

// MemoryOrderRepo backs development and tests; it implements the same
// interface as PostgresRepo.
type MemoryOrderRepo struct {
	mu sync.RWMutex
	m  map[string]*domain.Order
}

func NewMemoryOrderRepo() *MemoryOrderRepo {
	return &MemoryOrderRepo{m: make(map[string]*domain.Order)}
}

func (r *MemoryOrderRepo) Put(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.m[o.OrderID] = &cp
	return nil
}

func (r *MemoryOrderRepo) Get(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.m[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *MemoryOrderRepo) GetByProcessorRef(_ context.Context, ref int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.m {
		if o.ProcessorOrderID == ref {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (r *MemoryOrderRepo) AttachProcessorRef(_ context.Context, id string, ref int64, paymentToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.m[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.ProcessorOrderID = ref
	o.PaymentToken = paymentToken
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryOrderRepo) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.m[id]
	if !ok {
		return ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	return nil
}
