package usecase

import (
	"context"
	"fmt"

	"shop-backend/internal/domain"
	"shop-backend/internal/infrastructure/paymob"
)

// mockProcessor implements ProcessorClient and records every call.
type mockProcessor struct {
	authToken string
	authErr   error
	orderID   int64
	orderErr  error
	payToken  string
	keyErr    error

	authCalls  int
	orderCalls int
	keyCalls   int

	gotToken          string
	gotDeliveryNeeded bool
	gotOrderAmount    int64
	gotItems          []paymob.OrderItem
	gotKeyToken       string
	gotKeyOrderID     int64
	gotKeyAmount      int64
	gotBilling        paymob.BillingData
}

func (m *mockProcessor) Authenticate(_ context.Context) (string, error) {
	m.authCalls++
	if m.authErr != nil {
		return "", m.authErr
	}
	return m.authToken, nil
}

func (m *mockProcessor) CreateOrder(_ context.Context, token string, deliveryNeeded bool, amountCents int64, items []paymob.OrderItem) (int64, error) {
	m.orderCalls++
	m.gotToken = token
	m.gotDeliveryNeeded = deliveryNeeded
	m.gotOrderAmount = amountCents
	m.gotItems = items
	if m.orderErr != nil {
		return 0, m.orderErr
	}
	return m.orderID, nil
}

func (m *mockProcessor) PaymentKey(_ context.Context, token string, orderID int64, amountCents int64, billing paymob.BillingData) (string, error) {
	m.keyCalls++
	m.gotKeyToken = token
	m.gotKeyOrderID = orderID
	m.gotKeyAmount = amountCents
	m.gotBilling = billing
	if m.keyErr != nil {
		return "", m.keyErr
	}
	return m.payToken, nil
}

func (m *mockProcessor) IframeURL(paymentToken string) string {
	return fmt.Sprintf("https://processor.test/acceptance/iframes/42?payment_token=%s", paymentToken)
}

// mockApplier implements TransactionApplier.
type mockApplier struct {
	calls []*domain.TransactionEvent
	err   error
}

func (m *mockApplier) ApplyTransactionEvent(_ context.Context, ev *domain.TransactionEvent) error {
	m.calls = append(m.calls, ev)
	return m.err
}
