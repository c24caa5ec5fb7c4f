package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"shop-backend/internal/domain"
	"shop-backend/internal/infrastructure/paymob"
)

type OrderRepo interface {
	Put(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, id string) (*domain.Order, error)
	GetByProcessorRef(ctx context.Context, ref int64) (*domain.Order, error)
	AttachProcessorRef(ctx context.Context, id string, ref int64, paymentToken string) error
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
}

type ProcessorClient interface {
	Authenticate(ctx context.Context) (string, error)
	CreateOrder(ctx context.Context, token string, deliveryNeeded bool, amountCents int64, items []paymob.OrderItem) (int64, error)
	PaymentKey(ctx context.Context, token string, orderID int64, amountCents int64, billing paymob.BillingData) (string, error)
	IframeURL(paymentToken string) string
}

// billingNA fills billing fields the processor requires but the customer
// did not supply. The schema rejects null and empty strings.
const billingNA = "NA"

// CheckoutService drives the three-step sequence that stands up a hosted
// payment session: authenticate, create the processor-side order, generate
// a payment key. Each step's failure is terminal and typed; no step is
// retried, and no payment key is requested after a failed order creation.
type CheckoutService struct {
	Repo      OrderRepo
	Processor ProcessorClient
	Currency  string
}

// CreateCheckoutSession validates the request, persists the merchant order
// in pending status, and runs the orchestration. On success the processor
// order reference and payment token are recorded against the merchant order
// before the hosted payment URL is handed back.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, req *domain.CheckoutRequest) (*domain.Order, *domain.PaymentSession, error) {
	if err := validateCheckout(req); err != nil {
		return nil, nil, err
	}

	// Major-unit prices are converted to minor units exactly once, here.
	// Everything downstream works with integers.
	items := make([]domain.LineItem, 0, len(req.Items))
	var totalCents int64
	for _, it := range req.Items {
		li := domain.LineItem{
			Name:           it.Name,
			Description:    it.Description,
			Quantity:       it.Quantity,
			UnitPriceCents: domain.Cents(it.UnitPrice),
		}
		items = append(items, li)
		totalCents += li.SubtotalCents()
	}

	now := time.Now().UTC()
	order := &domain.Order{
		OrderID:      uuid.NewString(),
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Email:        req.Email,
		Street:       req.Street,
		Building:     req.Building,
		Floor:        req.Floor,
		Apartment:    req.Apartment,
		City:         req.City,
		Fulfillment:  req.Fulfillment,
		Items:        items,
		AmountCents:  totalCents,
		Currency:     s.Currency,
		Status:       domain.OrderPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// Step 1: authenticate. The token lives only within this run. Failure
	// here is terminal and leaves no side effects anywhere.
	token, err := s.Processor.Authenticate(ctx)
	if err != nil {
		return nil, nil, err
	}

	if err := s.Repo.Put(ctx, order); err != nil {
		return nil, nil, err
	}

	// Step 2: create the processor-side order.
	procItems := make([]paymob.OrderItem, 0, len(items))
	for _, li := range items {
		procItems = append(procItems, paymob.OrderItem{
			Name:        li.Name,
			AmountCents: li.UnitPriceCents,
			Description: li.Description,
			Quantity:    li.Quantity,
		})
	}
	procOrderID, err := s.Processor.CreateOrder(ctx, token, order.NeedsDelivery(), totalCents, procItems)
	if err != nil {
		return nil, nil, err
	}
	// Record the reference immediately so a webhook can be matched back even
	// if key generation below fails.
	if err := s.Repo.AttachProcessorRef(ctx, order.OrderID, procOrderID, ""); err != nil {
		return nil, nil, err
	}
	order.ProcessorOrderID = procOrderID

	// Step 3: generate the payment key, bound to the same amount and the
	// processor order from step 2.
	payToken, err := s.Processor.PaymentKey(ctx, token, procOrderID, totalCents, billingDataFor(req))
	if err != nil {
		return nil, nil, err
	}
	if err := s.Repo.AttachProcessorRef(ctx, order.OrderID, procOrderID, payToken); err != nil {
		return nil, nil, err
	}
	order.PaymentToken = payToken

	session := &domain.PaymentSession{
		PaymentURL:       s.Processor.IframeURL(payToken),
		ProcessorOrderID: procOrderID,
		PaymentToken:     payToken,
		ExpiresAt:        now.Add(paymob.SessionExpiration * time.Second),
	}
	return order, session, nil
}

func validateCheckout(req *domain.CheckoutRequest) error {
	if strings.TrimSpace(req.CustomerName) == "" {
		return ErrBadRequest("customer name required")
	}
	if strings.TrimSpace(req.Phone) == "" {
		return ErrBadRequest("phone required")
	}
	if len(req.Items) == 0 {
		return ErrBadRequest("at least one item required")
	}
	for _, it := range req.Items {
		if strings.TrimSpace(it.Name) == "" {
			return ErrBadRequest("item name required")
		}
		if it.Quantity < 1 {
			return ErrBadRequest("item quantity must be at least 1")
		}
		if it.UnitPrice < 0 {
			return ErrBadRequest("item price must not be negative")
		}
	}
	switch req.Fulfillment {
	case "", domain.FulfillmentDelivery, domain.FulfillmentPickup:
	default:
		return ErrBadRequest("unknown fulfillment method")
	}
	return nil
}

func billingDataFor(req *domain.CheckoutRequest) paymob.BillingData {
	first, last := splitName(req.CustomerName)
	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = placeholderEmail(req.Phone)
	}
	return paymob.BillingData{
		FirstName:   first,
		LastName:    last,
		Email:       email,
		PhoneNumber: req.Phone,
		Apartment:   orNA(req.Apartment),
		Floor:       orNA(req.Floor),
		Street:      orNA(req.Street),
		Building:    orNA(req.Building),
		City:        orNA(req.City),
		Country:     billingNA,
		State:       billingNA,
	}
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return billingNA, billingNA
	}
	if len(parts) == 1 {
		return parts[0], billingNA
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// placeholderEmail synthesizes a deterministic address for customers who
// gave none; the processor schema requires one. No verification implied.
func placeholderEmail(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		digits.WriteString("0")
	}
	return digits.String() + "@placeholder.email"
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return billingNA
	}
	return v
}
