package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"shop-backend/internal/config"
	"shop-backend/internal/domain"
	"shop-backend/internal/infrastructure/paymob"
	"shop-backend/internal/infrastructure/repo"
	"shop-backend/internal/usecase"
)

const maxWebhookBody = 1 << 20 // 1MB

type Server struct {
	cfg      config.Config
	checkout *usecase.CheckoutService
	webhooks *usecase.WebhookService
	orders   usecase.OrderRepo
	router   chi.Router
}

func New(cfg config.Config, checkout *usecase.CheckoutService, webhooks *usecase.WebhookService, orders usecase.OrderRepo) *Server {
	s := &Server{
		cfg:      cfg,
		checkout: checkout,
		webhooks: webhooks,
		orders:   orders,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Timeout(30 * time.Second))

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		s.json(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/checkout", s.handleCheckout)
		r.Post("/payments/webhook", s.handleWebhook)
		r.Get("/orders/{id}", s.handleGetOrder)
	})
}

type checkoutItemReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

type checkoutReq struct {
	CustomerName string            `json:"customerName"`
	Phone        string            `json:"phone"`
	Email        string            `json:"email"`
	Street       string            `json:"street"`
	Building     string            `json:"building"`
	Floor        string            `json:"floor"`
	Apartment    string            `json:"apartment"`
	City         string            `json:"city"`
	Fulfillment  string            `json:"fulfillment"`
	Items        []checkoutItemReq `json:"items"`
}

type checkoutResp struct {
	OrderID          string    `json:"orderId"`
	PaymentURL       string    `json:"paymentUrl"`
	ProcessorOrderID int64     `json:"processorOrderId"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.err(w, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	cr := &domain.CheckoutRequest{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Email:        req.Email,
		Street:       req.Street,
		Building:     req.Building,
		Floor:        req.Floor,
		Apartment:    req.Apartment,
		City:         req.City,
		Fulfillment:  req.Fulfillment,
	}
	for _, it := range req.Items {
		cr.Items = append(cr.Items, domain.CheckoutItem{
			Name:        it.Name,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}

	order, session, err := s.checkout.CreateCheckoutSession(r.Context(), cr)
	if err != nil {
		s.checkoutError(w, err)
		return
	}
	s.json(w, http.StatusCreated, checkoutResp{
		OrderID:          order.OrderID,
		PaymentURL:       session.PaymentURL,
		ProcessorOrderID: session.ProcessorOrderID,
		ExpiresAt:        session.ExpiresAt,
	})
}

// checkoutError maps each orchestration step's failure to a distinct
// user-facing response without leaking processor internals.
func (s *Server) checkoutError(w http.ResponseWriter, err error) {
	var badReq usecase.ErrBadRequest
	var authErr *paymob.AuthError
	var orderErr *paymob.OrderCreationError
	var keyErr *paymob.PaymentKeyError
	switch {
	case errors.As(err, &badReq):
		s.err(w, http.StatusBadRequest, "BadRequest", badReq.Error())
	case errors.As(err, &authErr):
		s.err(w, http.StatusBadGateway, "PaymentUnavailable", "payment setup unavailable")
	case errors.As(err, &orderErr):
		s.err(w, http.StatusBadRequest, "OrderRejected", "invalid order details")
	case errors.As(err, &keyErr):
		s.err(w, http.StatusBadGateway, "PaymentUnavailable", "payment setup unavailable")
	default:
		s.err(w, http.StatusInternalServerError, "ServerError", "internal error")
	}
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		s.err(w, http.StatusBadRequest, "BadRequest", "cannot read body")
		return
	}
	// Documented contract is the header; the live processor sends the
	// signature as a query parameter.
	sig := r.Header.Get("X-Hmac-Signature")
	if sig == "" {
		sig = r.URL.Query().Get("hmac")
	}

	err = s.webhooks.Dispatch(r.Context(), payload, sig)
	var badReq usecase.ErrBadRequest
	switch {
	case err == nil:
		s.json(w, http.StatusOK, map[string]bool{"received": true})
	case errors.Is(err, usecase.ErrSignatureInvalid):
		s.err(w, http.StatusUnauthorized, "SignatureInvalid", "webhook signature invalid")
	case errors.As(err, &badReq):
		s.err(w, http.StatusBadRequest, "BadRequest", badReq.Error())
	default:
		s.err(w, http.StatusInternalServerError, "ServerError", "internal error")
	}
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	o, err := s.orders.Get(r.Context(), id)
	if errors.Is(err, repo.ErrOrderNotFound) {
		s.err(w, http.StatusNotFound, "NotFound", "order not found")
		return
	}
	if err != nil {
		s.err(w, http.StatusInternalServerError, "ServerError", "internal error")
		return
	}
	s.json(w, http.StatusOK, o)
}

func (s *Server) json(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) err(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": msg,
		},
	})
}
