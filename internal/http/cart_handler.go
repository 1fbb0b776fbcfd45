package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/orderdesk/internal/checkout"
	"github.com/fjod/orderdesk/internal/domain"
	"github.com/fjod/orderdesk/internal/logger"
	"github.com/fjod/orderdesk/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Sessions interface {
	Get(actor domain.Actor) *session.Session
}

type Catalog interface {
	Products(ctx context.Context, token string) ([]domain.Product, error)
	Product(ctx context.Context, token string, id int64) (domain.Product, error)
}

type CustomerDirectory interface {
	GetCustomer(ctx context.Context, token, customerID string) (*domain.Customer, error)
}

type CartHandler struct {
	sessions  Sessions
	catalog   Catalog
	customers CustomerDirectory
	timeout   time.Duration
	log       *zap.Logger
}

func NewCartHandler(sessions Sessions, catalog Catalog, customers CustomerDirectory, timeout time.Duration, log *zap.Logger) *CartHandler {
	return &CartHandler{
		sessions:  sessions,
		catalog:   catalog,
		customers: customers,
		timeout:   timeout,
		log:       log,
	}
}

// maxLineQuantity caps a single request; lower bounds are enforced by the cart.
const maxLineQuantity = 100_000

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  *int  `json:"quantity,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type SelectCustomerRequestDTO struct {
	CustomerID string `json:"customer_id"`
}

type CartLineDTO struct {
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	UnitsPerCase int             `json:"units_per_case"`
	Cases        int             `json:"cases"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type CartResponseDTO struct {
	Lines         []CartLineDTO      `json:"lines"`
	LineCount     int                `json:"line_count"`
	Total         decimal.Decimal    `json:"total"`
	State         domain.CartState   `json:"state"`
	Channel       domain.ChannelType `json:"channel,omitempty"`
	Customer      *domain.Customer   `json:"customer,omitempty"`
	CheckoutState checkout.State     `json:"checkout_state"`
	LastOutcome   checkout.State     `json:"last_outcome,omitempty"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, cartView(s))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity > maxLineQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", fmt.Sprintf("quantity must not exceed %d", maxLineQuantity))
		return
	}

	product, err := h.catalog.Product(ctx, tokenFromContext(r.Context()), req.ProductID)
	if err != nil {
		handleError(w, err)
		return
	}
	if err := s.Cart.AddLine(product, quantity); err != nil {
		logger.FromContext(r.Context(), h.log).Info("add to cart rejected",
			zap.String("actor_id", s.Actor.ID), zap.Int64("product_id", req.ProductID), zap.Error(err))
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, cartView(s))
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}
	if *req.Quantity > maxLineQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", fmt.Sprintf("quantity must not exceed %d", maxLineQuantity))
		return
	}

	if err := s.Cart.SetQuantity(productID, *req.Quantity); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cartView(s))
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	s.Cart.RemoveLine(productID)
	respondJSON(w, http.StatusOK, cartView(s))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	s.Cart.Clear()
	respondJSON(w, http.StatusOK, cartView(s))
}

// PUT /api/v1/cart/customer
func (h *CartHandler) SelectCustomer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if !s.Actor.OrdersForOthers() {
		handleError(w, checkout.ErrNotAgent)
		return
	}

	var req SelectCustomerRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	if req.CustomerID == "" {
		respondError(w, http.StatusBadRequest, "invalid_customer_id", "customer_id is required")
		return
	}

	customer, err := h.customers.GetCustomer(ctx, tokenFromContext(r.Context()), req.CustomerID)
	if err != nil {
		handleError(w, err)
		return
	}
	if err := s.Checkout.SelectCustomer(*customer); err != nil {
		handleError(w, err)
		return
	}

	logger.FromContext(r.Context(), h.log).Info("beneficiary selected",
		zap.String("actor_id", s.Actor.ID), zap.String("customer_id", customer.ID),
		zap.Stringer("channel", customer.ChannelType))
	respondJSON(w, http.StatusOK, cartView(s))
}

func (h *CartHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	return sessionFor(h.sessions, w, r)
}

func sessionFor(sessions Sessions, w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return nil, false
	}
	return sessions.Get(actor), true
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}

// cartView renders one snapshot of the cart so lines and total always agree.
func cartView(s *session.Session) CartResponseDTO {
	lines := s.Cart.Lines()
	view := CartResponseDTO{
		Lines:         make([]CartLineDTO, 0, len(lines)),
		LineCount:     len(lines),
		Total:         decimal.Zero,
		State:         domain.CartEmpty,
		Channel:       s.Cart.Channel(),
		CheckoutState: s.Checkout.State(),
		LastOutcome:   s.Checkout.LastOutcome(),
	}
	if len(lines) > 0 {
		view.State = domain.CartNonEmpty
	}
	for _, l := range lines {
		subtotal := l.Subtotal()
		view.Total = view.Total.Add(subtotal)
		view.Lines = append(view.Lines, CartLineDTO{
			ProductID:    l.ProductID,
			ProductName:  l.ProductName,
			UnitPrice:    l.UnitPrice,
			Quantity:     l.Quantity,
			UnitsPerCase: l.UnitsPerCase,
			Cases:        l.Cases(),
			Subtotal:     subtotal,
		})
	}
	if c, ok := s.Checkout.Beneficiary(); ok {
		view.Customer = &c
	}
	return view
}
