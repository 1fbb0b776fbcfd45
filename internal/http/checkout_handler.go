package http

import (
	"net/http"

	"github.com/fjod/orderdesk/internal/domain"
	"github.com/fjod/orderdesk/internal/logger"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	sessions Sessions
	log      *zap.Logger
}

func NewCheckoutHandler(sessions Sessions, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
		log:      log,
	}
}

type CheckoutResponseDTO struct {
	OrderNumber string             `json:"order_number"`
	Status      string             `json:"status"`
	CustomerID  string             `json:"customer_id"`
	Channel     domain.ChannelType `json:"channel"`
}

// POST /api/v1/checkout
// The coordinator bounds the call with its own submit timeout.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFor(h.sessions, w, r)
	if !ok {
		return
	}

	receipt, err := s.Checkout.Submit(r.Context(), tokenFromContext(r.Context()))
	if err != nil {
		logger.FromContext(r.Context(), h.log).Info("checkout not completed",
			zap.String("actor_id", s.Actor.ID), zap.Error(err))
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		OrderNumber: receipt.OrderNumber,
		Status:      receipt.Status,
		CustomerID:  receipt.CustomerID,
		Channel:     receipt.Channel,
	})
}
