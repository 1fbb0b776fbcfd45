package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/orderdesk/internal/cart"
	"github.com/fjod/orderdesk/internal/checkout"
	"github.com/fjod/orderdesk/internal/domain"
	"github.com/fjod/orderdesk/internal/service"
)

type SavedCarts interface {
	Get(ctx context.Context, actorID string) (*domain.SavedCart, error)
	Save(ctx context.Context, actorID, name string, lines []domain.CartLine) (*domain.SavedCart, error)
	Delete(ctx context.Context, actorID string) error
	Restore(ctx context.Context, actorID, token string, store *cart.Store) (*service.RestoreResult, error)
}

// SavedCartHandler serves the draft endpoints. Drafts are only copied into the live cart by Restore.
type SavedCartHandler struct {
	sessions Sessions
	drafts   SavedCarts
	timeout  time.Duration
}

func NewSavedCartHandler(sessions Sessions, drafts SavedCarts, timeout time.Duration) *SavedCartHandler {
	return &SavedCartHandler{
		sessions: sessions,
		drafts:   drafts,
		timeout:  timeout,
	}
}

type SaveCartRequestDTO struct {
	Name string `json:"name"`
}

type RestoreResponseDTO struct {
	Restored []int64         `json:"restored"`
	Skipped  []int64         `json:"skipped"`
	Cart     CartResponseDTO `json:"cart"`
}

// GET /api/v1/saved-cart
func (h *SavedCartHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	saved, err := h.drafts.Get(ctx, actor.ID)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// POST /api/v1/saved-cart
func (h *SavedCartHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := sessionFor(h.sessions, w, r)
	if !ok {
		return
	}

	var req SaveCartRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	saved, err := h.drafts.Save(ctx, s.Actor.ID, req.Name, s.Cart.Lines())
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

// DELETE /api/v1/saved-cart
func (h *SavedCartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor, ok := actorFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	if err := h.drafts.Delete(ctx, actor.ID); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/saved-cart/restore
func (h *SavedCartHandler) Restore(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := sessionFor(h.sessions, w, r)
	if !ok {
		return
	}
	// Agents price at the beneficiary's channel, which is unknown until a customer is picked.
	if !s.Cart.Channel().Valid() {
		respondError(w, http.StatusUnprocessableEntity, "validation_failed", checkout.ErrMissingBeneficiary.Error())
		return
	}

	result, err := h.drafts.Restore(ctx, s.Actor.ID, tokenFromContext(r.Context()), s.Cart)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, RestoreResponseDTO{
		Restored: result.Restored,
		Skipped:  result.Skipped,
		Cart:     cartView(s),
	})
}
