package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/orderdesk/internal/cart"
	"github.com/fjod/orderdesk/internal/checkout"
	"github.com/fjod/orderdesk/internal/gateway"
	"github.com/fjod/orderdesk/internal/repository"
	"github.com/fjod/orderdesk/internal/service"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError turns a domain error into its HTTP answer. Every failure kind ends here so none escapes as a panic.
func handleError(w http.ResponseWriter, err error) {
	var (
		rejected   *cart.RejectedMutationError
		validation *checkout.ValidationError
		submission *checkout.SubmissionError
		gwErr      *gateway.Error
	)

	switch {
	case errors.As(err, &rejected):
		respondError(w, http.StatusUnprocessableEntity, "rejected_mutation", rejected.Err.Error())
	case errors.As(err, &validation):
		respondError(w, http.StatusUnprocessableEntity, "validation_failed", validation.Reason.Error())
	case errors.Is(err, checkout.ErrConcurrentSubmission):
		respondError(w, http.StatusConflict, "submission_in_progress", err.Error())
	case errors.As(err, &submission):
		respondError(w, submission.StatusCode(), "submission_failed", submission.Message)
	case errors.Is(err, checkout.ErrNotAgent):
		respondError(w, http.StatusForbidden, "permission_denied", err.Error())
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, repository.ErrSavedCartNotFound),
		gateway.IsNotFound(err):
		respondError(w, http.StatusNotFound, "not_found", notFoundMessage(err))
	case errors.Is(err, service.ErrNothingToSave), errors.Is(err, service.ErrInvalidName):
		respondError(w, http.StatusUnprocessableEntity, "invalid_saved_cart", err.Error())
	case errors.Is(err, gateway.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "backend did not answer in time")
	case errors.As(err, &gwErr):
		respondError(w, http.StatusBadGateway, "backend_error", gateway.UserMessage(err))
	default:
		zap.L().Error("unhandled error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func notFoundMessage(err error) string {
	if gateway.IsNotFound(err) {
		return "resource not found"
	}
	return err.Error()
}
