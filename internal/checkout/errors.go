package checkout

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fjod/orderdesk/internal/gateway"
)

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrMissingBeneficiary   = errors.New("no customer selected for this order")
	ErrInvalidLine          = errors.New("cart line has invalid quantity or price")
	ErrConcurrentSubmission = errors.New("an order submission is already in progress")
	ErrNotAgent             = errors.New("only sales agents and warehouse users can order for a customer")
)

// ValidationError means checkout stopped before any call to the backend.
type ValidationError struct {
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout validation failed: %v", e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

// SubmissionError means the backend call was made and failed. The cart is untouched.
type SubmissionError struct {
	Err     error
	Message string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("order submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// StatusCode returns the backend's 4xx status when it rejected the order, otherwise 502.
func (e *SubmissionError) StatusCode() int {
	var gwErr *gateway.Error
	if errors.As(e.Err, &gwErr) && gwErr.StatusCode >= 400 && gwErr.StatusCode < 500 {
		return gwErr.StatusCode
	}
	return http.StatusBadGateway
}

func newSubmissionError(err error) *SubmissionError {
	return &SubmissionError{Err: err, Message: gateway.UserMessage(err)}
}
