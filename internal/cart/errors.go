package cart

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrInactiveProduct = errors.New("product is not active")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrLineNotFound    = errors.New("product is not in the cart")
	ErrChannelLocked   = errors.New("cart already holds lines priced for another channel")
)

// RejectedMutationError reports a cart operation that was refused; the cart is left unchanged.
type RejectedMutationError struct {
	Op        string
	ProductID int64
	Err       error
}

func (e *RejectedMutationError) Error() string {
	if e.ProductID == 0 {
		return fmt.Sprintf("%s rejected: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s product %d rejected: %v", e.Op, e.ProductID, e.Err)
}

func (e *RejectedMutationError) Unwrap() error {
	return e.Err
}

func reject(op string, productID int64, err error) error {
	return &RejectedMutationError{Op: op, ProductID: productID, Err: err}
}
