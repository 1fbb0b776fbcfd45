package service

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNothingToSave   = errors.New("cart is empty, nothing to save")
	ErrInvalidName     = errors.New("saved cart name is required")
)
