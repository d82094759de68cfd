package services

import "errors"

var (
	ErrCustomerNameRequired = errors.New("customer name is required")
	ErrEmptyOrder           = errors.New("order must contain at least one item")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrInvalidStatus        = errors.New("unknown item status")
)
