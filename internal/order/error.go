package order

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidTransition  = errors.New("order cannot be cancelled at this stage")
	ErrAmountMismatch     = errors.New("payment amount does not match order total")
	ErrPaymentNotComplete = errors.New("payment has not been completed")
)
