package product

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// InsufficientInventoryError names the offending product so clients can
// correct the request without re-fetching the whole cart.
type InsufficientInventoryError struct {
	ProductID uint
	Title     string
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("product %q is not available or insufficient stock (requested %d, available %d)",
			e.Title, e.Requested, e.Available)
	}
	return fmt.Sprintf("only %d items available in stock", e.Available)
}

// IsInsufficientInventory reports whether err wraps an InsufficientInventoryError.
func IsInsufficientInventory(err error) (*InsufficientInventoryError, bool) {
	var ie *InsufficientInventoryError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
