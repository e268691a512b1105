package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"storefront-be/internal/cart"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/product"
	"storefront-be/internal/user"

	"go.uber.org/zap"
)

type envelope map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// respond writes the success envelope: a message plus any payload fields.
func respond(w http.ResponseWriter, status int, message string, payload envelope) {
	body := envelope{"message": message}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	metrics.HTTP.Errors.Inc()
	writeJSON(w, status, envelope{"message": message})
}

// respondServiceError maps domain errors onto HTTP statuses. Unrecognized
// errors are logged and surfaced as a generic 500.
func respondServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrEmailExists):
		respondError(w, http.StatusBadRequest, "User with this email already exists")
	case errors.Is(err, user.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, user.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, product.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, cart.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "Item not found in cart")
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "Quantity must be at least 1")
	case errors.Is(err, order.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, order.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "Cart is empty")
	case errors.Is(err, order.ErrInvalidTransition):
		respondError(w, http.StatusBadRequest, "Order cannot be cancelled at this stage")
	case errors.Is(err, order.ErrInvalidStatus):
		respondError(w, http.StatusBadRequest, "Invalid order status")
	case errors.Is(err, order.ErrAmountMismatch):
		respondError(w, http.StatusBadRequest, "Payment amount does not match order total")
	case errors.Is(err, order.ErrPaymentNotComplete):
		respondError(w, http.StatusBadRequest, "Payment has not been completed")
	case errors.Is(err, payment.ErrInvalidSignature):
		respondError(w, http.StatusBadRequest, "Invalid webhook signature")
	default:
		if ie, ok := product.IsInsufficientInventory(err); ok {
			metrics.HTTP.Errors.Inc()
			writeJSON(w, http.StatusBadRequest, envelope{
				"message":   ie.Error(),
				"productId": ie.ProductID,
				"available": ie.Available,
			})
			return
		}
		if ue, ok := payment.IsUpstream(err); ok {
			msg := "Payment processor error"
			if ue.Message != "" {
				msg = ue.Message
			}
			respondError(w, http.StatusBadGateway, msg)
			return
		}
		logger.FromCtx(ctx).Error("unhandled service error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
