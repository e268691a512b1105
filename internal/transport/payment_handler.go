package transport

import (
	"fmt"
	"io"
	"net/http"

	"storefront-be/internal/logger"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// minChargeAmount is the processor's floor for a card charge, in dollars.
const minChargeAmount = 0.50

var supportedCurrencies = map[string]bool{
	"usd": true,
	"eur": true,
	"gbp": true,
}

type PaymentHandler struct {
	gateway       payment.Gateway
	orders        order.Service
	webhookSecret string
}

func NewPaymentHandler(gateway payment.Gateway, orders order.Service, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{
		gateway:       gateway,
		orders:        orders,
		webhookSecret: webhookSecret,
	}
}

func (h *PaymentHandler) Routes(r chi.Router, requireAuth, requireAdmin func(http.Handler) http.Handler) {
	// The processor signs the webhook itself; bearer auth does not apply.
	r.Post("/webhook", h.webhook)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/create-intent", h.createIntent)
		r.Post("/confirm", h.confirm)
		r.Get("/intent/{id}", h.getIntent)
		r.With(requireAdmin).Post("/refund", h.refund)
	})
}

type createIntentRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

func (h *PaymentHandler) createIntent(w http.ResponseWriter, r *http.Request) {
	var req createIntentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Currency == "" {
		req.Currency = "usd"
	}

	var v validator
	v.check(req.Amount >= minChargeAmount, "amount", "amount must be at least 0.50")
	v.check(supportedCurrencies[req.Currency], "currency", "currency must be one of usd, eur, gbp")
	if !v.ok() {
		respondValidation(w, v.errs)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	intent, err := h.gateway.CreateIntent(r.Context(), req.Amount, req.Currency, map[string]string{
		"userId": fmt.Sprint(userID),
		"email":  utils.GetUserEmailFromContext(r.Context()),
	})
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusOK, "Payment intent created", envelope{
		"clientSecret":    intent.ClientSecret,
		"paymentIntentId": intent.ID,
	})
}

type confirmRequest struct {
	PaymentIntentID string                 `json:"paymentIntentId"`
	ShippingAddress shippingAddressRequest `json:"shippingAddress"`
	Notes           *string                `json:"notes"`
}

func (h *PaymentHandler) confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var v validator
	v.require("paymentIntentId", req.PaymentIntentID)
	req.ShippingAddress.validate(&v)
	if !v.ok() {
		respondValidation(w, v.errs)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	o, err := h.orders.ConfirmPayment(r.Context(), userID, order.PaidCheckoutInput{
		CheckoutInput: order.CheckoutInput{
			ShippingAddress: req.ShippingAddress.toModel(),
			PaymentMethod:   payment.MethodCard,
			Notes:           req.Notes,
		},
		IntentID: req.PaymentIntentID,
	})
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusCreated, "Payment confirmed and order placed", envelope{"order": toOrderView(o)})
}

// getIntent lets a buyer poll their own intent's status. Callers may only
// read intents carrying their own user id in the metadata.
func (h *PaymentHandler) getIntent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	intent, err := h.gateway.RetrieveIntent(r.Context(), id)
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}

	if !utils.IsAdmin(r.Context()) {
		userID, _ := utils.GetUserIDFromContext(r.Context())
		if intent.Metadata["userId"] != fmt.Sprint(userID) {
			respondError(w, http.StatusNotFound, "Payment intent not found")
			return
		}
	}

	respond(w, http.StatusOK, "Payment intent retrieved", envelope{
		"id":       intent.ID,
		"status":   intent.Status,
		"amount":   intent.Amount,
		"currency": intent.Currency,
	})
}

// webhook verifies the processor's signature over the raw payload before any
// parsing. Reconciliation failures are logged, not surfaced: the processor
// retries on non-2xx and replaying a failed DB write is its job, not the
// client's.
func (h *PaymentHandler) webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 65536))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ev, err := payment.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		logger.FromCtx(r.Context()).Warn("webhook signature rejected", zap.Error(err))
		respondServiceError(r.Context(), w, err)
		return
	}

	if err := h.orders.HandleProcessorEvent(r.Context(), ev); err != nil {
		logger.FromCtx(r.Context()).Error("webhook reconciliation failed",
			zap.String("event_type", ev.Type),
			zap.String("intent_id", ev.IntentID),
			zap.Error(err),
		)
	}

	writeJSON(w, http.StatusOK, envelope{"received": true})
}

type refundRequest struct {
	PaymentIntentID string   `json:"paymentIntentId"`
	Amount          *float64 `json:"amount"`
	Reason          string   `json:"reason"`
}

func (h *PaymentHandler) refund(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var v validator
	v.require("paymentIntentId", req.PaymentIntentID)
	v.check(req.Amount == nil || *req.Amount > 0, "amount", "amount must be greater than zero")
	if !v.ok() {
		respondValidation(w, v.errs)
		return
	}

	res, err := h.orders.RefundPayment(r.Context(), req.PaymentIntentID, req.Amount, req.Reason)
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusOK, "Refund processed successfully", envelope{
		"refundId": res.ID,
		"amount":   res.Amount,
		"status":   res.Status,
	})
}
