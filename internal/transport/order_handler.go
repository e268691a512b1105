package transport

import (
	"net/http"

	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	orders order.Service
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) Routes(r chi.Router, requireAuth, requireAdmin func(http.Handler) http.Handler) {
	r.Use(requireAuth)
	r.Post("/", h.checkout)
	r.Get("/my-orders", h.myOrders)
	r.Get("/{id}", h.get)
	r.Put("/{id}/cancel", h.cancel)
	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/admin/all", h.listAll)
		r.Put("/{id}/status", h.updateStatus)
	})
}

type shippingAddressRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

func (a shippingAddressRequest) validate(v *validator) {
	v.require("shippingAddress.name", a.Name)
	v.require("shippingAddress.email", a.Email)
	v.email("shippingAddress.email", a.Email)
	v.require("shippingAddress.phone", a.Phone)
	v.require("shippingAddress.street", a.Street)
	v.require("shippingAddress.city", a.City)
	v.require("shippingAddress.state", a.State)
	v.require("shippingAddress.zipCode", a.ZipCode)
	v.require("shippingAddress.country", a.Country)
}

func (a shippingAddressRequest) toModel() order.ShippingAddress {
	return order.ShippingAddress{
		Name: a.Name, Email: a.Email, Phone: a.Phone,
		Street: a.Street, City: a.City, State: a.State,
		ZipCode: a.ZipCode, Country: a.Country,
	}
}

type checkoutRequest struct {
	ShippingAddress shippingAddressRequest `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	Notes           *string                `json:"notes"`
}

func (h *OrderHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var v validator
	req.ShippingAddress.validate(&v)
	v.check(payment.ValidMethod(req.PaymentMethod), "paymentMethod", "paymentMethod must be one of card, paypal, bank_transfer")
	if !v.ok() {
		respondValidation(w, v.errs)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	o, err := h.orders.Checkout(r.Context(), userID, order.CheckoutInput{
		ShippingAddress: req.ShippingAddress.toModel(),
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
	})
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusCreated, "Order placed successfully", envelope{"order": toOrderView(o)})
}

func listOptionsFromQuery(r *http.Request) order.ListOptions {
	q := r.URL.Query()
	opts := order.ListOptions{
		Page:      queryInt(r, "page"),
		Limit:     queryInt(r, "limit"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	if raw := q.Get("status"); raw != "" {
		status := order.Status(raw)
		if status.Valid() {
			opts.Status = &status
		}
	}
	return opts
}

func (h *OrderHandler) myOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	orders, pg, err := h.orders.ListUserOrders(r.Context(), userID, listOptionsFromQuery(r))
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusOK, "Orders retrieved", envelope{
		"orders":     toOrderViews(orders),
		"pagination": pg,
	})
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	o, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "Order retrieved", envelope{"order": toOrderView(o)})
}

func (h *OrderHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	o, err := h.orders.CancelOrder(r.Context(), userID, id)
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "Order cancelled successfully", envelope{"order": toOrderView(o)})
}

func (h *OrderHandler) listAll(w http.ResponseWriter, r *http.Request) {
	orders, pg, err := h.orders.ListAllOrders(r.Context(), listOptionsFromQuery(r))
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusOK, "Orders retrieved", envelope{
		"orders":     toOrderViews(orders),
		"pagination": pg,
	})
}

type updateStatusRequest struct {
	Status         string  `json:"status"`
	TrackingNumber *string `json:"trackingNumber"`
}

func (h *OrderHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var req updateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	o, err := h.orders.AdminUpdateStatus(r.Context(), id, order.Status(req.Status), req.TrackingNumber)
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "Order status updated", envelope{"order": toOrderView(o)})
}
