package transport

import (
	"net/http"

	"storefront-be/internal/cart"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	carts cart.Service
}

func NewCartHandler(carts cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

func (h *CartHandler) Routes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Use(requireAuth)
	r.Get("/", h.get)
	r.Get("/count", h.count)
	r.Post("/add", h.add)
	r.Put("/update/{productId}", h.update)
	r.Delete("/remove/{productId}", h.remove)
	r.Delete("/clear", h.clear)
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	c, err := h.carts.GetCart(r.Context(), userID)
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "Cart retrieved", envelope{"cart": toCartView(c)})
}

func (h *CartHandler) count(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	n, err := h.carts.ItemCount(r.Context(), userID)
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "Cart count retrieved", envelope{"count": n})
}

type cartLineRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var req cartLineRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var v validator
	v.check(req.ProductID != 0, "productId", "productId is required")
	v.check(req.Quantity >= 1, "quantity", "quantity must be at least 1")
	if !v.ok() {
		respondValidation(w, v.errs)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	c, err := h.carts.AddToCart(r.Context(), cart.AddParams{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "Item added to cart", envelope{"cart": toCartView(c)})
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request) {
	productID, err := parseUintParam(r, "productId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var req updateQuantityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var v validator
	v.check(req.Quantity >= 0, "quantity", "quantity cannot be negative")
	if !v.ok() {
		respondValidation(w, v.errs)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	c, err := h.carts.UpdateQuantity(r.Context(), cart.UpdateParams{
		UserID:    userID,
		ProductID: productID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "Cart updated", envelope{"cart": toCartView(c)})
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	productID, err := parseUintParam(r, "productId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	c, err := h.carts.RemoveFromCart(r.Context(), userID, productID)
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "Item removed from cart", envelope{"cart": toCartView(c)})
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	if err := h.carts.ClearCart(r.Context(), userID); err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "Cart cleared", nil)
}
