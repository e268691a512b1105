package transport

import (
	"net/http"
	"strconv"

	"storefront-be/internal/product"

	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	products product.Service
}

func NewProductHandler(products product.Service) *ProductHandler {
	return &ProductHandler{products: products}
}

func (h *ProductHandler) Routes(r chi.Router, requireAuth, requireAdmin func(http.Handler) http.Handler) {
	r.Get("/", h.list)
	r.Get("/categories", h.categories)
	r.Get("/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth, requireAdmin)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func parseUintParam(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	return uint(id), err
}

func pathID(r *http.Request) (uint, bool) {
	id, err := parseUintParam(r, "id")
	return id, err == nil
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

func queryFloat(r *http.Request, key string) *float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := product.ListOptions{
		Category:        q.Get("category"),
		Search:          q.Get("search"),
		MinPrice:        queryFloat(r, "minPrice"),
		MaxPrice:        queryFloat(r, "maxPrice"),
		Page:            queryInt(r, "page"),
		Limit:           queryInt(r, "limit"),
		IncludeInactive: q.Get("includeInactive") == "true",
	}

	products, total, err := h.products.ListProducts(r.Context(), opts)
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusOK, "Products retrieved", envelope{
		"products": toProductViews(products),
		"total":    total,
	})
}

func (h *ProductHandler) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.products.Categories(r.Context())
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "Categories retrieved", envelope{"categories": categories})
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	p, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "Product retrieved", envelope{"product": toProductView(*p)})
}

type createProductRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	SKU         string  `json:"sku"`
	Category    string  `json:"category"`
	ImageURL    *string `json:"imageUrl"`
	Inventory   int     `json:"inventory"`
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var v validator
	v.require("title", req.Title)
	v.require("category", req.Category)
	v.check(req.Price >= 0, "price", "price cannot be negative")
	v.check(req.Inventory >= 0, "inventory", "inventory cannot be negative")
	if !v.ok() {
		respondValidation(w, v.errs)
		return
	}

	p, err := h.products.CreateProduct(r.Context(), product.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		SKU:         req.SKU,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Inventory:   req.Inventory,
	})
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusCreated, "Product created successfully", envelope{"product": toProductView(*p)})
}

type updateProductRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	ImageURL    *string  `json:"imageUrl"`
	Inventory   *int     `json:"inventory"`
	InStock     *bool    `json:"inStock"`
	IsActive    *bool    `json:"isActive"`
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var req updateProductRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var v validator
	v.check(req.Price == nil || *req.Price >= 0, "price", "price cannot be negative")
	v.check(req.Inventory == nil || *req.Inventory >= 0, "inventory", "inventory cannot be negative")
	if !v.ok() {
		respondValidation(w, v.errs)
		return
	}

	p, err := h.products.UpdateProduct(r.Context(), product.UpdateParams{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Inventory:   req.Inventory,
		InStock:     req.InStock,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusOK, "Product updated successfully", envelope{"product": toProductView(*p)})
}

func (h *ProductHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := h.products.DeleteProduct(r.Context(), id); err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "Product deleted successfully", nil)
}
