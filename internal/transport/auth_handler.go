package transport

import (
	"net/http"

	"storefront-be/internal/user"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	users user.Service
}

func NewAuthHandler(users user.Service) *AuthHandler {
	return &AuthHandler{users: users}
}

func (h *AuthHandler) Routes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/me", h.profile)
		r.Put("/profile", h.updateProfile)
	})
}

type registerRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var v validator
	v.require("name", req.Name)
	v.require("email", req.Email)
	v.email("email", req.Email)
	v.check(len(req.Password) >= 6, "password", "password must be at least 6 characters")
	if !v.ok() {
		respondValidation(w, v.errs)
		return
	}

	token, u, err := h.users.Register(r.Context(), user.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusCreated, "User registered successfully", envelope{
		"token": token,
		"user":  toUserView(u),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var v validator
	v.require("email", req.Email)
	v.require("password", req.Password)
	if !v.ok() {
		respondValidation(w, v.errs)
		return
	}

	token, u, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusOK, "Login successful", envelope{
		"token": token,
		"user":  toUserView(u),
	})
}

func (h *AuthHandler) profile(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	u, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusOK, "Profile retrieved", envelope{"user": toUserView(u)})
}

type updateProfileRequest struct {
	Name    *string       `json:"name"`
	Phone   *string       `json:"phone"`
	Address *user.Address `json:"address"`
}

func (h *AuthHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	u, err := h.users.UpdateProfile(r.Context(), user.UpdateProfileParams{
		UserID:  userID,
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		respondServiceError(r.Context(), w, err)
		return
	}

	respond(w, http.StatusOK, "Profile updated successfully", envelope{"user": toUserView(u)})
}
