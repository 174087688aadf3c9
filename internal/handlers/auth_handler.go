package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
	"github.com/atrajit-sarkar/Discord-Guardian/internal/services"
)

type AuthHandler struct {
	admins *services.AdminService
}

func NewAuthHandler(admins *services.AdminService) *AuthHandler {
	return &AuthHandler{admins: admins}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	token, err := h.admins.Login(&req)
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) || errors.Is(err, services.ErrInvalidPassword) {
			writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid credentials"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Login failed"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.AuthResponse{Token: token}))
}
