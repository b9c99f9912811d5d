package transport

import (
	"net/http"

	"salespoint/internal/middleware"
	"salespoint/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LoginRequest represents the operator login payload
type LoginRequest struct {
	PIN string `json:"pin" validate:"required,min=4"`
}

// LoginResponse carries the issued operator token
type LoginResponse struct {
	Token string `json:"token"`
}

// AuthHandler handles operator authentication
type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/auth/login", h.Login)
}

// Login exchanges the operator PIN for a token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.authService.Login(req.PIN)
	if err != nil {
		if err == service.ErrInvalidPIN {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid PIN")
			return
		}

		h.logger.Error("Login failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	h.logger.Info("Operator logged in")
	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{Token: token})
}
