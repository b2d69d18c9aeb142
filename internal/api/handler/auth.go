package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mcoot/wordlegame-go/internal/api/apierr"
	"github.com/mcoot/wordlegame-go/internal/api/request"
	"github.com/mcoot/wordlegame-go/internal/api/response"
	"github.com/mcoot/wordlegame-go/internal/services/auth"
)

// AuthHandler issues admin tokens
type AuthHandler struct {
	authService *auth.Service
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// Token handles POST /api/auth/token
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req request.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Password == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("password is required"))
		return
	}

	token, err := h.authService.Login(req.Password)
	if err != nil {
		h.logger.Warn("admin login failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()))
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TokenFromAuth(token))
}
