package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"stockpulse/internal/domain/auth"
	"stockpulse/internal/infrastructure/http/v1/dto"
)

// TokenIssuer exchanges credentials for an access token.
type TokenIssuer interface {
	Login(ctx context.Context, creds auth.Credentials) (*auth.Token, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service TokenIssuer
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service TokenIssuer) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Token handles POST /auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, err := h.service.Login(c.Request.Context(), req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, token)
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(public *gin.RouterGroup) {
	public.POST("/token", h.Token)
}
