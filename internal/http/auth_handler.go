package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"noteful-api/internal/service"
)

// AuthHandler emite tokens para requests que ya pasaron un guard.
type AuthHandler struct {
	logger *zap.Logger
	tokens *service.JWTService
}

func NewAuthHandler(logger *zap.Logger, tokens *service.JWTService) *AuthHandler {
	return &AuthHandler{logger: logger, tokens: tokens}
}

// Login maneja POST /login, detras de CredentialGuard.
func (h *AuthHandler) Login(c *gin.Context) {
	h.issue(c)
}

// Refresh maneja POST /refresh, detras de TokenGuard. Mismo claim, nueva expiracion.
func (h *AuthHandler) Refresh(c *gin.Context) {
	h.issue(c)
}

func (h *AuthHandler) issue(c *gin.Context) {
	principal, ok := GetPrincipal(c)
	if !ok {
		respondError(c, h.logger, service.ErrUnauthorized)
		return
	}
	if h.tokens == nil {
		respondError(c, h.logger, errors.New("jwt not configured"))
		return
	}
	token, err := h.tokens.Issue(principal, principal.Username)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authToken": token})
}
