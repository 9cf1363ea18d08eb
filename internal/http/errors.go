package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"noteful-api/internal/domain"
	"noteful-api/internal/service"
)

// validationErrorBody es el formato de error de registro.
type validationErrorBody struct {
	Code     int    `json:"code"`
	Reason   string `json:"reason"`
	Message  string `json:"message"`
	Location string `json:"location"`
}

// respondError traduce errores de servicio a status y body; lo no reconocido es 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		status := http.StatusUnprocessableEntity
		if errors.Is(err, domain.ErrDuplicateUsername) {
			status = http.StatusBadRequest
		}
		c.AbortWithStatusJSON(status, validationErrorBody{
			Code:     status,
			Reason:   "ValidationError",
			Message:  verr.Message,
			Location: verr.Location,
		})
	case errors.Is(err, service.ErrMissingCredentials):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Bad Request"})
	case errors.Is(err, service.ErrUnauthorized):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, domain.ErrUserNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
