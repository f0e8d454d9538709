package http

import (
	"errors"
	"net/http"

	"chatdesk/internal/entities"
	"chatdesk/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors to status codes. Unknown errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entities.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, entities.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, entities.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect email or password"})
	case errors.Is(err, entities.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
	case errors.Is(err, entities.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, entities.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, entities.ErrGenerationFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate AI response"})
	default:
		logger.FromContext(c.Request.Context()).Error("request failed",
			zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
