package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/qzaway/foodcourt/pkg/errors"
)

// respondError maps a backend failure to a status and the notification text
func respondError(c *gin.Context, logger *zap.Logger, message string, err error) {
	status := http.StatusBadGateway

	var reqErr *apperrors.ErrRequest
	var notFound *apperrors.ErrNotFound
	var unavailable *apperrors.ErrUnavailable
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &unavailable):
		status = http.StatusServiceUnavailable
	case errors.As(err, &reqErr):
		if reqErr.Status >= 400 && reqErr.Status < 500 {
			status = reqErr.Status
		}
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	logger.Warn(message, zap.Int("status", status), zap.Error(err))
	c.JSON(status, gin.H{"error": message, "detail": err.Error()})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func queryBool(c *gin.Context, key string) bool {
	v, _ := strconv.ParseBool(c.Query(key))
	return v
}
