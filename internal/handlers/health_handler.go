package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthTimeout = 3 * time.Second

// Health reports whether the store answers.
func (h *EmployeeHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	timestamp := time.Now().UTC().Format(time.RFC3339)
	if err := h.svc.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		body := gin.H{
			"success":   false,
			"status":    "ERROR",
			"database":  "disconnected",
			"timestamp": timestamp,
			"error":     "database unreachable",
		}
		if h.dev {
			body["details"] = err.Error()
		}
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"status":    "OK",
		"database":  "connected",
		"timestamp": timestamp,
	})
}
