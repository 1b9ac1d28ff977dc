package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/termsched/internal/app/models/dto"
)

// Pinger reports whether a storage backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports liveness of the service and its storage
type HealthController struct {
	pinger  Pinger
	backend string
}

// NewHealthController creates a new HealthController. pinger may be nil for
// backends that cannot fail.
func NewHealthController(pinger Pinger, backend string) *HealthController {
	return &HealthController{pinger: pinger, backend: backend}
}

// Health answers 200 when storage responds and 503 otherwise
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.HealthResponse}
// @Failure 503 {object} dto.ErrorResponse
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	if c.pinger != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := c.pinger.Ping(pingCtx); err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeServiceUnavailable, "Storage unavailable").WithDetails(err.Error())
			ctx.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(errorDetail))
			return
		}
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.HealthResponse{Status: "ok", Database: c.backend}))
}
