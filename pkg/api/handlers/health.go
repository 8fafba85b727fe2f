package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/jarvis-node/pkg/api/types"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	provisioner Provisioner
	backend     string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(provisioner Provisioner, backend string) *HealthHandler {
	return &HealthHandler{provisioner: provisioner, backend: backend}
}

// Health handles GET /health
// @Summary      Health check
// @Description  Returns liveness, the provisioning state and the active WiFi backend
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse  "Service is healthy"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, types.HealthResponse{
		Status:      "healthy",
		State:       h.provisioner.Status().State,
		WiFiBackend: h.backend,
		Timestamp:   time.Now(),
	})
}
