package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/jarvis-node/pkg/api/types"
	"github.com/urmzd/jarvis-node/pkg/provisioning"
)

const defaultAttemptsLimit = 20

// AttemptsHandler handles the provisioning attempt journal
type AttemptsHandler struct {
	provisioner Provisioner
}

// NewAttemptsHandler creates a new attempts handler
func NewAttemptsHandler(provisioner Provisioner) *AttemptsHandler {
	return &AttemptsHandler{provisioner: provisioner}
}

// ListAttempts handles GET /attempts
// @Summary      List provisioning attempts
// @Description  Returns recent provisioning attempts, newest first
// @Tags         provisioning
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of attempts"  default(20)
// @Success      200    {object}  types.AttemptsResponse
// @Failure      400    {object}  types.ErrorResponse  "Invalid limit"
// @Failure      500    {object}  types.ErrorResponse  "Journal error"
// @Router       /attempts [get]
func (h *AttemptsHandler) ListAttempts(c *gin.Context) {
	limit := defaultAttemptsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, types.ErrorResponse{
				Error:   types.ErrCodeBadRequest,
				Message: "limit must be a positive integer",
			})
			return
		}
		limit = n
	}

	attempts, err := h.provisioner.Attempts(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error:   types.ErrCodeInternal,
			Message: err.Error(),
		})
		return
	}
	if attempts == nil {
		attempts = []provisioning.Attempt{}
	}

	c.JSON(http.StatusOK, types.AttemptsResponse{
		Attempts: attempts,
		Count:    len(attempts),
	})
}
