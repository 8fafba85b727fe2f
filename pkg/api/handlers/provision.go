package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/jarvis-node/pkg/api/schema"
	"github.com/urmzd/jarvis-node/pkg/api/types"
	"github.com/urmzd/jarvis-node/pkg/provisioning"
)

// ProvisionHandler handles the provisioning flow endpoints
type ProvisionHandler struct {
	provisioner Provisioner
	validator   *schema.Validator
}

// NewProvisionHandler creates a new provision handler
func NewProvisionHandler(provisioner Provisioner, validator *schema.Validator) *ProvisionHandler {
	return &ProvisionHandler{provisioner: provisioner, validator: validator}
}

// Provision handles POST /provision
// @Summary      Start provisioning
// @Description  Validates the request and starts the provisioning flow in the background. Poll /status for progress.
// @Tags         provisioning
// @Accept       json
// @Produce      json
// @Param        request  body      provisioning.ProvisionRequest  true  "WiFi credentials and registration token"
// @Success      200      {object}  provisioning.ProvisionResult   "Accepted"
// @Failure      400      {object}  types.ErrorResponse            "Unreadable body"
// @Failure      409      {object}  provisioning.ProvisionResult   "Provisioning already in progress or node already provisioned"
// @Failure      422      {object}  types.ErrorResponse            "Validation failed"
// @Router       /provision [post]
func (h *ProvisionHandler) Provision(c *gin.Context) {
	var req provisioning.ProvisionRequest
	if !h.bind(c, schema.ProvisionRequest, &req) {
		return
	}

	res, err := h.provisioner.Provision(req)
	switch {
	case errors.Is(err, provisioning.ErrInProgress), errors.Is(err, provisioning.ErrAlreadyProvisioned):
		c.JSON(http.StatusConflict, res)
	case errors.Is(err, provisioning.ErrInvalidRequest):
		c.JSON(http.StatusUnprocessableEntity, types.ErrorResponse{
			Error:   types.ErrCodeValidation,
			Message: err.Error(),
		})
	case err != nil:
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error:   types.ErrCodeInternal,
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusOK, res)
	}
}

// Status handles GET /status
// @Summary      Provisioning status
// @Description  Returns the current provisioning state, message, progress and error detail
// @Tags         provisioning
// @Produce      json
// @Success      200  {object}  provisioning.Status
// @Router       /status [get]
func (h *ProvisionHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.provisioner.Status())
}

// ProvisionK2 handles POST /provision/k2
// @Summary      Deliver K2 key
// @Description  Stores the 32-byte K2 key for this node while it is in a pairing session
// @Tags         provisioning
// @Accept       json
// @Produce      json
// @Param        request  body      provisioning.K2Request  true  "K2 key and metadata"
// @Success      200      {object}  provisioning.K2Result
// @Failure      400      {object}  types.ErrorResponse  "Unreadable body"
// @Failure      422      {object}  types.ErrorResponse  "Validation failed"
// @Router       /provision/k2 [post]
func (h *ProvisionHandler) ProvisionK2(c *gin.Context) {
	var req provisioning.K2Request
	if !h.bind(c, schema.K2Request, &req) {
		return
	}

	c.JSON(http.StatusOK, h.provisioner.ProvisionK2(req))
}

// bind reads the body, validates it against the named schema and decodes it
// into out. It writes the error response and returns false on failure.
func (h *ProvisionHandler) bind(c *gin.Context, schemaName string, out any) bool {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   types.ErrCodeBadRequest,
			Message: "Failed to read request body",
		})
		return false
	}

	if err := h.validator.ValidateBody(schemaName, body); err != nil {
		c.JSON(http.StatusUnprocessableEntity, types.ErrorResponse{
			Error:   types.ErrCodeValidation,
			Message: err.Error(),
		})
		return false
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   types.ErrCodeBadRequest,
			Message: "Invalid request body",
		})
		return false
	}
	return true
}
