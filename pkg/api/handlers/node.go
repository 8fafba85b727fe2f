package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/jarvis-node/pkg/api/types"
)

// NodeHandler handles node identity and network discovery endpoints
type NodeHandler struct {
	provisioner Provisioner
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(provisioner Provisioner) *NodeHandler {
	return &NodeHandler{provisioner: provisioner}
}

// Info handles GET /info
// @Summary      Node info
// @Description  Returns the hardware identity of this node and its provisioning state
// @Tags         node
// @Produce      json
// @Success      200  {object}  provisioning.NodeInfo
// @Router       /info [get]
func (h *NodeHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, h.provisioner.NodeInfo(c.Request.Context()))
}

// ScanNetworks handles GET /scan-networks
// @Summary      Scan WiFi networks
// @Description  Lists visible WiFi networks, strongest first, one entry per SSID
// @Tags         node
// @Produce      json
// @Success      200  {object}  types.ScanResponse
// @Router       /scan-networks [get]
func (h *NodeHandler) ScanNetworks(c *gin.Context) {
	c.JSON(http.StatusOK, types.ScanResponse{
		Networks: h.provisioner.ScanNetworks(c.Request.Context()),
	})
}
