package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/urmzd/jarvis-node/pkg/api/handlers"
	"github.com/urmzd/jarvis-node/pkg/api/schema"
)

// Router holds the Gin engine and dependencies
type Router struct {
	engine      *gin.Engine
	provisioner handlers.Provisioner
	validator   *schema.Validator
	backend     string
}

// NewRouter creates a new API router. backend names the active WiFi backend
// reported by the health endpoint.
func NewRouter(provisioner handlers.Provisioner, validator *schema.Validator, backend string) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	SetupMiddleware(engine)

	router := &Router{
		engine:      engine,
		provisioner: provisioner,
		validator:   validator,
		backend:     backend,
	}

	router.setupRoutes()

	return router
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	// Swagger UI
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Health check at root
	healthHandler := handlers.NewHealthHandler(r.provisioner, r.backend)
	r.engine.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)

		nodeHandler := handlers.NewNodeHandler(r.provisioner)
		v1.GET("/info", nodeHandler.Info)
		v1.GET("/scan-networks", nodeHandler.ScanNetworks)

		provisionHandler := handlers.NewProvisionHandler(r.provisioner, r.validator)
		v1.POST("/provision", provisionHandler.Provision)
		v1.POST("/provision/k2", provisionHandler.ProvisionK2)
		v1.GET("/status", provisionHandler.Status)

		attemptsHandler := handlers.NewAttemptsHandler(r.provisioner)
		v1.GET("/attempts", attemptsHandler.ListAttempts)
	}
}

// Handler returns the engine as an http.Handler.
func (r *Router) Handler() http.Handler {
	return r.engine
}
