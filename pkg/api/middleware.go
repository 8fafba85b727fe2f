package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// pollPaths are hit every second or so by the companion app while a flow
// runs; successful requests to them are logged at debug level.
var pollPaths = map[string]bool{
	"/health":        true,
	"/api/v1/health": true,
	"/api/v1/status": true,
}

// SetupMiddleware configures the middleware stack for the Gin router
func SetupMiddleware(r *gin.Engine) {
	r.Use(gin.Recovery())
	r.Use(RequestLogger())

	// The companion app talks to the node from a webview on the AP network.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
}

// RequestLogger returns a Gin middleware for logging requests
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		statusCode := c.Writer.Status()
		logEvent := requestEvent(path, statusCode)

		if raw != "" {
			path = path + "?" + raw
		}

		logEvent.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

func requestEvent(path string, statusCode int) *zerolog.Event {
	switch {
	case statusCode >= 500:
		return log.Error()
	case statusCode >= 400:
		return log.Warn()
	case pollPaths[path]:
		return log.Debug()
	default:
		return log.Info()
	}
}
