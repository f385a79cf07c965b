package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-vault/internal/shared/config"
	"resume-vault/internal/shared/server/middleware"
)

// NewEngine constructs the Gin engine with the standard middleware chain.
// Route registration is done by the bootstrap wiring.
func NewEngine(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: "READ",
			GroupFor:     rateLimitGroup,
			Rules: map[string]middleware.RateLimitRule{
				"READ":  {Rate: 50, Burst: 100},
				"WRITE": {Rate: 10, Burst: 20},
			},
		}),
	)
	return r
}

// Writes contend on the version store, so they get a tighter budget than
// reads.
func rateLimitGroup(c *gin.Context) string {
	switch c.Request.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return "WRITE"
	default:
		return "READ"
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
