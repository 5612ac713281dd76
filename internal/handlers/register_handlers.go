package handlers

import (
	"log/slog"
	"time"

	portssvc "github.com/SscSPs/crypto_bookkeeper/internal/core/ports/services"
	"github.com/SscSPs/crypto_bookkeeper/internal/middleware"
	"github.com/SscSPs/crypto_bookkeeper/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1")

	registerHomeRoutes(v1)
	registerTransactionRoutes(v1, service.Transaction)
	registerPortfolioRoutes(v1, service.Transaction, time.Local)
	registerBackupRoutes(v1, service.Backup)
	registerBalanceRoutes(v1, service.Balance, service.Price, outboundLimit(cfg))
	registerSettingsRoutes(v1, service.Settings)
}

// outboundLimit builds the limiter for routes that call external services. A bad RATE_LIMIT
// disables limiting rather than the routes.
func outboundLimit(cfg *config.Config) gin.HandlerFunc {
	lim, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		slog.Warn("Rate limiting disabled", slog.String("rate_limit", cfg.RateLimit), slog.String("error", err.Error()))
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(lim)
}
