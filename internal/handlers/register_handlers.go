package handlers

import (
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/leasepay/leasepay_backend/cmd/docs"
	"github.com/leasepay/leasepay_backend/internal/core/services"
	"github.com/leasepay/leasepay_backend/internal/middleware"
	"github.com/leasepay/leasepay_backend/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	svcs *services.Container,
) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Public webhook endpoint: signature-verified, rate limited, no JWT
	rateLimiter, err := middleware.NewRateLimiter(cfg.WebhookRateLimit)
	if err != nil {
		log.Fatalf("Invalid WEBHOOK_RATE_LIMIT %q: %v", cfg.WebhookRateLimit, err)
	}
	registerWebhookRoutes(r, svcs.Payment, rateLimiter)

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, svcs)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	svcs *services.Container,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerPaymentRoutes(v1, svcs.Payment)
	registerLedgerRoutes(v1, svcs.Ledger)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
