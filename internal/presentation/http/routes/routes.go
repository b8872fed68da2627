package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer/internal/config"
	domainRepo "github.com/sangkips/invoicer/internal/domain/repository"
	"github.com/sangkips/invoicer/internal/presentation/http/handler"
	"github.com/sangkips/invoicer/internal/presentation/http/middleware"
	"github.com/sangkips/invoicer/pkg/metrics"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth    *handler.AuthHandler
	Client  *handler.ClientHandler
	Logo    *handler.LogoHandler
	Invoice *handler.InvoiceHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Tokens          middleware.TokenValidator
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.UserRateLimiter
	Metrics         *metrics.Metrics
	Logger          *zap.Logger
}

// NewRateLimiter builds the per-user limiter from the rate limit settings.
// Requests are allowed per Duration seconds.
func NewRateLimiter(cfg *config.RateLimitConfig) *middleware.UserRateLimiter {
	rlCfg := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 && cfg.Duration > 0 {
		rlCfg.RequestsPerSecond = float64(cfg.Requests) / float64(cfg.Duration)
		rlCfg.BurstSize = cfg.Requests
	}
	return middleware.NewUserRateLimiter(rlCfg)
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	handler.RegisterJSONFieldNames()
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.MetricsMiddleware(deps.Metrics))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		v1.POST("/auth/login", h.Auth.Login)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.Tokens))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Auth/Profile routes
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/profile", h.Auth.GetProfile)

	// Saved clients
	clients := protected.Group("/clients")
	{
		clients.GET("", h.Client.List)
		clients.POST("", h.Client.Create)
		clients.GET("/:name", h.Client.Get)
	}

	// Company logo
	protected.POST("/logo", h.Logo.Upload)

	registerInvoiceRoutes(protected, h, deps)
}

func registerInvoiceRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	invoices := protected.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		invoices.POST("/preview", h.Invoice.Preview)
		invoices.GET("/export", h.Invoice.Export)
		invoices.GET("/:number/pdf", h.Invoice.Download)

		// Generation with idempotency support
		generate := invoices.Group("")
		if deps.IdempotencyRepo != nil {
			generate.Use(middleware.Idempotency(middleware.IdempotencyConfig{
				Repo:   deps.IdempotencyRepo,
				Logger: deps.Logger,
			}))
		}
		generate.POST("", h.Invoice.Generate)
	}
}
