// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-groupbot-backend/docs"
	"github.com/tbourn/go-groupbot-backend/internal/config"
	"github.com/tbourn/go-groupbot-backend/internal/http/handlers"
	"github.com/tbourn/go-groupbot-backend/internal/http/middleware"
	"github.com/tbourn/go-groupbot-backend/internal/repo"
	"github.com/tbourn/go-groupbot-backend/internal/services"
)

// Headers the bot client sends alongside an Idempotency-Key so replays can be
// detected before the JSON body is bound.
const (
	headerActorPhone = "X-Actor-Phone"
	headerGroupID    = "X-Group-ID"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the bot, premium, and admin APIs under the configured base path.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter + gzip
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per actor/IP, bypass on replay)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			middleware.HeaderAPIKey,
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB) and response compression
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(c *gin.Context) (string, string) {
			return c.GetHeader(headerActorPhone), c.GetHeader(headerGroupID)
		},
		func(ctx context.Context, actorPhone, groupID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, actorPhone, groupID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 8) Token-bucket rate limiter per actor/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByActorOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderAPIKey, middleware.HeaderIdempotencyKey, headerActorPhone, headerGroupID},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderAPIKey, middleware.HeaderIdempotencyKey, headerActorPhone, headerGroupID},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (off by default)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db
	modSvc := services.NewModerationService(db)
	premSvc := services.NewPremiumService(db)
	dispatcher := services.NewDispatcher(db, modSvc, premSvc)
	dispatcher.TagBatchSize = cfg.TagBatchSize
	dispatcher.TagBatchPause = cfg.TagBatchPause

	h := handlers.New(db, dispatcher, modSvc, premSvc, handlers.Options{
		JWTSecret:      cfg.Auth.JWTSecret,
		JWTTTL:         cfg.Auth.JWTTTL,
		IdempotencyTTL: cfg.IdempotencyTTL,
	})

	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)

	// Bot client routes: static API key
	bot := api.Group("", middleware.APIKeyAuth(cfg.Auth.APIKey))
	{
		bot.POST("/commands/execute", h.ExecuteCommand)
		bot.POST("/commands/process-message", h.ProcessMessage)
		bot.POST("/admin/auth/token", h.MintAdminToken)
	}

	// Premium and admin surfaces: bearer tokens with role gates
	authed := api.Group("", middleware.JWTAuth(cfg.Auth.JWTSecret))
	{
		premium := authed.Group("/premium", middleware.RequireAdmin())
		{
			premium.POST("/activate", h.ActivateLicense)
			premium.POST("/status", h.PremiumStatus)
			premium.GET("/licenses", h.ListLicenses)

			ownerOnly := premium.Group("", middleware.RequireOwner())
			{
				ownerOnly.POST("/generate", h.GenerateLicense)
				ownerOnly.POST("/revoke", h.RevokePremium)
			}
		}

		admin := authed.Group("/admin", middleware.RequireAdmin())
		{
			admin.GET("/analytics", h.Analytics)
			admin.GET("/users", h.ListUsers)
			admin.GET("/users/:phone", h.GetUser)
			admin.PATCH("/users/:phone", h.UpdateUser)
			admin.GET("/groups", h.ListGroups)
			admin.GET("/groups/:id", h.GetGroup)
			admin.PATCH("/groups/:id", h.UpdateGroup)
			admin.GET("/logs/commands", h.ListCommandLogs)
		}
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
