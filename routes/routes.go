package routes

import (
	"fmt"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"kyc-hub/controllers"
	"kyc-hub/metrics"
	middlewares "kyc-hub/middleware"
)

type Options struct {
	CORSAllowOrigins []string
	AuthRateLimit    int
	AuthRateWindow   time.Duration
	TrustedProxies   []string
	Metrics          *metrics.Metrics
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		// credentials cannot be combined with a wildcard origin
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

// SetupRoutes registers every route on r. Client IPs are taken from
// X-Forwarded-For only when the peer is one of opts.TrustedProxies.
func SetupRoutes(r *gin.Engine, h *controllers.Handler, auth middlewares.Authenticator, opts Options) error {
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(cors.New(corsConfig(opts.CORSAllowOrigins)))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.GinMiddleware())
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	r.GET("/health", h.Health)
	r.GET("/health/db", h.HealthDB)

	api := r.Group("/api")
	api.GET("/ocr-info", h.OCRInfo)

	SetupAuthRoutes(api, h, auth, opts)
	SetupRecordRoutes(api, h, auth)
	SetupAdminRoutes(api, h, auth)
	return nil
}
