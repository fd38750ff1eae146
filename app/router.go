// Package app wires the HTTP router together with everything the handlers need
package app

import (
	"bitwise74/file-drop/app/file"
	"bitwise74/file-drop/app/root"
	"bitwise74/file-drop/internal"
	"bitwise74/file-drop/pkg/middleware"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Room left for multipart boundaries and part headers on top of the file itself
const multipartOverhead = 1 << 20

type RouterConfig struct {
	CORSOrigins   []string
	RateLimit     int
	MaxUploadSize int64
	Turnstile     middleware.TurnstileConfig
}

// RouterConfigFromViper reads the router settings, config.Setup must run first
func RouterConfigFromViper() RouterConfig {
	var origins []string
	for _, o := range v.GetStringSlice("host.cors") {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, part)
			}
		}
	}

	return RouterConfig{
		CORSOrigins:   origins,
		RateLimit:     v.GetInt("security.rate_limit"),
		MaxUploadSize: v.GetInt64("upload.max_size"),
		Turnstile: middleware.TurnstileConfig{
			Enabled: v.GetBool("cloudflare.turnstile.enabled"),
			Secret:  v.GetString("cloudflare.turnstile.secret_token"),
		},
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "TurnstileToken"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}

	return cfg
}

// NewRouter builds the gin engine serving the file drop API. The rate
// limiter it creates is stored in d so it can be released with d.Close
func NewRouter(d *internal.Deps, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(
		cors.New(corsConfig(cfg.CORSOrigins)),
		ginzap.RecoveryWithZap(zap.L(), false),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        true,
			SkipPaths:  []string{"/api/heartbeat"},
			Context: func(c *gin.Context) []zapcore.Field {
				return []zapcore.Field{zap.String("requestID", c.GetString("requestID"))}
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	d.RateLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit,
		Burst:             cfg.RateLimit * 2,
	})

	turnstile := middleware.NewTurnstileMiddleware(cfg.Turnstile)
	bodyLimit := middleware.BodySizeLimiter(cfg.MaxUploadSize + multipartOverhead)

	m := router.Group("/api", d.RateLimiter.Handler())
	{
		// HEAD /api/heartbeat 			-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)
	}

	f := m.Group("/file")
	{
		// POST /api/file/upload		-> Stores a file and returns its access code
		f.POST("/upload", bodyLimit, turnstile, func(c *gin.Context) { file.FileUpload(c, d) })

		// GET /api/file/download/:fileCode	-> Streams a file back until it expires
		f.GET("/download/:fileCode", func(c *gin.Context) { file.FileDownload(c, d) })
	}

	return router
}
