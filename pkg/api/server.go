package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MaxConcurrent int
	CORSOrigin    string // "*" allows any origin; empty disables CORS
}

// DefaultConfig returns sensible defaults. Route responses carry rendered
// SVG, so writes get more room than reads.
func DefaultConfig(addr string) ServerConfig {
	return ServerConfig{
		Addr:          addr,
		ReadTimeout:   5 * time.Second,
		WriteTimeout:  15 * time.Second,
		MaxConcurrent: runtime.NumCPU() * 2,
		CORSOrigin:    "",
	}
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(cfg ServerConfig, handlers *Handlers) *gin.Engine {
	r := gin.New()

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	sem := make(chan struct{}, cfg.MaxConcurrent)

	r.Use(requestIDMiddleware(), requestLogger(), recovery(), securityHeaders())
	if cfg.CORSOrigin != "" {
		config := cors.DefaultConfig()
		if cfg.CORSOrigin == "*" {
			config.AllowAllOrigins = true
		} else {
			config.AllowOrigins = []string{cfg.CORSOrigin}
		}
		config.AddAllowHeaders(requestIDHeader)
		config.AddExposeHeaders(requestIDHeader)
		r.Use(cors.New(config))
	}
	r.Use(limitConcurrency(sem))

	v1 := r.Group("/api/v1")
	v1.POST("/routes", handlers.HandleRoutes)
	v1.GET("/nearest", handlers.HandleNearest)
	v1.GET("/health", handlers.HandleHealth)
	v1.GET("/stats", handlers.HandleStats)

	return r
}

// NewServer creates an HTTP server serving NewRouter.
func NewServer(cfg ServerConfig, handlers *Handlers) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      NewRouter(cfg, handlers),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// ListenAndServe starts the server and blocks until shutdown signal.
func ListenAndServe(srv *http.Server) error {
	// Graceful shutdown on SIGTERM/SIGINT.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Printf("Received %s, shutting down...", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// requestIDMiddleware reuses a well-formed incoming X-Request-ID or mints a
// new one, and echoes it on the response.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("%s %s %d %s %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
			time.Since(start).Round(time.Microsecond), requestID(c))
	}
}

func recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic: %v", rec)
				writeError(c, http.StatusInternalServerError, "internal_error", "")
			}
		}()
		c.Next()
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

// limitConcurrency rejects requests beyond the semaphore's capacity with
// 503 rather than queueing them.
func limitConcurrency(sem chan struct{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
		default:
			c.Header("Retry-After", "1")
			writeError(c, http.StatusServiceUnavailable, "service_unavailable", "")
			return
		}
		c.Next()
	}
}
