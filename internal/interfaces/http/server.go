// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sudeepthiperuri3/shop-sphere/internal/config"
	"github.com/sudeepthiperuri3/shop-sphere/internal/domain/checkout"
	"github.com/sudeepthiperuri3/shop-sphere/internal/infrastructure/catalog"
	"github.com/sudeepthiperuri3/shop-sphere/internal/infrastructure/storage"
	"github.com/sudeepthiperuri3/shop-sphere/internal/interfaces/http/handlers"
	"github.com/sudeepthiperuri3/shop-sphere/internal/interfaces/http/middleware"
	"github.com/sudeepthiperuri3/shop-sphere/internal/interfaces/http/routes"
	"github.com/sudeepthiperuri3/shop-sphere/internal/pkg/pdf"
)

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	logger      *logrus.Logger
	storage     storage.Storage
	redisClient *redis.Client
	catalog     *catalog.Client
	metrics     *middleware.Metrics
	gin         *gin.Engine
	httpServer  *http.Server
	startedAt   time.Time
}

// NewServer creates a new HTTP server instance. redisClient may be nil, in
// which case login attempts are not rate limited.
func NewServer(cfg *config.Config, logger *logrus.Logger, st storage.Storage, redisClient *redis.Client) *Server {
	return &Server{
		config:      cfg,
		logger:      logger,
		storage:     st,
		redisClient: redisClient,
		catalog:     catalog.NewClient(cfg.Catalog, logger),
		metrics:     middleware.NewMetrics("shopsphere"),
		startedAt:   time.Now(),
	}
}

// Engine returns the configured gin engine, building it on first use
func (s *Server) Engine() *gin.Engine {
	if s.gin != nil {
		return s.gin
	}

	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.gin = gin.New()
	if len(s.config.Security.TrustedProxies) > 0 {
		if err := s.gin.SetTrustedProxies(s.config.Security.TrustedProxies); err != nil {
			s.logger.WithError(err).Warn("Ignoring invalid trusted proxies")
		}
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s.gin
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.Engine(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.logger.WithFields(logrus.Fields{
		"port":    s.config.Server.Port,
		"catalog": s.config.Catalog.BaseURL,
		"storage": s.config.Storage.Driver,
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if s.httpServer == nil {
		return nil
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures the middleware shared by every route
func (s *Server) setupMiddleware() {
	s.gin.Use(gin.Recovery())
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(s.metrics.Middleware())
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders())
}

// setupRoutes configures all routes for the server
func (s *Server) setupRoutes() {
	// Operational endpoints carry no session
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)
	s.gin.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	h := &routes.Handlers{
		Auth:    handlers.NewAuthHandler(s.config, s.logger),
		Product: handlers.NewProductHandler(s.catalog, s.logger),
		Cart:    handlers.NewCartHandler(s.catalog, s.logger),
		Checkout: handlers.NewCheckoutHandler(
			checkout.NewService(s.config, s.logger),
			pdf.NewService(s.config),
			s.logger,
		),
	}

	session := middleware.Session(s.config, s.storage, s.catalog, s.logger)
	routes.SetupRoutes(s.gin, h, session, s.redisClient, s.config, s.logger)
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := s.storage.Ping(ctx); err != nil {
		s.logger.WithError(err).Warn("Health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "storage ping failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
		"storage":     s.config.Storage.Driver,
	})
}

// readinessCheck handles readiness check requests
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
