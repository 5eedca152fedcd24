package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"signalscope-go/internal/logger"
	"signalscope-go/internal/model"
	"signalscope-go/internal/session"
)

type ServerConfig struct {
	Port           string
	Symbol         string
	Timeframes     []model.Timeframe
	ProductionMode bool
}

// Server is a read-only view over the live sessions
type Server struct {
	config     ServerConfig
	registry   *session.Registry
	stats      *statsCache
	router     *gin.Engine
	httpServer *http.Server
	startedAt  time.Time
}

// NewServer creates a new API server. A nil stats fetcher disables /api/stats.
func NewServer(config ServerConfig, registry *session.Registry, stats StatsFetcher) *Server {
	if config.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}
	config.Symbol = strings.ToUpper(config.Symbol)

	router := gin.New()
	router.Use(requestLogger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	s := &Server{
		config:    config,
		registry:  registry,
		router:    router,
		startedAt: time.Now(),
	}
	if stats != nil {
		s.stats = newStatsCache(stats, statsTTL)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/timeframes", s.handleTimeframes)
		api.GET("/stats", s.handleStats)
		api.GET("/prediction/:timeframe", s.handlePrediction)
		api.GET("/candles/:timeframe", s.handleCandles)
		api.GET("/chart/:timeframe", s.handleChart)
	}

	s.router.NoRoute(func(c *gin.Context) {
		errorResponse(c, http.StatusNotFound, "endpoint not found: "+c.Request.URL.Path)
	})
}

// Handler exposes the router for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until Shutdown is called
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("🌍 Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down HTTP server...")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("[HTTP] "+c.Request.Method+" "+c.Request.URL.Path,
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// errorResponse is a helper to send error responses
func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":   true,
		"message": message,
	})
}

// successResponse is a helper to send success responses
func successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
