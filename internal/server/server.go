package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-tools-service/internal/config"
	"github.com/vzahanych/weather-tools-service/internal/server/handlers"
	"github.com/vzahanych/weather-tools-service/internal/server/middlewares"
	"github.com/vzahanych/weather-tools-service/internal/tools"
	"github.com/vzahanych/weather-tools-service/pkg/telemetry"
	"go.uber.org/zap"
)

type Server struct {
	cfg         config.ServerConfig
	engine      *gin.Engine
	server      *http.Server
	kit         *tools.Toolkit
	mcp         http.Handler
	httpMetrics *middlewares.MetricsMiddleware
	toolMetrics *handlers.ToolMetrics
	logger      *zap.Logger
	tele        *telemetry.Telemetry
}

// NewServer builds the HTTP front end for kit. mcpHandler is mounted at /mcp
// when non-nil. The toolkit's metrics recorder is set to the server's tool
// counters.
func NewServer(cfg config.ServerConfig, kit *tools.Toolkit, mcpHandler http.Handler, logger *zap.Logger, tele *telemetry.Telemetry) *Server {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	httpMetrics := middlewares.NewMetricsMiddleware()

	engine.Use(middlewares.RequestIDMiddleware())
	engine.Use(middlewares.LoggingMiddleware(logger, true))
	engine.Use(middlewares.RecoveryMiddleware(logger, true))
	engine.Use(middlewares.TelemetryMiddleware(logger, tele))
	engine.Use(httpMetrics.Handler())

	toolMetrics := handlers.NewToolMetrics()
	kit.SetMetricsRecorder(toolMetrics)

	s := &Server{
		cfg:         cfg,
		engine:      engine,
		kit:         kit,
		mcp:         mcpHandler,
		httpMetrics: httpMetrics,
		toolMetrics: toolMetrics,
		logger:      logger,
		tele:        tele,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Tool endpoints
	toolsHandler := handlers.NewToolsHandler(s.kit, s.logger)
	s.engine.GET("/tools", toolsHandler.ListTools)
	s.engine.POST("/tools/:name", toolsHandler.CallTool)

	if s.mcp != nil {
		s.engine.Any("/mcp", gin.WrapH(s.mcp))
	}

	// Health endpoints (Kubernetes friendly)
	health := handlers.NewHealthHandler(s.kit, s.logger)
	s.engine.GET("/health", health.Health)
	s.engine.GET("/health/live", health.Liveness)
	s.engine.GET("/health/ready", health.Readiness)

	// Monitoring endpoints
	s.engine.GET("/metrics", handlers.NewMetricsHandler(s.httpMetrics, s.toolMetrics).ServeMetrics)
}

// Engine exposes the gin engine, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

// Start serves until Shutdown is called. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.Addr(),
		Handler:      s.engine,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeout) * time.Second,
	}

	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
