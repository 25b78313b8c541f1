package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/udiptgupta/Risk-lab/pkg/metrics"
	"github.com/udiptgupta/Risk-lab/pkg/utils/logger"
)

// Config holds the configuration for the API server
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Environment  string
}

// Server represents the API server
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	handlers   *Handlers
	recorder   *metrics.Recorder
	log        *logger.Logger
}

// NewServer creates a new API server
func NewServer(config Config, handlers *Handlers, recorder *metrics.Recorder) *Server {
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = 10 * time.Second
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 10 * time.Second
	}

	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &Server{
		config:   config,
		router:   gin.New(),
		handlers: handlers,
		recorder: recorder,
		log:      logger.GetLogger("api.server"),
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	s.router.Use(LoggingMiddleware())
	s.router.Use(MetricsMiddleware(s.recorder))
	s.router.Use(RecoveryMiddleware())
	s.router.Use(CORSMiddleware())

	s.router.GET("/health", s.handlers.HealthCheckHandler)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/ws", s.handlers.WebSocketHandler)

	v1 := s.router.Group("/api/v1")

	bonds := v1.Group("/bonds")
	bonds.GET("", s.handlers.ListBondsHandler)
	bonds.GET("/:id", s.handlers.GetBondHandler)
	bonds.GET("/:id/valuation", s.handlers.GetValuationHandler)
	bonds.POST("/:id/scenario", s.handlers.ScenarioHandler)

	v1.GET("/curves/latest", s.handlers.GetCurveHandler)
	v1.GET("/metrics/risk", s.handlers.ListMetricsHandler)
	v1.POST("/batch/recompute", s.handlers.RecomputeHandler)
}

// Start starts the API server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.log.Infof("Starting API server on %s", addr)

	return s.httpServer.ListenAndServe()
}

// Stop stops the API server gracefully
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Router exposes the underlying router, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
