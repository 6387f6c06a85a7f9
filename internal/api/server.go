package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/dhima/client-service/internal/api/handlers"
	"github.com/dhima/client-service/internal/api/middleware"
	"github.com/dhima/client-service/internal/clients"
	"github.com/dhima/client-service/internal/health"
	"github.com/dhima/client-service/internal/logging"
	"github.com/dhima/client-service/internal/scheduler"
	"github.com/dhima/client-service/internal/storage"
	"github.com/dhima/client-service/pkg/config"
	platformEvents "github.com/dhima/client-service/platform/events"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-multierror"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// EventPublisher publishes client events and owns a connection to close.
type EventPublisher interface {
	clients.EventPublisher
	Close() error
}

// Server orchestrates HTTP routing and dependencies for the API service.
type Server struct {
	config    config.App
	logger    logging.Logger
	router    *gin.Engine
	registry  *storage.Registry
	publisher EventPublisher
	checker   *health.Checker
	scheduler *scheduler.Engine
}

// NewServer connects to MySQL and Kafka and wires the API dependencies.
func NewServer(ctx context.Context, cfg config.App, logger logging.Logger) (*Server, error) {
	registry := storage.NewRegistry(logger)
	pool, err := ConnectDatabase(ctx, cfg, registry, logger)
	if err != nil {
		return nil, err
	}

	server, err := newServer(cfg, logger, registry, pool, newPublisher(cfg, logger))
	if err != nil {
		_ = registry.Close()
		return nil, err
	}
	return server, nil
}

func newServer(cfg config.App, logger logging.Logger, registry *storage.Registry, store clients.Store, publisher EventPublisher) (*Server, error) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
	}

	checker := health.NewChecker(health.RegistrySource(registry), health.WithLogger(logger))
	engine := scheduler.NewEngine(logger.Zap())
	if err := engine.Schedule(cfg.HealthCheckSchedule, checker); err != nil {
		return nil, err
	}

	service := clients.NewService(store,
		clients.WithPublisher(publisher),
		clients.WithLogger(logger),
		clients.WithPageSize(cfg.ItemsPerPage),
	)

	s := &Server{
		config:    cfg,
		logger:    logger,
		registry:  registry,
		publisher: publisher,
		checker:   checker,
		scheduler: engine,
	}
	s.setupRouter(service)
	return s, nil
}

func newPublisher(cfg config.App, logger logging.Logger) EventPublisher {
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		logger.Info("KAFKA_BROKERS not set, client events are not published")
		return platformEvents.NoopPublisher{}
	}
	return platformEvents.NewPublisher(brokers, cfg.KafkaTopic, logger.Zap())
}

// setupRouter configures the Gin router with middleware and routes.
func (s *Server) setupRouter(service handlers.ClientService) {
	router := gin.New()
	zapLogger := s.logger.Zap()

	// Recovery first so it catches panics from the other middleware.
	router.Use(ginzap.RecoveryWithZap(zapLogger, true))
	router.Use(middleware.RequestID())
	router.Use(ginzap.GinzapWithConfig(zapLogger, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		Context: func(c *gin.Context) []zap.Field {
			return []zap.Field{zap.String("request_id", c.GetString(middleware.RequestIDKey))}
		},
	}))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: !slices.Contains(s.config.CORSOrigins, "*"),
		MaxAge:           12 * time.Hour,
	}))

	pools := health.RegistrySource(s.registry)
	router.GET("/", handlers.Welcome)
	router.GET("/health", handlers.NewHealthHandler(s.logger, s.checker).Health)
	router.GET("/metrics", handlers.NewMetricsHandler(s.logger, pools, s.checker).Metrics)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	clientHandler := handlers.NewClientHandler(s.logger, service)
	api := router.Group("/api")
	{
		clientRoutes := api.Group("/clients")
		clientRoutes.GET("", clientHandler.ListClients)
		clientRoutes.GET("/:id", clientHandler.GetClient)
		clientRoutes.POST("", clientHandler.CreateClient)
		clientRoutes.POST("/bulk", clientHandler.CreateClients)
		clientRoutes.PUT("/:id", clientHandler.UpdateClient)
		clientRoutes.DELETE("", clientHandler.DeleteClients)
	}

	s.router = router
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve runs the HTTP server and the scheduler until SIGINT or SIGTERM,
// then shuts both down and releases the pools and the publisher.
func (s *Server) Serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run is Serve with an explicit lifetime.
func (s *Server) Run(ctx context.Context) error {
	addr := ":" + s.config.APIPort
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		_ = s.scheduler.Run(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server",
			zap.String("address", addr),
			zap.String("environment", s.config.Environment),
			zap.String("log_level", s.config.LogLevel),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var result *multierror.Error
	select {
	case <-ctx.Done():
		s.logger.Info("shutting down server gracefully...")
	case err := <-serveErr:
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("listen on %s: %w", addr, err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("server forced to shutdown", zap.Error(err))
		result = multierror.Append(result, err)
	}
	<-schedulerDone

	result = multierror.Append(result, s.Close())
	_ = s.logger.Sync()

	s.logger.Info("server stopped")
	return result.ErrorOrNil()
}

// Close releases the publisher and every registered pool.
func (s *Server) Close() error {
	var result *multierror.Error
	if err := s.publisher.Close(); err != nil {
		s.logger.Error("failed to close event publisher", zap.Error(err))
		result = multierror.Append(result, err)
	}
	if err := s.registry.Close(); err != nil {
		s.logger.Error("failed to close database pools", zap.Error(err))
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
