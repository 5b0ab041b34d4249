// Package http provides the HTTP adapter for the application layer.
// Handlers translate requests into service calls and error kinds into
// status codes; no business rule lives here.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/davinrkh/finbook/internal/application/service"
	"github.com/davinrkh/finbook/internal/auth"
	"github.com/davinrkh/finbook/internal/report"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
	MaxUploadSize  int64
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		AllowedOrigins: []string{"*"},
		MaxUploadSize:  10 << 20,
	}
}

// Services bundles everything the handlers depend on
type Services struct {
	Auth          service.AuthService
	Users         service.UserService
	Transactions  service.TransactionService
	Reimburse     service.ReimbursementService
	Notifications service.NotificationService
	Settings      service.SettingsService
	Activity      service.ActivityService
	Reports       *report.Service
	Uploads       UploadStore
	Tokens        *auth.JWTManager
	UserLookup    UserLookup
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		services: services,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *Server) setupRoutes() {
	handlers := NewHandlers(s.services, s.logger, s.config.MaxUploadSize)

	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api")
	api.POST("/auth/login", handlers.Login)

	authed := api.Group("")
	authed.Use(AuthMiddleware(s.services.Tokens, s.services.UserLookup))
	authed.Use(ActivityLogMiddleware(s.services.Activity))
	{
		authed.POST("/uploads", handlers.Upload)
		authed.GET("/uploads/:ref", handlers.Download)

		authed.GET("/transactions", handlers.ListTransactions)
		authed.GET("/transactions/:id", handlers.GetTransaction)
		authed.POST("/transactions", handlers.CreateTransaction)

		authed.GET("/reimbursements", handlers.ListReimbursements)
		authed.GET("/reimbursements/:id", handlers.GetReimbursement)
		authed.POST("/reimbursements", handlers.SubmitReimbursement)
		authed.PUT("/reimbursements/:id", handlers.UpdateReimbursement)
		authed.POST("/reimbursements/:id/process", handlers.StartProcessing)
		authed.POST("/reimbursements/:id/approve", handlers.ApproveReimbursement)
		authed.POST("/reimbursements/:id/reject", handlers.RejectReimbursement)

		authed.GET("/reports", handlers.GetReport)
		authed.GET("/reports/export.csv", handlers.ExportReportCSV)
		authed.GET("/reports/export.xlsx", handlers.ExportReportXLSX)

		authed.GET("/notifications", handlers.ListNotifications)
		authed.POST("/notifications", handlers.ComposeNotification)

		authed.GET("/settings/categories", handlers.ListCategories)
		authed.PUT("/settings/categories", handlers.UpdateCategories)

		authed.GET("/users", handlers.ListUsers)
		authed.GET("/users/:id", handlers.GetUser)
		authed.POST("/users", handlers.CreateUser)
		authed.PUT("/users/:id", handlers.UpdateUser)

		authed.GET("/activity-logs", handlers.ListActivityLogs)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
