// Package backoffice wires the HTTP surface of the service: server
// lifecycle, routing, middleware, handlers and the services behind them.
package backoffice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parkops/backoffice/internal/backoffice/handler"
	"github.com/parkops/backoffice/internal/backoffice/service"
	"github.com/parkops/backoffice/internal/config"
	"github.com/parkops/backoffice/internal/operator"
)

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	reportService service.ReportService,
	sessionService service.SessionService,
	exportService service.ExportService,
	operators operator.Provider,
) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	reportHandler := handler.NewReportHandler(log, reportService, operators)
	sessionHandler := handler.NewSessionHandler(log, sessionService)
	exportHandler := handler.NewExportHandler(log, exportService, operators)
	operatorHandler := handler.NewOperatorHandler(log, operators)

	setupRouter(log, httpRouter, reportHandler, sessionHandler, exportHandler, operatorHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
