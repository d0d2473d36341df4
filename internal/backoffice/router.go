package backoffice

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/parkops/backoffice/internal/backoffice/handler"
	"github.com/parkops/backoffice/internal/backoffice/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	reportHandler *handler.ReportHandler,
	sessionHandler *handler.SessionHandler,
	exportHandler *handler.ExportHandler,
	operatorHandler *handler.OperatorHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Report views
		reports := v1.Group("/reports")
		{
			reports.GET("/overview", reportHandler.Overview)
			reports.GET("/dashboard", reportHandler.Dashboard)
			reports.GET("/export", exportHandler.Export)
		}

		// Cash-session lifecycle
		sessions := v1.Group("/cash-sessions")
		{
			sessions.POST("", sessionHandler.Open)
			sessions.GET("", sessionHandler.List)
			sessions.GET("/:id", sessionHandler.GetByID)
			sessions.PUT("/:id/counted", sessionHandler.RecordCounted)
			sessions.POST("/:id/close", sessionHandler.Close)
		}

		// Operator session
		operators := v1.Group("/operator")
		{
			operators.GET("/session", operatorHandler.Get)
			operators.POST("/session", operatorHandler.SignIn)
			operators.DELETE("/session", operatorHandler.SignOut)
			operators.PUT("/scope", operatorHandler.SelectScope)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
