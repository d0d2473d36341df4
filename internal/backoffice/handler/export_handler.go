package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/parkops/backoffice/internal/backoffice/service"
	"github.com/parkops/backoffice/internal/filter"
	"github.com/parkops/backoffice/internal/operator"
)

// ExportHandler handles CSV export requests
type ExportHandler struct {
	exportService service.ExportService
	operators     operator.Provider
	logger        *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(logger *slog.Logger, exportService service.ExportService, operators operator.Provider) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		operators:     operators,
		logger:        logger,
	}
}

// Export streams the filtered record set as a CSV attachment
func (h *ExportHandler) Export(c *gin.Context) {
	var query ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	period := filter.Period(query.Period)
	if !period.Valid() {
		RespondBadRequest(c, "Unknown period: "+query.Period)
		return
	}

	start, end, err := parseBounds(query.Start, query.End)
	if err != nil {
		RespondBadRequest(c, "Dates must use YYYY-MM-DD")
		return
	}

	scope := h.operators.SelectedScope()
	if query.Search != "" {
		scope.Search = query.Search
	}
	if query.Status != "" {
		scope.Status = query.Status
	}
	if query.City != "" {
		scope.City = query.City
	}
	if query.Method != "" {
		scope.Method = query.Method
	}

	filename := fmt.Sprintf("transactions_%s_%s.csv", period, time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	rows, err := h.exportService.ExportCSV(c.Request.Context(), c.Writer, period, start, end, scope)
	if err != nil {
		if rows == 0 && !c.Writer.Written() {
			c.Header("Content-Type", "application/json")
			c.Header("Content-Disposition", "")
			if errors.Is(err, filter.ErrInvalidRange) {
				RespondBadRequest(c, err.Error())
			} else {
				h.logger.Error("CSV export failed before writing", "error", err)
				RespondInternalError(c)
			}
			return
		}
		// Rows are already on the wire; all we can do is log and abort
		h.logger.Error("CSV export failed mid-stream", "rows_written", rows, "error", err)
		c.Abort()
		return
	}
}
