package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/parkops/backoffice/internal/backoffice/service"
	"github.com/parkops/backoffice/internal/filter"
	"github.com/parkops/backoffice/internal/operator"
)

// queryDateLayout is the date format accepted by report query parameters
const queryDateLayout = "2006-01-02"

// ReportHandler handles HTTP requests for report views
type ReportHandler struct {
	reportService service.ReportService
	operators     operator.Provider
	logger        *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(logger *slog.Logger, reportService service.ReportService, operators operator.Provider) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		operators:     operators,
		logger:        logger,
	}
}

// Overview returns the filtered aggregate for one period
func (h *ReportHandler) Overview(c *gin.Context) {
	var query ReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.Error("Invalid report query", "error", err)
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

	overview, err := h.reportService.Overview(c.Request.Context(), period, start, end, h.scope(query))
	if err != nil {
		switch {
		case errors.Is(err, filter.ErrInvalidRange):
			RespondBadRequest(c, err.Error())
		case errors.Is(err, service.ErrStaleRequest):
			RespondConflict(c, "Superseded by a newer report request")
		default:
			h.logger.Error("Failed to build overview", "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapOverviewToResponse(overview))
}

// Dashboard returns the concurrently computed period snapshots
func (h *ReportHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.reportService.Dashboard(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build dashboard", "error", err)
		RespondInternalError(c)
		return
	}

	resp := DashboardResponse{
		Snapshots:   make([]SnapshotResponse, 0, len(dashboard.Snapshots)),
		SourceError: dashboard.SourceError,
	}
	for _, snapshot := range dashboard.Snapshots {
		resp.Snapshots = append(resp.Snapshots, SnapshotResponse{
			Period:  string(snapshot.Period),
			Start:   snapshot.Range.Start.Format(time.RFC3339),
			End:     snapshot.Range.End.Format(time.RFC3339),
			Summary: snapshot.Summary,
		})
	}

	RespondOK(c, resp)
}

// scope merges query parameters over the operator's stored selection;
// any explicit query value wins field by field
func (h *ReportHandler) scope(query ReportQuery) filter.Scope {
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
	return scope
}

// parseBounds parses the optional custom start/end dates. The end bound
// covers its whole calendar day; ranges are inclusive on both ends.
func parseBounds(start, end string) (time.Time, time.Time, error) {
	var startTime, endTime time.Time
	if start != "" {
		parsed, err := time.Parse(queryDateLayout, start)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		startTime = parsed
	}
	if end != "" {
		parsed, err := time.Parse(queryDateLayout, end)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		endTime = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return startTime, endTime, nil
}

func mapOverviewToResponse(overview *service.Overview) OverviewResponse {
	return OverviewResponse{
		Period:      string(overview.Period),
		Start:       overview.Range.Start.Format(time.RFC3339),
		End:         overview.Range.End.Format(time.RFC3339),
		Summary:     overview.Aggregate.Summary,
		Aggregate:   overview.Aggregate,
		TopCities:   overview.TopCities,
		TopRecords:  overview.TopRecords,
		SourceError: overview.SourceError,
	}
}
