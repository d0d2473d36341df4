package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/parkops/backoffice/internal/domain/cashsession"
	"github.com/parkops/backoffice/internal/domain/report"
	"github.com/parkops/backoffice/internal/domain/transaction"
)

// ReportQuery carries the period/scope query parameters of report endpoints.
// Dates use YYYY-MM-DD; scope fields left empty fall back to the operator's
// stored selection.
type ReportQuery struct {
	Period string `form:"period,default=today"`
	Start  string `form:"start"`
	End    string `form:"end"`
	Search string `form:"q"`
	Status string `form:"status"`
	City   string `form:"city"`
	Method string `form:"method"`
}

// OverviewResponse represents a period report in API responses
type OverviewResponse struct {
	Period      string               `json:"period"`
	Start       string               `json:"start"`
	End         string               `json:"end"`
	Summary     report.Summary       `json:"summary"`
	Aggregate   report.Aggregate     `json:"aggregate"`
	TopCities   []report.RankEntry   `json:"top_cities"`
	TopRecords  []transaction.Record `json:"top_records"`
	SourceError string               `json:"source_error,omitempty"`
}

// SnapshotResponse is one dashboard tile
type SnapshotResponse struct {
	Period  string         `json:"period"`
	Start   string         `json:"start"`
	End     string         `json:"end"`
	Summary report.Summary `json:"summary"`
}

// DashboardResponse represents the dashboard in API responses
type DashboardResponse struct {
	Snapshots   []SnapshotResponse `json:"snapshots"`
	SourceError string             `json:"source_error,omitempty"`
}

// OpenSessionRequest represents a request to open a cash session
type OpenSessionRequest struct {
	Operator string `json:"operator" binding:"required"`
	Register string `json:"register" binding:"required"`
}

// RecordCountedRequest represents one counted total for a payment method.
// Amount is a decimal string; negative or unparsable values are coerced to 0.
type RecordCountedRequest struct {
	Method string `json:"method" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// CloseSessionRequest represents a request to close a cash session
type CloseSessionRequest struct {
	Notes string `json:"notes"`
}

// SessionResponse represents a cash session in API responses
type SessionResponse struct {
	ID                 string            `json:"id"`
	Operator           string            `json:"operator"`
	Register           string            `json:"register"`
	Status             string            `json:"status"`
	Expected           map[string]string `json:"expected"`
	Counted            map[string]string `json:"counted"`
	TotalExpected      string            `json:"total_expected"`
	TotalCounted       string            `json:"total_counted"`
	Difference         string            `json:"difference"`
	DiscrepancyFlagged bool              `json:"discrepancy_flagged"`
	Notes              string            `json:"notes,omitempty"`
	OpenedAt           string            `json:"opened_at"`
	ClosedAt           string            `json:"closed_at,omitempty"`
}

// SessionListResponse represents a list of cash sessions in API responses
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

// OperatorSessionRequest represents an operator sign-in
type OperatorSessionRequest struct {
	ID   string `json:"id" binding:"required"`
	Name string `json:"name" binding:"required"`
	Role string `json:"role"`
}

// OperatorScopeRequest represents the operator's stored report scope
type OperatorScopeRequest struct {
	Search string `json:"q"`
	Status string `json:"status"`
	City   string `json:"city"`
	Method string `json:"method"`
}

// OperatorSessionResponse represents the operator session in API responses
type OperatorSessionResponse struct {
	User  interface{}          `json:"user,omitempty"`
	Scope OperatorScopeRequest `json:"scope"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=20" binding:"min=1,max=100"`
}

func mapSessionToResponse(session *cashsession.Session) SessionResponse {
	resp := SessionResponse{
		ID:                 session.ID.String(),
		Operator:           session.Operator,
		Register:           session.Register,
		Status:             string(session.Status),
		Expected:           mapTotals(session.Expected),
		Counted:            mapTotals(session.Counted),
		TotalExpected:      session.TotalExpected().StringFixed(2),
		TotalCounted:       session.TotalCounted().StringFixed(2),
		Difference:         session.Difference.StringFixed(2),
		DiscrepancyFlagged: session.DiscrepancyFlagged,
		Notes:              session.Notes,
		OpenedAt:           session.OpenedAt.UTC().Format(time.RFC3339),
	}
	if session.ClosedAt != nil {
		resp.ClosedAt = session.ClosedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func mapTotals(totals map[transaction.PaymentMethod]decimal.Decimal) map[string]string {
	mapped := make(map[string]string, len(totals))
	for method, total := range totals {
		mapped[string(method)] = total.StringFixed(2)
	}
	return mapped
}
