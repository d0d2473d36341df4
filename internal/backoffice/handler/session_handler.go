package handler

import (
	"errors"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/parkops/backoffice/internal/backoffice/service"
	"github.com/parkops/backoffice/internal/domain/cashsession"
	"github.com/parkops/backoffice/internal/domain/transaction"
)

// SessionHandler handles HTTP requests for cash-session operations
type SessionHandler struct {
	sessionService service.SessionService
	logger         *slog.Logger
}

// NewSessionHandler creates a new cash-session handler
func NewSessionHandler(logger *slog.Logger, sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		logger:         logger,
	}
}

// Open creates a cash session seeded with today's expected totals
func (h *SessionHandler) Open(c *gin.Context) {
	var req OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	session, err := h.sessionService.Open(c.Request.Context(), req.Operator, req.Register)
	if err != nil {
		if errors.Is(err, cashsession.ErrEmptyOperator) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to open cash session", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapSessionToResponse(session))
}

// GetByID returns an open or persisted cash session
func (h *SessionHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid session ID")
		return
	}

	session, err := h.sessionService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, cashsession.ErrSessionNotFound{}) {
			RespondNotFound(c, "Cash session not found")
			return
		}
		h.logger.Error("Failed to get cash session", "session_id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapSessionToResponse(session))
}

// RecordCounted stores one operator-counted total. Negative or unparsable
// amounts are treated as zero so a typo never corrupts the count.
func (h *SessionHandler) RecordCounted(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid session ID")
		return
	}

	var req RecordCountedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() {
		h.logger.Warn("Coercing invalid counted amount to zero",
			"session_id", id.String(), "method", req.Method, "amount", req.Amount)
		amount = decimal.Zero
	}

	session, err := h.sessionService.RecordCounted(c.Request.Context(), id, transaction.PaymentMethod(req.Method), amount)
	if err != nil {
		switch {
		case errors.Is(err, cashsession.ErrSessionNotFound{}):
			RespondNotFound(c, "Cash session not found")
		case errors.Is(err, cashsession.ErrSessionClosed):
			RespondConflict(c, "Cash session is already closed")
		default:
			h.logger.Error("Failed to record counted total", "session_id", id.String(), "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapSessionToResponse(session))
}

// Close finalizes a cash session
func (h *SessionHandler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid session ID")
		return
	}

	// An empty body closes without notes
	var req CloseSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	session, err := h.sessionService.Close(c.Request.Context(), id, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, cashsession.ErrSessionNotFound{}):
			RespondNotFound(c, "Cash session not found")
		case errors.Is(err, cashsession.ErrSessionClosed):
			RespondConflict(c, "Cash session is already closed")
		case errors.Is(err, cashsession.ErrJustificationRequired):
			RespondUnprocessable(c, "Discrepancy beyond tolerance requires notes")
		default:
			h.logger.Error("Failed to close cash session", "session_id", id.String(), "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapSessionToResponse(session))
}

// List returns persisted sessions newest-first
func (h *SessionHandler) List(c *gin.Context) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	sessions, err := h.sessionService.ListClosed(c.Request.Context(), params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list cash sessions", "error", err)
		RespondInternalError(c)
		return
	}

	resp := SessionListResponse{Sessions: make([]SessionResponse, 0, len(sessions))}
	for _, session := range sessions {
		resp.Sessions = append(resp.Sessions, mapSessionToResponse(session))
	}

	RespondWithPage(c, resp, params.Page, params.PerPage, len(resp.Sessions))
}
