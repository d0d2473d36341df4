package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/parkops/backoffice/internal/filter"
	"github.com/parkops/backoffice/internal/operator"
)

// OperatorHandler handles the operator session: identity and stored scope
type OperatorHandler struct {
	operators operator.Provider
	logger    *slog.Logger
}

// NewOperatorHandler creates a new operator-session handler
func NewOperatorHandler(logger *slog.Logger, operators operator.Provider) *OperatorHandler {
	return &OperatorHandler{
		operators: operators,
		logger:    logger,
	}
}

// Get returns the current operator session
func (h *OperatorHandler) Get(c *gin.Context) {
	resp := OperatorSessionResponse{Scope: scopeToRequest(h.operators.SelectedScope())}
	if user, ok := h.operators.CurrentUser(); ok {
		resp.User = user
	}
	RespondOK(c, resp)
}

// SignIn records the operator identity and resets the stored scope
func (h *OperatorHandler) SignIn(c *gin.Context) {
	var req OperatorSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	h.operators.SignIn(operator.User{ID: req.ID, Name: req.Name, Role: req.Role})
	h.logger.Info("Operator signed in", "operator_id", req.ID)

	h.Get(c)
}

// SelectScope stores the operator's report scope for subsequent requests
func (h *OperatorHandler) SelectScope(c *gin.Context) {
	var req OperatorScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	h.operators.Select(filter.Scope{
		Search: req.Search,
		Status: req.Status,
		City:   req.City,
		Method: req.Method,
	})

	h.Get(c)
}

// SignOut clears the operator session
func (h *OperatorHandler) SignOut(c *gin.Context) {
	h.operators.SignOut()
	h.Get(c)
}

func scopeToRequest(scope filter.Scope) OperatorScopeRequest {
	return OperatorScopeRequest{
		Search: scope.Search,
		Status: scope.Status,
		City:   scope.City,
		Method: scope.Method,
	}
}
