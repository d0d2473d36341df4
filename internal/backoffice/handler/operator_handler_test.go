package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkops/backoffice/internal/operator"
)

func newOperatorRouter(operators operator.Provider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewOperatorHandler(newTestLogger(), operators)
	router := gin.New()
	router.GET("/operator/session", h.Get)
	router.POST("/operator/session", h.SignIn)
	router.DELETE("/operator/session", h.SignOut)
	router.PUT("/operator/scope", h.SelectScope)
	return router
}

func TestOperatorHandler(t *testing.T) {
	t.Run("SignInThenSelectScope", func(t *testing.T) {
		operators := operator.NewStaticProvider()
		router := newOperatorRouter(operators)

		body, _ := json.Marshal(OperatorSessionRequest{ID: "op-1", Name: "Ana", Role: "manager"})
		req, _ := http.NewRequest(http.MethodPost, "/operator/session", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)

		body, _ = json.Marshal(OperatorScopeRequest{City: "lisbon"})
		req, _ = http.NewRequest(http.MethodPut, "/operator/scope", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Data OperatorSessionResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "lisbon", resp.Data.Scope.City)
		assert.Equal(t, "lisbon", operators.SelectedScope().City)
	})

	t.Run("SignOutClearsEverything", func(t *testing.T) {
		operators := operator.NewStaticProvider()
		operators.SignIn(operator.User{ID: "op-1", Name: "Ana"})
		router := newOperatorRouter(operators)

		req, _ := http.NewRequest(http.MethodDelete, "/operator/session", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)

		_, signedIn := operators.CurrentUser()
		assert.False(t, signedIn)
	})

	t.Run("MissingNameRejected", func(t *testing.T) {
		router := newOperatorRouter(operator.NewStaticProvider())

		req, _ := http.NewRequest(http.MethodPost, "/operator/session", bytes.NewBufferString(`{"id":"op-1"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
