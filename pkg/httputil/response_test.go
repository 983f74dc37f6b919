package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/salonhq/salon-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func record(fn func(c *gin.Context)) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)
	return w
}

func TestRespondWithErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{apperrors.Validation("bad input", nil), http.StatusBadRequest},
		{apperrors.NotFound("branch", nil), http.StatusNotFound},
		{apperrors.Unauthorized(nil), http.StatusUnauthorized},
		{apperrors.Conflict("taken", nil), http.StatusConflict},
		{apperrors.BranchClosed("closed"), http.StatusUnprocessableEntity},
		{apperrors.SlotTaken("taken"), http.StatusUnprocessableEntity},
		{apperrors.InvalidCoupon("expired"), http.StatusUnprocessableEntity},
		{apperrors.MembershipInactive("expired"), http.StatusUnprocessableEntity},
		{apperrors.PaymentFailure("declined", nil), http.StatusBadGateway},
		{apperrors.DeliveryFailure("smtp down", nil), http.StatusBadGateway},
		{apperrors.RateLimited("too many requests"), http.StatusTooManyRequests},
		{apperrors.Internal(nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := record(func(c *gin.Context) { RespondWithError(c, tt.err) })
		assert.Equal(t, tt.status, w.Code, "error %v", tt.err)
	}
}

func TestRespondWithErrorBody(t *testing.T) {
	w := record(func(c *gin.Context) {
		RespondWithError(c, apperrors.SlotTaken("staff member already has an appointment at this time"))
	})

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, apperrors.CodeSlotTaken, resp.Error.Code)
	assert.Equal(t, "staff member already has an appointment at this time", resp.Error.Message)
}

func TestRespondWithErrorUnknownError(t *testing.T) {
	w := record(func(c *gin.Context) {
		RespondWithError(c, assert.AnError)
	})

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", resp.Error.Message, "internal details never leak")
}

func TestRespondWithSuccess(t *testing.T) {
	w := record(func(c *gin.Context) {
		RespondWithSuccess(c, map[string]string{"name": "Downtown"})
	})

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestRespondWithPagination(t *testing.T) {
	w := record(func(c *gin.Context) {
		RespondWithPagination(c, []string{"a", "b"}, 2, 10, 25)
	})

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Pagination Pagination `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Pagination.Page)
	assert.Equal(t, 25, resp.Data.Pagination.Total)
	assert.Equal(t, 3, resp.Data.Pagination.TotalPage)
}
