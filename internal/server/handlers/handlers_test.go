package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mamadbah2/hostel/internal/repository"
	"github.com/mamadbah2/hostel/internal/service/billing"
	"github.com/mamadbah2/hostel/internal/service/leave"
)

func TestAmount_UnmarshalJSON(t *testing.T) {
	var req billRequest
	payload := `{"kitchenRent":"1,000","kitchenExpense":" 250.5 ","staffSalary":400,"totalExpense":"abc"}`

	require.NoError(t, json.Unmarshal([]byte(payload), &req))

	assert.True(t, math.IsNaN(float64(req.KitchenRent)))
	assert.Equal(t, 250.5, float64(req.KitchenExpense))
	assert.Equal(t, 400.0, float64(req.StaffSalary))
	assert.True(t, math.IsNaN(float64(req.TotalExpense)))
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{leave.ErrInsufficientNotice, http.StatusBadRequest},
		{fmt.Errorf("append leave: %w", repository.ErrStudentNotFound), http.StatusNotFound},
		{billing.ErrDuplicateBillingCycle, http.StatusConflict},
		{errMissingIdentity, http.StatusUnauthorized},
		{errForbidden, http.StatusForbidden},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestWriteError_HidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	writeError(c, zap.NewNop(), fmt.Errorf("mongo: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
