package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/hostel/internal/attendance"
	"github.com/mamadbah2/hostel/internal/domain/calendar"
	"github.com/mamadbah2/hostel/internal/domain/models"
	"github.com/mamadbah2/hostel/internal/repository/memory"
	"github.com/mamadbah2/hostel/internal/server/handlers"
	"github.com/mamadbah2/hostel/internal/service/announce"
	"github.com/mamadbah2/hostel/internal/service/billing"
	"github.com/mamadbah2/hostel/internal/service/feedback"
	"github.com/mamadbah2/hostel/internal/service/leave"
	"github.com/mamadbah2/hostel/internal/service/payment"
	"github.com/mamadbah2/hostel/internal/service/registration"
)

// ==========================================================================
// Harness
// ==========================================================================

type harness struct {
	engine *gin.Engine
	store  *memory.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.CreateStudent(ctx, &models.Student{HostelID: "warden", Name: "Warden", Role: models.RoleAdmin}))
	require.NoError(t, store.CreateStudent(ctx, &models.Student{
		HostelID:         "SNG25MCAshon",
		Name:             "Shon",
		Role:             models.RoleStudent,
		RegistrationDate: time.Date(2025, time.July, 14, 0, 0, 0, 0, time.UTC),
	}))

	roster := registration.NewRoster()
	roster.Replace([]registration.RosterEntry{{
		Name:             "Asha",
		Department:       "Physics",
		Program:          "MSc",
		Semester:         2,
		RegistrationDate: calendar.New(2026, time.August, 1),
	}}, time.Now())

	announcer := announce.NewService(store, nil, "", "₹", nil)
	leaves := leave.NewService(store, attendance.Policy{}, nil)
	engine := billing.NewEngine(store, store, announcer, attendance.Policy{}, 2, nil)
	gate := billing.NewGate(store, "₹", nil)
	reg := registration.NewService(store, roster, nil, "", nil)
	payments := payment.NewService(store, store, nil)
	fb := feedback.NewService(store, nil)

	r := New(Handlers{
		Public:   handlers.NewPublicHandler(reg, announcer, nil),
		Student:  handlers.NewStudentHandler(leaves, gate, payments, nil),
		Admin:    handlers.NewAdminHandler(leaves, engine, gate, reg, announcer, nil),
		Feedback: handlers.NewFeedbackHandler(fb, nil),
	}, store, nil)

	return &harness{engine: r, store: store}
}

func (h *harness) do(t *testing.T, method, path, identity string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if identity != "" {
		req.Header.Set(handlers.HostelIDHeader, identity)
	}
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

// ==========================================================================
// Access control
// ==========================================================================

func TestHealthz(t *testing.T) {
	h := newHarness(t)

	rec, body := h.do(t, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestStudentRoutes_RequireIdentity(t *testing.T) {
	h := newHarness(t)

	rec, _ := h.do(t, http.MethodGet, "/api/student/bill/status", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	h := newHarness(t)

	rec, _ := h.do(t, http.MethodGet, "/api/admin/leaves/pending", "SNG25MCAshon", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = h.do(t, http.MethodGet, "/api/admin/leaves/pending", "ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = h.do(t, http.MethodGet, "/api/admin/leaves/pending", "warden", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// ==========================================================================
// Leave flow
// ==========================================================================

func TestLeaveSubmitAndApprove(t *testing.T) {
	h := newHarness(t)

	// GIVEN a leave far in the future
	rec, body := h.do(t, http.MethodPost, "/api/student/leaves", "SNG25MCAshon",
		map[string]string{"from": "2099-01-01", "to": "2099-01-03"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, false, body["adjusted"])

	// WHEN the warden approves the only pending leave
	rec, body = h.do(t, http.MethodGet, "/api/admin/leaves/pending", "warden", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := body["leaves"].([]any)
	require.Len(t, pending, 1)
	leaveID := pending[0].(map[string]any)["id"].(string)

	rec, _ = h.do(t, http.MethodPost, "/api/admin/leaves/"+leaveID+"/approve", "warden", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// THEN the queue is empty
	_, body = h.do(t, http.MethodGet, "/api/admin/leaves/pending", "warden", nil)
	assert.Empty(t, body["leaves"])
}

func TestLeaveSubmit_Rejections(t *testing.T) {
	h := newHarness(t)

	rec, _ := h.do(t, http.MethodPost, "/api/student/leaves", "SNG25MCAshon",
		map[string]string{"from": "2099-01-05", "to": "2099-01-03"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = h.do(t, http.MethodPost, "/api/student/leaves", "SNG25MCAshon",
		map[string]string{"from": "2000-01-01", "to": "2000-01-03"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = h.do(t, http.MethodPost, "/api/student/leaves", "SNG25MCAshon",
		map[string]string{"from": "soon", "to": "later"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = h.do(t, http.MethodPost, "/api/admin/leaves/not-an-id/approve", "warden", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ==========================================================================
// Billing flow
// ==========================================================================

func TestBillingFlow(t *testing.T) {
	h := newHarness(t)

	// GIVEN a generated bill with string and number inputs
	rec, body := h.do(t, http.MethodPost, "/api/admin/bills", "warden", map[string]any{
		"kitchenRent":    "1000",
		"kitchenExpense": 300,
		"staffSalary":    500,
		"totalExpense":   "1800",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 1, body["usersBilled"])
	assert.EqualValues(t, 1, body["usersUpdated"])
	monthYear := body["monthYear"].(string)

	// THEN a second run for the month conflicts
	rec, _ = h.do(t, http.MethodPost, "/api/admin/bills", "warden", map[string]any{"totalExpense": 10})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// AND the student sees the bill exactly once
	_, body = h.do(t, http.MethodGet, "/api/student/bill/status", "SNG25MCAshon", nil)
	assert.Equal(t, true, body["hasNewBill"])

	rec, body = h.do(t, http.MethodPost, "/api/student/bill/consume", "SNG25MCAshon", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["hasNewBill"])
	assert.Len(t, body["history"], 1)
	assert.NotNil(t, body["latest"])

	_, body = h.do(t, http.MethodPost, "/api/student/bill/consume", "SNG25MCAshon", nil)
	assert.Equal(t, false, body["hasNewBill"])

	_, body = h.do(t, http.MethodGet, "/api/student/bill/status", "SNG25MCAshon", nil)
	assert.Equal(t, false, body["hasNewBill"])

	// AND the history is still readable by both sides
	_, body = h.do(t, http.MethodGet, "/api/admin/students/SNG25MCAshon/bill/history", "warden", nil)
	assert.Len(t, body["history"], 1)
	_, body = h.do(t, http.MethodGet, "/api/admin/bills", "warden", nil)
	assert.Len(t, body["bills"], 1)

	// AND the generated bill was announced
	_, body = h.do(t, http.MethodGet, "/api/notifications", "", nil)
	assert.Len(t, body["notifications"], 1)

	// AND it can be paid once
	pay := map[string]any{"billingCycle": monthYear, "amount": 1800, "razorpayPaymentId": "pay_1"}
	rec, _ = h.do(t, http.MethodPost, "/api/student/payments", "SNG25MCAshon", pay)
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec, _ = h.do(t, http.MethodPost, "/api/student/payments", "SNG25MCAshon", pay)
	assert.Equal(t, http.StatusConflict, rec.Code)
	_, body = h.do(t, http.MethodGet, "/api/student/payments", "SNG25MCAshon", nil)
	assert.Len(t, body["payments"], 1)
}

func TestGenerateBill_InvalidAmounts(t *testing.T) {
	h := newHarness(t)

	for name, payload := range map[string]map[string]any{
		"missing total":  {"kitchenRent": 100},
		"text total":     {"totalExpense": "lots"},
		"negative rent":  {"totalExpense": 100, "kitchenRent": -1},
		"null component": {"totalExpense": 100, "staffSalary": nil},
	} {
		t.Run(name, func(t *testing.T) {
			rec, _ := h.do(t, http.MethodPost, "/api/admin/bills", "warden", payload)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

// ==========================================================================
// Registration and notifications
// ==========================================================================

func TestRegisterAndApprove(t *testing.T) {
	h := newHarness(t)
	req := map[string]string{"name": "asha", "department": "Physics", "program": "MSc", "password": "pw"}

	rec, body := h.do(t, http.MethodPost, "/api/register", "", req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "SNG26MSCasha", body["hostelId"])

	rec, _ = h.do(t, http.MethodPost, "/api/register", "", req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = h.do(t, http.MethodPost, "/api/admin/students/SNG26MSCasha/approve", "warden", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = h.do(t, http.MethodPost, "/api/admin/roster/reload", "warden", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBroadcast(t *testing.T) {
	h := newHarness(t)

	rec, _ := h.do(t, http.MethodPost, "/api/admin/notifications", "warden", map[string]string{"message": "Mess closed Sunday"})
	require.Equal(t, http.StatusCreated, rec.Code)

	_, body := h.do(t, http.MethodGet, "/api/notifications", "", nil)
	list := body["notifications"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "Mess closed Sunday", list[0].(map[string]any)["message"])
}

func TestDeleteNotification(t *testing.T) {
	h := newHarness(t)
	_, created := h.do(t, http.MethodPost, "/api/admin/notifications", "warden", map[string]string{"message": "Wrong menu posted"})
	id := created["id"].(string)

	rec, _ := h.do(t, http.MethodDelete, "/api/admin/notifications/"+id, "SNG25MCAshon", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = h.do(t, http.MethodDelete, "/api/admin/notifications/"+id, "warden", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = h.do(t, http.MethodDelete, "/api/admin/notifications/"+id, "warden", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = h.do(t, http.MethodDelete, "/api/admin/notifications/xyz", "warden", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, body := h.do(t, http.MethodGet, "/api/notifications", "", nil)
	assert.Empty(t, body["notifications"])
}

// ==========================================================================
// Feedback
// ==========================================================================

func TestComplaintFlow(t *testing.T) {
	h := newHarness(t)

	// GIVEN a resident files a complaint
	rec, created := h.do(t, http.MethodPost, "/api/student/complaints", "SNG25MCAshon", map[string]string{"text": "Dal is always cold"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Pending", created["status"])
	id := created["id"].(string)

	// WHEN the warden resolves it
	rec, _ = h.do(t, http.MethodPost, "/api/admin/complaints/SNG25MCAshon/"+id+"/status", "warden", map[string]string{"status": "Resolved"})
	require.Equal(t, http.StatusOK, rec.Code)

	// THEN the resident sees the new status
	_, body := h.do(t, http.MethodGet, "/api/student/complaints", "SNG25MCAshon", nil)
	list := body["complaints"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "Resolved", list[0].(map[string]any)["status"])

	_, body = h.do(t, http.MethodGet, "/api/admin/complaints", "warden", nil)
	students := body["students"].([]any)
	require.Len(t, students, 1)
	assert.Equal(t, "SNG25MCAshon", students[0].(map[string]any)["hostelId"])

	rec, _ = h.do(t, http.MethodDelete, "/api/student/complaints/"+id, "SNG25MCAshon", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = h.do(t, http.MethodDelete, "/api/student/complaints/"+id, "SNG25MCAshon", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComplaintStatus_Rejections(t *testing.T) {
	h := newHarness(t)
	_, created := h.do(t, http.MethodPost, "/api/student/complaints", "SNG25MCAshon", map[string]string{"text": "Leaking tap"})
	id := created["id"].(string)

	rec, _ := h.do(t, http.MethodPost, "/api/admin/complaints/SNG25MCAshon/"+id+"/status", "warden", map[string]string{"status": "Escalated"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = h.do(t, http.MethodPost, "/api/admin/complaints/SNG25MCAshon/"+id+"/status", "SNG25MCAshon", map[string]string{"status": "Resolved"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = h.do(t, http.MethodPost, "/api/student/complaints", "SNG25MCAshon", map[string]string{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggestionFlow(t *testing.T) {
	h := newHarness(t)

	rec, _ := h.do(t, http.MethodPost, "/api/student/suggestions", "SNG25MCAshon", map[string]string{"text": "Paneer on Fridays"})
	require.Equal(t, http.StatusCreated, rec.Code)

	_, body := h.do(t, http.MethodGet, "/api/student/suggestions", "SNG25MCAshon", nil)
	assert.Len(t, body["suggestions"], 1)

	_, body = h.do(t, http.MethodGet, "/api/admin/suggestions", "warden", nil)
	students := body["students"].([]any)
	require.Len(t, students, 1)
	assert.Equal(t, "Shon", students[0].(map[string]any)["name"])
}
