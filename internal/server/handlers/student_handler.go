package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/hostel/internal/domain/calendar"
	"github.com/mamadbah2/hostel/internal/repository"
	"github.com/mamadbah2/hostel/internal/service/billing"
	"github.com/mamadbah2/hostel/internal/service/leave"
	"github.com/mamadbah2/hostel/internal/service/payment"
)

// StudentHandler serves a resident's own leaves, attendance, bills and payments.
type StudentHandler struct {
	leaves   *leave.Service
	gate     *billing.Gate
	payments *payment.Service
	logger   *zap.Logger
}

// NewStudentHandler constructs the student-facing HTTP adapter.
func NewStudentHandler(leaves *leave.Service, gate *billing.Gate, payments *payment.Service, logger *zap.Logger) *StudentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentHandler{leaves: leaves, gate: gate, payments: payments, logger: logger}
}

type leaveRequest struct {
	From calendar.Date `json:"from"`
	To   calendar.Date `json:"to"`
}

// SubmitLeave applies for a mess cut.
func (h *StudentHandler) SubmitLeave(c *gin.Context) {
	var req leaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid leave payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must be dates (YYYY-MM-DD)"})
		return
	}

	sub, err := h.leaves.Submit(c.Request.Context(), hostelID(c), req.From, req.To)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}

// ListLeaves returns the caller's leaves.
func (h *StudentHandler) ListLeaves(c *gin.Context) {
	leaves, err := h.leaves.List(c.Request.Context(), hostelID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaves": leaves})
}

// Attendance returns the running cycle's day counts.
func (h *StudentHandler) Attendance(c *gin.Context) {
	result, err := h.leaves.Attendance(c.Request.Context(), hostelID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// BillStatus reports whether an unread bill is waiting, without clearing it.
func (h *StudentHandler) BillStatus(c *gin.Context) {
	pending, err := h.gate.Peek(c.Request.Context(), hostelID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hasNewBill": pending})
}

// ConsumeBill returns the new bill once and marks it read.
func (h *StudentHandler) ConsumeBill(c *gin.Context) {
	history, err := h.gate.Consume(c.Request.Context(), hostelID(c))
	if errors.Is(err, repository.ErrNoNewBill) {
		c.JSON(http.StatusOK, gin.H{"hasNewBill": false})
		return
	}
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	resp := gin.H{"hasNewBill": true, "history": history}
	if len(history) > 0 {
		resp["latest"] = history[0]
	}
	c.JSON(http.StatusOK, resp)
}

// BillHistory returns the caller's formatted billing history.
func (h *StudentHandler) BillHistory(c *gin.Context) {
	history, err := h.gate.History(c.Request.Context(), hostelID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// RecordPayment stores a gateway payment confirmation.
func (h *StudentHandler) RecordPayment(c *gin.Context) {
	var req payment.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid payment payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "billingCycle and amount are required"})
		return
	}

	p, err := h.payments.Record(c.Request.Context(), hostelID(c), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ListPayments returns the caller's payments.
func (h *StudentHandler) ListPayments(c *gin.Context) {
	payments, err := h.payments.List(c.Request.Context(), hostelID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
