package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/hostel/internal/service/announce"
	"github.com/mamadbah2/hostel/internal/service/billing"
	"github.com/mamadbah2/hostel/internal/service/leave"
	"github.com/mamadbah2/hostel/internal/service/registration"
)

// AdminHandler serves leave approval, bill generation and roster management.
type AdminHandler struct {
	leaves       *leave.Service
	engine       *billing.Engine
	gate         *billing.Gate
	registration *registration.Service
	announcer    *announce.Service
	logger       *zap.Logger
}

// NewAdminHandler constructs the administrator HTTP adapter.
func NewAdminHandler(leaves *leave.Service, engine *billing.Engine, gate *billing.Gate, reg *registration.Service, announcer *announce.Service, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{
		leaves:       leaves,
		engine:       engine,
		gate:         gate,
		registration: reg,
		announcer:    announcer,
		logger:       logger,
	}
}

// PendingLeaves lists leaves awaiting approval.
func (h *AdminHandler) PendingLeaves(c *gin.Context) {
	pending, err := h.leaves.Pending(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaves": pending})
}

// ApproveLeave approves one leave by id.
func (h *AdminHandler) ApproveLeave(c *gin.Context) {
	if err := h.leaves.Approve(c.Request.Context(), c.Param("leaveID")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approved": true})
}

// GenerateBill runs the monthly billing.
func (h *AdminHandler) GenerateBill(c *gin.Context) {
	var req billRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid bill payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.engine.Generate(c.Request.Context(), billing.Inputs{
		KitchenRent:    float64(req.KitchenRent),
		KitchenExpense: float64(req.KitchenExpense),
		StaffSalary:    float64(req.StaffSalary),
		TotalExpense:   float64(req.TotalExpense),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListBills returns the monthly summary records.
func (h *AdminHandler) ListBills(c *gin.Context) {
	records, err := h.engine.Records(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": records})
}

// StudentBillHistory returns any student's formatted history.
func (h *AdminHandler) StudentBillHistory(c *gin.Context) {
	history, err := h.gate.History(c.Request.Context(), c.Param("hostelID"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

// ApproveStudent confirms a registration.
func (h *AdminHandler) ApproveStudent(c *gin.Context) {
	if err := h.registration.Approve(c.Request.Context(), c.Param("hostelID")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approved": true})
}

// ReloadRoster re-reads the roster sheet.
func (h *AdminHandler) ReloadRoster(c *gin.Context) {
	version, err := h.registration.ReloadRoster(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": version})
}

type broadcastRequest struct {
	Message string `json:"message" binding:"required"`
}

// Broadcast publishes a notification to every resident.
func (h *AdminHandler) Broadcast(c *gin.Context) {
	var req broadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	n, err := h.announcer.Broadcast(c.Request.Context(), req.Message)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

// DeleteNotification removes a notification by id.
func (h *AdminHandler) DeleteNotification(c *gin.Context) {
	if err := h.announcer.Delete(c.Request.Context(), c.Param("notificationID")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
