package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/hostel/internal/service/announce"
	"github.com/mamadbah2/hostel/internal/service/registration"
)

// PublicHandler serves routes that need no identity.
type PublicHandler struct {
	registration *registration.Service
	announcer    *announce.Service
	logger       *zap.Logger
}

// NewPublicHandler constructs the unauthenticated HTTP adapter.
func NewPublicHandler(reg *registration.Service, announcer *announce.Service, logger *zap.Logger) *PublicHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublicHandler{registration: reg, announcer: announcer, logger: logger}
}

// Register creates an account for a resident on the roster.
func (h *PublicHandler) Register(c *gin.Context) {
	var req registration.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": registration.ErrInvalidRequest.Error()})
		return
	}

	student, err := h.registration.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"hostelId":   student.HostelID,
		"isApproved": student.IsApproved,
		"message":    "Registration received. An administrator will approve your account.",
	})
}

// Notifications lists hostel-wide notifications.
func (h *PublicHandler) Notifications(c *gin.Context) {
	list, err := h.announcer.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}
