package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/hostel/internal/service/feedback"
)

// FeedbackHandler serves complaints and suggestions for residents and the
// administrator.
type FeedbackHandler struct {
	feedback *feedback.Service
	logger   *zap.Logger
}

// NewFeedbackHandler constructs the feedback HTTP adapter.
func NewFeedbackHandler(svc *feedback.Service, logger *zap.Logger) *FeedbackHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackHandler{feedback: svc, logger: logger}
}

type feedbackRequest struct {
	Text string `json:"text" binding:"required"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// FileComplaint records a complaint for the caller.
func (h *FeedbackHandler) FileComplaint(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	complaint, err := h.feedback.FileComplaint(c.Request.Context(), hostelID(c), req.Text)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, complaint)
}

// Complaints lists the caller's complaints.
func (h *FeedbackHandler) Complaints(c *gin.Context) {
	complaints, err := h.feedback.Complaints(c.Request.Context(), hostelID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": complaints})
}

// WithdrawComplaint deletes one of the caller's complaints.
func (h *FeedbackHandler) WithdrawComplaint(c *gin.Context) {
	if err := h.feedback.WithdrawComplaint(c.Request.Context(), hostelID(c), c.Param("complaintID")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Suggest records a suggestion for the caller.
func (h *FeedbackHandler) Suggest(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	suggestion, err := h.feedback.Suggest(c.Request.Context(), hostelID(c), req.Text)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, suggestion)
}

// Suggestions lists the caller's suggestions.
func (h *FeedbackHandler) Suggestions(c *gin.Context) {
	suggestions, err := h.feedback.Suggestions(c.Request.Context(), hostelID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// AllComplaints lists every student's complaints.
func (h *FeedbackHandler) AllComplaints(c *gin.Context) {
	all, err := h.feedback.AllComplaints(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": all})
}

// SetComplaintStatus moves a complaint to a new status.
func (h *FeedbackHandler) SetComplaintStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	err := h.feedback.SetStatus(c.Request.Context(), c.Param("hostelID"), c.Param("complaintID"), req.Status)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// AllSuggestions lists every student's suggestions.
func (h *FeedbackHandler) AllSuggestions(c *gin.Context) {
	all, err := h.feedback.AllSuggestions(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": all})
}
