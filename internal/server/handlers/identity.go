package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/hostel/internal/domain/models"
)

// HostelIDHeader carries the authenticated hostel id, set by the gateway in
// front of this service.
const HostelIDHeader = "X-Hostel-ID"

const hostelIDKey = "hostelID"

// StudentFinder loads a student by hostel id.
type StudentFinder interface {
	FindStudent(ctx context.Context, hostelID string) (*models.Student, error)
}

// RequireIdentity rejects requests without a hostel id.
func RequireIdentity(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HostelIDHeader))
		if id == "" {
			writeError(c, logger, errMissingIdentity)
			return
		}
		c.Set(hostelIDKey, id)
		c.Next()
	}
}

// RequireAdmin lets only administrator accounts through. It must run after
// RequireIdentity.
func RequireAdmin(students StudentFinder, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		student, err := students.FindStudent(c.Request.Context(), hostelID(c))
		if err != nil {
			writeError(c, logger, err)
			return
		}
		if !student.IsAdmin() {
			logger.Warn("admin route denied", zap.String("hostel_id", student.HostelID))
			writeError(c, logger, errForbidden)
			return
		}
		c.Next()
	}
}

func hostelID(c *gin.Context) string {
	return c.GetString(hostelIDKey)
}
