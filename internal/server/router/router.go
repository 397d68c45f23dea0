package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/hostel/internal/server/handlers"
)

// Handlers groups the HTTP adapters mounted by New.
type Handlers struct {
	Public   *handlers.PublicHandler
	Student  *handlers.StudentHandler
	Admin    *handlers.AdminHandler
	Feedback *handlers.FeedbackHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, students handlers.StudentFinder, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/register", h.Public.Register)
	api.GET("/notifications", h.Public.Notifications)

	student := api.Group("/student", handlers.RequireIdentity(logger))
	student.GET("/leaves", h.Student.ListLeaves)
	student.POST("/leaves", h.Student.SubmitLeave)
	student.GET("/attendance", h.Student.Attendance)
	student.GET("/bill/status", h.Student.BillStatus)
	student.POST("/bill/consume", h.Student.ConsumeBill)
	student.GET("/bill/history", h.Student.BillHistory)
	student.GET("/payments", h.Student.ListPayments)
	student.POST("/payments", h.Student.RecordPayment)
	student.GET("/complaints", h.Feedback.Complaints)
	student.POST("/complaints", h.Feedback.FileComplaint)
	student.DELETE("/complaints/:complaintID", h.Feedback.WithdrawComplaint)
	student.GET("/suggestions", h.Feedback.Suggestions)
	student.POST("/suggestions", h.Feedback.Suggest)

	admin := api.Group("/admin", handlers.RequireIdentity(logger), handlers.RequireAdmin(students, logger))
	admin.GET("/leaves/pending", h.Admin.PendingLeaves)
	admin.POST("/leaves/:leaveID/approve", h.Admin.ApproveLeave)
	admin.GET("/bills", h.Admin.ListBills)
	admin.POST("/bills", h.Admin.GenerateBill)
	admin.GET("/students/:hostelID/bill/history", h.Admin.StudentBillHistory)
	admin.POST("/students/:hostelID/approve", h.Admin.ApproveStudent)
	admin.POST("/roster/reload", h.Admin.ReloadRoster)
	admin.POST("/notifications", h.Admin.Broadcast)
	admin.DELETE("/notifications/:notificationID", h.Admin.DeleteNotification)
	admin.GET("/complaints", h.Feedback.AllComplaints)
	admin.POST("/complaints/:hostelID/:complaintID/status", h.Feedback.SetComplaintStatus)
	admin.GET("/suggestions", h.Feedback.AllSuggestions)

	logger.Info("router initialized")

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
