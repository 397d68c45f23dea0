package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/hostel/internal/repository"
	"github.com/mamadbah2/hostel/internal/service/announce"
	"github.com/mamadbah2/hostel/internal/service/billing"
	"github.com/mamadbah2/hostel/internal/service/feedback"
	"github.com/mamadbah2/hostel/internal/service/leave"
	"github.com/mamadbah2/hostel/internal/service/payment"
	"github.com/mamadbah2/hostel/internal/service/registration"
)

var (
	errMissingIdentity = errors.New("missing " + HostelIDHeader + " header")
	errForbidden       = errors.New("admin role required")
)

var statusByError = []struct {
	err    error
	status int
}{
	{leave.ErrInvalidRange, http.StatusBadRequest},
	{leave.ErrInsufficientNotice, http.StatusBadRequest},
	{leave.ErrInvalidLeaveID, http.StatusBadRequest},
	{billing.ErrInvalidExpenseAmount, http.StatusBadRequest},
	{payment.ErrInvalidPayment, http.StatusBadRequest},
	{registration.ErrInvalidRequest, http.StatusBadRequest},
	{registration.ErrRosterMismatch, http.StatusBadRequest},
	{registration.ErrIncompleteRoster, http.StatusBadRequest},
	{announce.ErrEmptyMessage, http.StatusBadRequest},
	{announce.ErrInvalidNotificationID, http.StatusBadRequest},
	{feedback.ErrInvalidText, http.StatusBadRequest},
	{feedback.ErrInvalidStatus, http.StatusBadRequest},
	{feedback.ErrInvalidComplaintID, http.StatusBadRequest},

	{billing.ErrDuplicateBillingCycle, http.StatusConflict},
	{payment.ErrDuplicatePayment, http.StatusConflict},
	{registration.ErrAlreadyRegistered, http.StatusConflict},
	{repository.ErrDuplicateKey, http.StatusConflict},

	{repository.ErrStudentNotFound, http.StatusNotFound},
	{repository.ErrLeaveNotFound, http.StatusNotFound},
	{repository.ErrExpenseNotFound, http.StatusNotFound},
	{repository.ErrComplaintNotFound, http.StatusNotFound},
	{repository.ErrNotificationNotFound, http.StatusNotFound},
	{payment.ErrUnknownBillingCycle, http.StatusNotFound},
	{registration.ErrNotOnRoster, http.StatusNotFound},

	{registration.ErrRosterHeader, http.StatusUnprocessableEntity},
	{registration.ErrRosterUnavailable, http.StatusServiceUnavailable},

	{errMissingIdentity, http.StatusUnauthorized},
	{errForbidden, http.StatusForbidden},
}

func statusFor(err error) int {
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// writeError renders err as {"error": message}. Unknown errors are logged and
// hidden behind a generic message.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
