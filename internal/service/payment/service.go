package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/hostel/internal/domain/calendar"
	"github.com/mamadbah2/hostel/internal/domain/models"
	"github.com/mamadbah2/hostel/internal/repository"
)

var (
	// ErrInvalidPayment indicates a missing cycle or a non-positive amount.
	ErrInvalidPayment = errors.New("billing cycle and a positive amount are required")

	// ErrUnknownBillingCycle indicates the student has no bill for the cycle.
	ErrUnknownBillingCycle = errors.New("no bill found for this billing cycle")

	// ErrDuplicatePayment indicates the cycle is already paid.
	ErrDuplicatePayment = errors.New("billing cycle already paid")
)

// Request is a confirmed gateway payment for one billing cycle ("MM-YYYY").
type Request struct {
	BillingCycle string  `json:"billingCycle" binding:"required"`
	Amount       float64 `json:"amount" binding:"required"`
	PaymentID    string  `json:"razorpayPaymentId"`
	OrderID      string  `json:"razorpayOrderId"`
}

// Service records payment confirmations against generated bills.
type Service struct {
	students repository.StudentStore
	payments repository.PaymentStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewService constructs the payment ledger.
func NewService(students repository.StudentStore, payments repository.PaymentStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{students: students, payments: payments, logger: logger, now: time.Now}
}

// Record stores a completed payment for a cycle the student was billed for.
func (s *Service) Record(ctx context.Context, hostelID string, req Request) (*models.Payment, error) {
	cycle := strings.TrimSpace(req.BillingCycle)
	if cycle == "" || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) || req.Amount <= 0 {
		return nil, ErrInvalidPayment
	}

	student, err := s.students.FindStudent(ctx, hostelID)
	if err != nil {
		return nil, err
	}

	entry, ok := billForCycle(student.BillingHistory, cycle)
	if !ok {
		return nil, ErrUnknownBillingCycle
	}

	payment := &models.Payment{
		UserID:            student.ID,
		HostelID:          student.HostelID,
		BillingCycle:      cycle,
		Amount:            req.Amount,
		Status:            models.PaymentCompleted,
		PresentDays:       entry.PresentDays,
		RazorpayPaymentID: req.PaymentID,
		RazorpayOrderID:   req.OrderID,
		PaymentDate:       s.now(),
	}

	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicatePayment
		}
		return nil, fmt.Errorf("save payment: %w", err)
	}

	if req.Amount != entry.StudentShare {
		s.logger.Warn("payment amount differs from bill",
			zap.String("hostel_id", hostelID),
			zap.String("cycle", cycle),
			zap.Float64("paid", req.Amount),
			zap.Float64("billed", entry.StudentShare))
	}
	s.logger.Info("payment recorded", zap.String("hostel_id", hostelID), zap.String("cycle", cycle))
	return payment, nil
}

// List returns the student's payments, newest first.
func (s *Service) List(ctx context.Context, hostelID string) ([]models.Payment, error) {
	if _, err := s.students.FindStudent(ctx, hostelID); err != nil {
		return nil, err
	}
	return s.payments.ListPayments(ctx, hostelID)
}

func billForCycle(history []models.BillingEntry, cycle string) (models.BillingEntry, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if !history[i].Date.IsZero() && calendar.Of(history[i].Date).MonthYear() == cycle {
			return history[i], true
		}
	}
	return models.BillingEntry{}, false
}
