package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/hostel/internal/attendance"
	"github.com/mamadbah2/hostel/internal/domain/calendar"
	"github.com/mamadbah2/hostel/internal/domain/models"
	"github.com/mamadbah2/hostel/internal/repository"
)

var (
	// ErrInvalidRange indicates the leave ends before it starts.
	ErrInvalidRange = errors.New("leave end date is before its start date")

	// ErrInsufficientNotice indicates nothing of the range is left once the
	// start is moved to tomorrow.
	ErrInsufficientNotice = errors.New("leave must end on or after tomorrow")

	// ErrInvalidLeaveID indicates a malformed leave identifier.
	ErrInvalidLeaveID = errors.New("invalid leave id")
)

// Submission is the outcome of a leave request.
type Submission struct {
	Leave    models.Leave `json:"leave"`
	Adjusted bool         `json:"adjusted"`
	Message  string       `json:"message,omitempty"`
}

// Service owns each student's mess cut requests.
type Service struct {
	store  repository.StudentStore
	policy attendance.Policy
	logger *zap.Logger
	now    func() time.Time
}

// NewService constructs the leave ledger.
func NewService(store repository.StudentStore, policy attendance.Policy, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// Submit records a pending leave. A start date earlier than tomorrow is moved
// to tomorrow and the caller is told about it.
func (s *Service) Submit(ctx context.Context, hostelID string, from, to calendar.Date) (*Submission, error) {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, ErrInvalidRange
	}

	now := s.now()
	tomorrow := calendar.Today(func() time.Time { return now }).AddDays(1)

	result := &Submission{}
	if from.Before(tomorrow) {
		result.Adjusted = true
		result.Message = fmt.Sprintf("Mess cut must be applied at least one day in advance; start date moved from %s to %s.", from, tomorrow)
		from = tomorrow
	}
	if from.After(to) {
		return nil, ErrInsufficientNotice
	}

	result.Leave = models.Leave{
		ID:        primitive.NewObjectID(),
		From:      from.Time(),
		To:        to.Time(),
		Approved:  false,
		AppliedOn: now,
	}

	if err := s.store.AppendLeave(ctx, hostelID, result.Leave); err != nil {
		return nil, fmt.Errorf("append leave: %w", err)
	}

	s.logger.Info("leave submitted",
		zap.String("hostel_id", hostelID),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Bool("adjusted", result.Adjusted))

	return result, nil
}

// Approve marks a leave as approved. Approving twice is a no-op.
func (s *Service) Approve(ctx context.Context, leaveID string) error {
	id, err := primitive.ObjectIDFromHex(leaveID)
	if err != nil {
		return ErrInvalidLeaveID
	}

	if err := s.store.ApproveLeave(ctx, id); err != nil {
		return fmt.Errorf("approve leave: %w", err)
	}

	s.logger.Info("leave approved", zap.String("leave_id", leaveID))
	return nil
}

// List returns the student's leaves as stored.
func (s *Service) List(ctx context.Context, hostelID string) ([]models.Leave, error) {
	student, err := s.store.FindStudent(ctx, hostelID)
	if err != nil {
		return nil, err
	}
	return student.Leaves, nil
}

// Pending returns the approval queue.
func (s *Service) Pending(ctx context.Context) ([]models.PendingLeave, error) {
	return s.store.PendingLeaves(ctx)
}

// Attendance computes the student's counts for the running cycle.
func (s *Service) Attendance(ctx context.Context, hostelID string) (attendance.Result, error) {
	student, err := s.store.FindStudent(ctx, hostelID)
	if err != nil {
		return attendance.Result{}, err
	}

	return s.policy.Compute(
		calendar.Of(student.RegistrationDate),
		student.AttendanceLeaves(),
		calendar.Today(s.now),
	), nil
}
