// Package feedback handles resident complaints and suggestions.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/hostel/internal/domain/models"
	"github.com/mamadbah2/hostel/internal/repository"
)

const maxTextLength = 2000

var (
	// ErrInvalidText indicates an empty or oversized complaint or suggestion.
	ErrInvalidText = fmt.Errorf("text must be between 1 and %d characters", maxTextLength)

	// ErrInvalidStatus indicates a status outside Pending, Resolved and Rejected.
	ErrInvalidStatus = errors.New("status must be Pending, Resolved or Rejected")

	// ErrInvalidComplaintID indicates a malformed complaint id.
	ErrInvalidComplaintID = errors.New("invalid complaint id")
)

// Service files and reviews feedback embedded in student documents.
type Service struct {
	store  repository.StudentStore
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the feedback service.
func NewService(store repository.StudentStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// FileComplaint records a pending complaint.
func (s *Service) FileComplaint(ctx context.Context, hostelID, text string) (*models.Complaint, error) {
	text, err := cleanText(text)
	if err != nil {
		return nil, err
	}

	complaint := models.Complaint{
		ID:     primitive.NewObjectID(),
		Text:   text,
		Date:   s.now(),
		Status: models.ComplaintPending,
	}
	if err := s.store.AppendComplaint(ctx, hostelID, complaint); err != nil {
		return nil, fmt.Errorf("append complaint: %w", err)
	}

	s.logger.Info("complaint filed", zap.String("hostel_id", hostelID), zap.String("complaint_id", complaint.ID.Hex()))
	return &complaint, nil
}

// Complaints returns the student's own complaints.
func (s *Service) Complaints(ctx context.Context, hostelID string) ([]models.Complaint, error) {
	student, err := s.store.FindStudent(ctx, hostelID)
	if err != nil {
		return nil, err
	}
	return student.Complaints, nil
}

// WithdrawComplaint deletes one of the student's complaints.
func (s *Service) WithdrawComplaint(ctx context.Context, hostelID, complaintID string) error {
	id, err := primitive.ObjectIDFromHex(complaintID)
	if err != nil {
		return ErrInvalidComplaintID
	}
	if err := s.store.DeleteComplaint(ctx, hostelID, id); err != nil {
		return fmt.Errorf("delete complaint: %w", err)
	}

	s.logger.Info("complaint withdrawn", zap.String("hostel_id", hostelID), zap.String("complaint_id", complaintID))
	return nil
}

// SetStatus moves a complaint to Pending, Resolved or Rejected.
func (s *Service) SetStatus(ctx context.Context, hostelID, complaintID, status string) error {
	id, err := primitive.ObjectIDFromHex(complaintID)
	if err != nil {
		return ErrInvalidComplaintID
	}
	parsed, ok := models.ParseComplaintStatus(status)
	if !ok {
		return ErrInvalidStatus
	}

	if err := s.store.SetComplaintStatus(ctx, hostelID, id, parsed); err != nil {
		return fmt.Errorf("update complaint: %w", err)
	}

	s.logger.Info("complaint status updated",
		zap.String("hostel_id", hostelID),
		zap.String("complaint_id", complaintID),
		zap.String("status", string(parsed)))
	return nil
}

// AllComplaints lists complaints grouped by student.
func (s *Service) AllComplaints(ctx context.Context) ([]models.StudentComplaints, error) {
	return s.store.ListComplaints(ctx)
}

// Suggest records a suggestion.
func (s *Service) Suggest(ctx context.Context, hostelID, text string) (*models.Suggestion, error) {
	text, err := cleanText(text)
	if err != nil {
		return nil, err
	}

	suggestion := models.Suggestion{ID: primitive.NewObjectID(), Text: text, Date: s.now()}
	if err := s.store.AppendSuggestion(ctx, hostelID, suggestion); err != nil {
		return nil, fmt.Errorf("append suggestion: %w", err)
	}
	return &suggestion, nil
}

// Suggestions returns the student's own suggestions.
func (s *Service) Suggestions(ctx context.Context, hostelID string) ([]models.Suggestion, error) {
	student, err := s.store.FindStudent(ctx, hostelID)
	if err != nil {
		return nil, err
	}
	return student.Suggestions, nil
}

// AllSuggestions lists suggestions grouped by student.
func (s *Service) AllSuggestions(ctx context.Context) ([]models.StudentSuggestions, error) {
	return s.store.ListSuggestions(ctx)
}

func cleanText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > maxTextLength {
		return "", ErrInvalidText
	}
	return text, nil
}
