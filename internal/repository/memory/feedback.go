package memory

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/hostel/internal/domain/models"
	"github.com/mamadbah2/hostel/internal/repository"
)

func (s *Store) AppendComplaint(_ context.Context, hostelID string, complaint models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, ok := s.students[hostelID]
	if !ok {
		return repository.ErrStudentNotFound
	}
	student.Complaints = append(student.Complaints, complaint)
	student.UpdatedAt = s.now()
	return nil
}

func (s *Store) SetComplaintStatus(_ context.Context, hostelID string, complaintID primitive.ObjectID, status models.ComplaintStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, ok := s.students[hostelID]
	if !ok {
		return repository.ErrStudentNotFound
	}
	for i := range student.Complaints {
		if student.Complaints[i].ID == complaintID {
			student.Complaints[i].Status = status
			student.UpdatedAt = s.now()
			return nil
		}
	}
	return repository.ErrComplaintNotFound
}

func (s *Store) DeleteComplaint(_ context.Context, hostelID string, complaintID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, ok := s.students[hostelID]
	if !ok {
		return repository.ErrStudentNotFound
	}
	for i, c := range student.Complaints {
		if c.ID == complaintID {
			student.Complaints = append(student.Complaints[:i:i], student.Complaints[i+1:]...)
			student.UpdatedAt = s.now()
			return nil
		}
	}
	return repository.ErrComplaintNotFound
}

// ListComplaints returns students with complaints ordered by hostel id.
func (s *Store) ListComplaints(_ context.Context) ([]models.StudentComplaints, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.StudentComplaints
	for _, student := range s.students {
		if len(student.Complaints) == 0 {
			continue
		}
		out = append(out, models.StudentComplaints{
			HostelID:   student.HostelID,
			Name:       student.Name,
			Program:    student.Program,
			Complaints: append([]models.Complaint(nil), student.Complaints...),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HostelID < out[j].HostelID })
	return out, nil
}

func (s *Store) AppendSuggestion(_ context.Context, hostelID string, suggestion models.Suggestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, ok := s.students[hostelID]
	if !ok {
		return repository.ErrStudentNotFound
	}
	student.Suggestions = append(student.Suggestions, suggestion)
	student.UpdatedAt = s.now()
	return nil
}

// ListSuggestions returns students with suggestions ordered by hostel id.
func (s *Store) ListSuggestions(_ context.Context) ([]models.StudentSuggestions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.StudentSuggestions
	for _, student := range s.students {
		if len(student.Suggestions) == 0 {
			continue
		}
		out = append(out, models.StudentSuggestions{
			HostelID:    student.HostelID,
			Name:        student.Name,
			Suggestions: append([]models.Suggestion(nil), student.Suggestions...),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HostelID < out[j].HostelID })
	return out, nil
}
