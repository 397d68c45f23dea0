// Package memory provides an in-process implementation of the repository
// contracts for tests and local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/hostel/internal/domain/models"
	"github.com/mamadbah2/hostel/internal/repository"
)

// Store keeps every collection in maps guarded by a single mutex, which makes
// each method atomic with respect to the others.
type Store struct {
	mu            sync.RWMutex
	students      map[string]*models.Student
	expenses      map[string]models.ExpenseRecord
	payments      []models.Payment
	notifications []models.Notification
	now           func() time.Time
}

var _ repository.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		students: make(map[string]*models.Student),
		expenses: make(map[string]models.ExpenseRecord),
		now:      time.Now,
	}
}

// CreateStudent inserts a student; hostel ids are unique.
func (s *Store) CreateStudent(_ context.Context, student *models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.students[student.HostelID]; exists {
		return repository.ErrDuplicateKey
	}
	if student.ID.IsZero() {
		student.ID = primitive.NewObjectID()
	}
	stored := cloneStudent(*student)
	s.students[student.HostelID] = &stored
	return nil
}

// FindStudent returns a copy of the student.
func (s *Store) FindStudent(_ context.Context, hostelID string) (*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	student, ok := s.students[hostelID]
	if !ok {
		return nil, repository.ErrStudentNotFound
	}
	out := cloneStudent(*student)
	return &out, nil
}

// ListBillableStudents returns every non-admin student ordered by hostel id.
func (s *Store) ListBillableStudents(_ context.Context) ([]models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Student, 0, len(s.students))
	for _, student := range s.students {
		if student.IsAdmin() {
			continue
		}
		out = append(out, cloneStudent(*student))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HostelID < out[j].HostelID })
	return out, nil
}

func (s *Store) ApproveStudent(_ context.Context, hostelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, ok := s.students[hostelID]
	if !ok {
		return repository.ErrStudentNotFound
	}
	student.IsApproved = true
	student.UpdatedAt = s.now()
	return nil
}

func (s *Store) AppendLeave(_ context.Context, hostelID string, leave models.Leave) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, ok := s.students[hostelID]
	if !ok {
		return repository.ErrStudentNotFound
	}
	student.Leaves = append(student.Leaves, leave)
	student.UpdatedAt = s.now()
	return nil
}

func (s *Store) ApproveLeave(_ context.Context, leaveID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, student := range s.students {
		for i := range student.Leaves {
			if student.Leaves[i].ID == leaveID {
				student.Leaves[i].Approved = true
				student.UpdatedAt = s.now()
				return nil
			}
		}
	}
	return repository.ErrLeaveNotFound
}

// PendingLeaves lists unapproved leaves, oldest application first.
func (s *Store) PendingLeaves(_ context.Context) ([]models.PendingLeave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.PendingLeave
	for _, student := range s.students {
		for _, leave := range student.Leaves {
			if leave.Approved {
				continue
			}
			out = append(out, models.PendingLeave{Leave: leave, HostelID: student.HostelID, Name: student.Name})
		}
	}
	models.SortPendingLeaves(out)
	return out, nil
}

func (s *Store) AppendBillingEntry(_ context.Context, hostelID string, entry models.BillingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, ok := s.students[hostelID]
	if !ok {
		return repository.ErrStudentNotFound
	}
	student.BillingHistory = append(student.BillingHistory, entry)
	student.NeedsBillRefresh = true
	student.UpdatedAt = s.now()
	return nil
}

func (s *Store) BillFlag(_ context.Context, hostelID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	student, ok := s.students[hostelID]
	if !ok {
		return false, repository.ErrStudentNotFound
	}
	return student.NeedsBillRefresh, nil
}

func (s *Store) ConsumeBillFlag(_ context.Context, hostelID string) (*models.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	student, ok := s.students[hostelID]
	if !ok {
		return nil, repository.ErrStudentNotFound
	}
	if !student.NeedsBillRefresh {
		return nil, repository.ErrNoNewBill
	}
	out := cloneStudent(*student)
	student.NeedsBillRefresh = false
	return &out, nil
}

// CreateExpense inserts a record; month keys are unique.
func (s *Store) CreateExpense(_ context.Context, record *models.ExpenseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.expenses[record.MonthYear]; exists {
		return repository.ErrDuplicateKey
	}
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	s.expenses[record.MonthYear] = *record
	return nil
}

func (s *Store) FindExpense(_ context.Context, monthYear string) (*models.ExpenseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.expenses[monthYear]
	if !ok {
		return nil, repository.ErrExpenseNotFound
	}
	return &record, nil
}

// ListExpenses returns records newest first.
func (s *Store) ListExpenses(_ context.Context) ([]models.ExpenseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ExpenseRecord, 0, len(s.expenses))
	for _, record := range s.expenses {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// CreatePayment enforces one Completed payment per student and cycle.
func (s *Store) CreatePayment(_ context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if payment.Status == models.PaymentCompleted {
		for _, existing := range s.payments {
			if existing.HostelID == payment.HostelID &&
				existing.BillingCycle == payment.BillingCycle &&
				existing.Status == models.PaymentCompleted {
				return repository.ErrDuplicateKey
			}
		}
	}
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	s.payments = append(s.payments, *payment)
	return nil
}

func (s *Store) ListPayments(_ context.Context, hostelID string) ([]models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Payment
	for _, payment := range s.payments {
		if payment.HostelID == hostelID {
			out = append(out, payment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentDate.After(out[j].PaymentDate) })
	return out, nil
}

func (s *Store) CreateNotification(_ context.Context, notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	s.notifications = append(s.notifications, *notification)
	return nil
}

// ListNotifications returns notifications newest first.
func (s *Store) ListNotifications(_ context.Context) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Notification, len(s.notifications))
	for i, n := range s.notifications {
		out[len(out)-1-i] = n
	}
	return out, nil
}

// DeleteNotification removes a notification by id.
func (s *Store) DeleteNotification(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotificationNotFound
}

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }

func cloneStudent(in models.Student) models.Student {
	out := in
	out.Leaves = append([]models.Leave(nil), in.Leaves...)
	out.BillingHistory = append([]models.BillingEntry(nil), in.BillingHistory...)
	out.Complaints = append([]models.Complaint(nil), in.Complaints...)
	out.Suggestions = append([]models.Suggestion(nil), in.Suggestions...)
	return out
}
