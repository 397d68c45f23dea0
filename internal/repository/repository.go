// Package repository declares the persistence contracts shared by the Mongo
// and in-memory backends.
package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/hostel/internal/domain/models"
)

var (
	// ErrStudentNotFound is returned when no student matches a hostel id.
	ErrStudentNotFound = errors.New("student not found")

	// ErrLeaveNotFound is returned when no embedded leave matches an id.
	ErrLeaveNotFound = errors.New("leave not found")

	// ErrExpenseNotFound is returned when no expense record exists for a month.
	ErrExpenseNotFound = errors.New("expense record not found")

	// ErrDuplicateKey is returned when an insert violates a unique index.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrComplaintNotFound is returned when a student has no complaint with
	// the given id.
	ErrComplaintNotFound = errors.New("complaint not found")

	// ErrNotificationNotFound is returned when no notification matches an id.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrNoNewBill is returned by ConsumeBillFlag when the student exists but
	// has no unread bill.
	ErrNoNewBill = errors.New("no new bill")
)

// StudentStore persists student documents and their embedded leaves and bills.
type StudentStore interface {
	CreateStudent(ctx context.Context, student *models.Student) error
	FindStudent(ctx context.Context, hostelID string) (*models.Student, error)
	ListBillableStudents(ctx context.Context) ([]models.Student, error)
	ApproveStudent(ctx context.Context, hostelID string) error

	AppendLeave(ctx context.Context, hostelID string, leave models.Leave) error
	ApproveLeave(ctx context.Context, leaveID primitive.ObjectID) error
	PendingLeaves(ctx context.Context) ([]models.PendingLeave, error)

	// AppendBillingEntry pushes the entry and raises needsBillRefresh in one
	// atomic document update.
	AppendBillingEntry(ctx context.Context, hostelID string, entry models.BillingEntry) error
	BillFlag(ctx context.Context, hostelID string) (bool, error)
	// ConsumeBillFlag clears a raised needsBillRefresh and returns the student
	// as it was read in the same atomic operation.
	ConsumeBillFlag(ctx context.Context, hostelID string) (*models.Student, error)

	AppendComplaint(ctx context.Context, hostelID string, complaint models.Complaint) error
	SetComplaintStatus(ctx context.Context, hostelID string, complaintID primitive.ObjectID, status models.ComplaintStatus) error
	DeleteComplaint(ctx context.Context, hostelID string, complaintID primitive.ObjectID) error
	// ListComplaints returns every student with at least one complaint.
	ListComplaints(ctx context.Context) ([]models.StudentComplaints, error)
	AppendSuggestion(ctx context.Context, hostelID string, suggestion models.Suggestion) error
	// ListSuggestions returns every student with at least one suggestion.
	ListSuggestions(ctx context.Context) ([]models.StudentSuggestions, error)
}

// ExpenseStore persists monthly billing summaries.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, record *models.ExpenseRecord) error
	FindExpense(ctx context.Context, monthYear string) (*models.ExpenseRecord, error)
	ListExpenses(ctx context.Context) ([]models.ExpenseRecord, error)
}

// PaymentStore persists payment confirmations.
type PaymentStore interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
	ListPayments(ctx context.Context, hostelID string) ([]models.Payment, error)
}

// NotificationStore persists broadcast notifications.
type NotificationStore interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	ListNotifications(ctx context.Context) ([]models.Notification, error)
	DeleteNotification(ctx context.Context, id primitive.ObjectID) error
}

// Store is the full persistence surface of the service.
type Store interface {
	StudentStore
	ExpenseStore
	PaymentStore
	NotificationStore
	Close(ctx context.Context) error
}
