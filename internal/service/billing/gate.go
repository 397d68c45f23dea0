package billing

import (
	"context"

	"go.uber.org/zap"

	"github.com/mamadbah2/hostel/internal/repository"
)

// Gate delivers each new bill to its student at most once. A Consume racing
// a Generate for the same student resolves as last writer wins on the flag;
// bills are generated at most monthly so no lock is taken.
type Gate struct {
	students repository.StudentStore
	currency string
	logger   *zap.Logger
}

// NewGate builds the notification gate.
func NewGate(students repository.StudentStore, currency string, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{students: students, currency: currency, logger: logger}
}

// Peek reports whether an unread bill is waiting.
func (g *Gate) Peek(ctx context.Context, hostelID string) (bool, error) {
	return g.students.BillFlag(ctx, hostelID)
}

// Consume clears the flag and returns the formatted history in one atomic
// step. It returns repository.ErrNoNewBill when there is nothing unread.
func (g *Gate) Consume(ctx context.Context, hostelID string) ([]DisplayEntry, error) {
	student, err := g.students.ConsumeBillFlag(ctx, hostelID)
	if err != nil {
		return nil, err
	}

	g.logger.Info("bill flag consumed", zap.String("hostel_id", hostelID))
	return FormatHistory(student.BillingHistory, g.currency), nil
}

// History returns the formatted history without touching the flag.
func (g *Gate) History(ctx context.Context, hostelID string) ([]DisplayEntry, error) {
	student, err := g.students.FindStudent(ctx, hostelID)
	if err != nil {
		return nil, err
	}
	return FormatHistory(student.BillingHistory, g.currency), nil
}
