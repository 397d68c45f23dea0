package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/hostel/internal/domain/calendar"
	"github.com/mamadbah2/hostel/internal/domain/models"
	"github.com/mamadbah2/hostel/internal/repository"
)

const jobTimeout = 2 * time.Minute

// Broadcaster publishes a hostel-wide notification.
type Broadcaster interface {
	Broadcast(ctx context.Context, message string) (*models.Notification, error)
}

// Scheduler runs the monthly billing reminder. It only reminds; bills are
// always generated by an administrator.
type Scheduler struct {
	cron        *cron.Cron
	spec        string
	expenses    repository.ExpenseStore
	students    repository.StudentStore
	broadcaster Broadcaster
	logger      *zap.Logger
	now         func() time.Time
}

// NewScheduler creates a scheduler for the standard 5-field cron spec.
func NewScheduler(spec string, expenses repository.ExpenseStore, students repository.StudentStore, broadcaster Broadcaster, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:        cron.New(),
		spec:        spec,
		expenses:    expenses,
		students:    students,
		broadcaster: broadcaster,
		logger:      logger,
		now:         time.Now,
	}
}

// Start registers the reminder job and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("spec", s.spec))

	if _, err := s.cron.AddFunc(s.spec, s.runReminder); err != nil {
		return fmt.Errorf("schedule bill reminder: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runReminder() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	sent, err := s.remind(ctx)
	if err != nil {
		s.logger.Error("bill reminder failed", zap.Error(err))
		return
	}
	s.logger.Info("bill reminder run", zap.Bool("sent", sent))
}

// remind broadcasts a reminder when the current month has no bill yet and
// reports whether one was sent.
func (s *Scheduler) remind(ctx context.Context) (bool, error) {
	monthYear := calendar.Today(s.now).MonthYear()

	_, err := s.expenses.FindExpense(ctx, monthYear)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, repository.ErrExpenseNotFound):
		return false, fmt.Errorf("look up expense record: %w", err)
	}

	pending, err := s.students.PendingLeaves(ctx)
	if err != nil {
		return false, fmt.Errorf("list pending leaves: %w", err)
	}

	message := fmt.Sprintf("Reminder: the mess bill for %s has not been generated yet.", monthYear)
	if len(pending) > 0 {
		message += fmt.Sprintf(" %d leave request(s) are still awaiting approval.", len(pending))
	}

	if _, err := s.broadcaster.Broadcast(ctx, message); err != nil {
		return false, fmt.Errorf("broadcast reminder: %w", err)
	}
	return true, nil
}
