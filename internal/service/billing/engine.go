// Package billing generates monthly mess bills and exposes them to students.
package billing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/hostel/internal/attendance"
	"github.com/mamadbah2/hostel/internal/domain/calendar"
	"github.com/mamadbah2/hostel/internal/domain/models"
	"github.com/mamadbah2/hostel/internal/repository"
)

var (
	// ErrInvalidExpenseAmount indicates a missing, non-finite or out of range input.
	ErrInvalidExpenseAmount = errors.New("invalid expense amount")

	// ErrDuplicateBillingCycle indicates a bill already exists for the month.
	ErrDuplicateBillingCycle = errors.New("bill already generated for this month")
)

const defaultWorkers = 8

// Inputs are the month's costs entered by an administrator.
type Inputs struct {
	KitchenRent    float64 `json:"kitchenRent"`
	KitchenExpense float64 `json:"kitchenExpense"`
	StaffSalary    float64 `json:"staffSalary"`
	TotalExpense   float64 `json:"totalExpense"`
}

// Validate requires a positive total and finite, non-negative components.
func (in Inputs) Validate() error {
	if !isFinite(in.TotalExpense) || in.TotalExpense <= 0 {
		return fmt.Errorf("%w: totalExpense must be greater than zero", ErrInvalidExpenseAmount)
	}
	components := []struct {
		name  string
		value float64
	}{
		{"kitchenRent", in.KitchenRent},
		{"kitchenExpense", in.KitchenExpense},
		{"staffSalary", in.StaffSalary},
	}
	for _, c := range components {
		if !isFinite(c.value) || c.value < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", ErrInvalidExpenseAmount, c.name)
		}
	}
	return nil
}

// appendFailedMessage is reported per failed student; the cause is logged.
const appendFailedMessage = "failed to append bill"

// StudentFailure describes a student whose bill could not be appended.
type StudentFailure struct {
	HostelID string `json:"hostelId"`
	Error    string `json:"error"`
}

// Result summarises one Generate call. UsersUpdated below UsersBilled means
// some appends failed and need investigating.
type Result struct {
	MonthYear         string           `json:"monthYear"`
	UsersBilled       int              `json:"usersBilled"`
	UsersUpdated      int              `json:"usersUpdated"`
	RatePerPresentDay float64          `json:"ratePerPresentDay"`
	Failures          []StudentFailure `json:"failures,omitempty"`
}

// Announcer is told about every generated bill.
type Announcer interface {
	BillGenerated(ctx context.Context, result Result) error
}

// Engine splits the month's costs across the hostel population.
type Engine struct {
	students  repository.StudentStore
	expenses  repository.ExpenseStore
	announcer Announcer
	policy    attendance.Policy
	workers   int
	logger    *zap.Logger
	now       func() time.Time
}

// NewEngine wires the billing engine. announcer may be nil.
func NewEngine(students repository.StudentStore, expenses repository.ExpenseStore, announcer Announcer, policy attendance.Policy, workers int, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Engine{
		students:  students,
		expenses:  expenses,
		announcer: announcer,
		policy:    policy,
		workers:   workers,
		logger:    logger,
		now:       time.Now,
	}
}

type billItem struct {
	hostelID string
	entry    models.BillingEntry
}

type itemResult struct {
	hostelID string
	err      error
}

// Generate bills every non-admin student for the current month. Rent and
// salary are split equally; the kitchen expense is split by present days.
func (e *Engine) Generate(ctx context.Context, in Inputs) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := e.now()
	today := calendar.Today(func() time.Time { return now })
	monthYear := today.MonthYear()
	logger := e.logger.With(zap.String("month_year", monthYear))

	_, err := e.expenses.FindExpense(ctx, monthYear)
	switch {
	case err == nil:
		return nil, ErrDuplicateBillingCycle
	case !errors.Is(err, repository.ErrExpenseNotFound):
		return nil, fmt.Errorf("check existing bill: %w", err)
	}

	students, err := e.students.ListBillableStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load students: %w", err)
	}
	if len(students) == 0 {
		logger.Info("no students to bill, nothing recorded")
		return &Result{MonthYear: monthYear}, nil
	}

	presentDays := make([]int, len(students))
	var totalPresent int64
	for i, student := range students {
		counts := e.policy.Compute(calendar.Of(student.RegistrationDate), student.AttendanceLeaves(), today)
		presentDays[i] = counts.PresentDays
		totalPresent += int64(counts.PresentDays)
	}

	studentCount := decimal.NewFromInt(int64(len(students)))
	fixedShare := decimal.NewFromFloat(in.KitchenRent).
		Add(decimal.NewFromFloat(in.StaffSalary)).
		Div(studentCount)

	rate := decimal.Zero
	if totalPresent > 0 {
		rate = decimal.NewFromFloat(in.KitchenExpense).Div(decimal.NewFromInt(totalPresent))
	}
	ratePerDay := rate.InexactFloat64()

	record := &models.ExpenseRecord{
		Date:             now,
		MonthYear:        monthYear,
		KitchenRent:      in.KitchenRent,
		KitchenExpense:   in.KitchenExpense,
		StaffSalary:      in.StaffSalary,
		TotalExpense:     in.TotalExpense,
		RatePerDay:       ratePerDay,
		UsersBilledCount: len(students),
	}
	if err := e.expenses.CreateExpense(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateBillingCycle
		}
		return nil, fmt.Errorf("save expense record: %w", err)
	}

	items := make([]billItem, len(students))
	for i, student := range students {
		share := fixedShare.Add(rate.Mul(decimal.NewFromInt(int64(presentDays[i])))).Round(0)
		items[i] = billItem{
			hostelID: student.HostelID,
			entry: models.BillingEntry{
				Date:         now,
				TotalExpense: in.TotalExpense,
				StudentShare: share.InexactFloat64(),
				PresentDays:  presentDays[i],
				RatePerDay:   ratePerDay,
			},
		}
	}

	// The summary record already exists, so the batch must run to the end
	// even if the caller goes away.
	results := e.applyBatch(context.WithoutCancel(ctx), items)

	result := &Result{
		MonthYear:         monthYear,
		UsersBilled:       len(students),
		RatePerPresentDay: ratePerDay,
	}
	for _, r := range results {
		if r.err != nil {
			logger.Error("failed to append bill", zap.String("hostel_id", r.hostelID), zap.Error(r.err))
			result.Failures = append(result.Failures, StudentFailure{HostelID: r.hostelID, Error: appendFailedMessage})
			continue
		}
		result.UsersUpdated++
	}

	logger.Info("bill generated",
		zap.Int("users_billed", result.UsersBilled),
		zap.Int("users_updated", result.UsersUpdated),
		zap.Int64("total_present_days", totalPresent),
		zap.Float64("rate_per_day", ratePerDay))

	if e.announcer != nil {
		if err := e.announcer.BillGenerated(ctx, *result); err != nil {
			logger.Warn("bill announcement failed", zap.Error(err))
		}
	}

	return result, nil
}

func (e *Engine) applyBatch(ctx context.Context, items []billItem) []itemResult {
	results := make([]itemResult, len(items))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i] = itemResult{
				hostelID: item.hostelID,
				err:      e.students.AppendBillingEntry(ctx, item.hostelID, item.entry),
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Records lists generated monthly summaries, newest first.
func (e *Engine) Records(ctx context.Context) ([]models.ExpenseRecord, error) {
	return e.expenses.ListExpenses(ctx)
}
