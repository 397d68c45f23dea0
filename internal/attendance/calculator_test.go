package attendance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/hostel/internal/attendance"
	"github.com/mamadbah2/hostel/internal/domain/calendar"
)

func oct(day int) calendar.Date { return calendar.New(2026, time.October, day) }

// =============================================================================
// CYCLE BOUNDARIES
// =============================================================================

func TestCompute_NoLeaves_AllDaysPresent(t *testing.T) {
	asOf := oct(19)
	registrations := []calendar.Date{
		calendar.New(2025, time.July, 14), // long-standing resident
		calendar.New(2026, time.September, 30),
		oct(1),
		oct(7),
		oct(19),
	}

	for _, registered := range registrations {
		got := attendance.Compute(registered, nil, asOf)

		assert.Equal(t, got.TotalDays, got.PresentDays, "registered %s", registered)
		assert.Equal(t, got.CycleStart.DaysThrough(asOf), got.TotalDays, "registered %s", registered)
		assert.Zero(t, got.MessCutDays)
		assert.Zero(t, got.WaitingApprovalDays)
	}
}

func TestCompute_RegisteredBeforeMonth_CycleStartsOnFirst(t *testing.T) {
	got := attendance.Compute(calendar.New(2026, time.August, 20), nil, oct(19))

	assert.Equal(t, oct(1), got.CycleStart)
	assert.Equal(t, oct(19), got.CycleEnd)
	assert.Equal(t, 19, got.TotalDays)
}

func TestCompute_RegisteredMidMonth_CycleStartsOnRegistration(t *testing.T) {
	got := attendance.Compute(oct(10), nil, oct(19))

	assert.Equal(t, oct(10), got.CycleStart)
	assert.Equal(t, 10, got.TotalDays)
	assert.Equal(t, 10, got.PresentDays)
}

func TestCompute_FutureRegistration_AllZero(t *testing.T) {
	got := attendance.Compute(oct(25), []attendance.Leave{{From: oct(1), To: oct(3), Approved: true}}, oct(19))

	assert.Zero(t, got.TotalDays)
	assert.Zero(t, got.PresentDays)
	assert.Zero(t, got.MessCutDays)
	assert.Zero(t, got.WaitingApprovalDays)
}

func TestCompute_MissingRegistration_UsesWholeMonth(t *testing.T) {
	got := attendance.Compute(calendar.Date{}, nil, oct(19))

	assert.Equal(t, oct(1), got.CycleStart)
	assert.Equal(t, 19, got.PresentDays)
}

// =============================================================================
// LEAVE CLIPPING
// =============================================================================

func TestCompute_LeaveOutsideCycle_ContributesNothing(t *testing.T) {
	// GIVEN: a leave ending the day before the cycle and one after asOf
	leaves := []attendance.Leave{
		{From: calendar.New(2026, time.September, 25), To: calendar.New(2026, time.September, 30), Approved: true},
		{From: oct(20), To: oct(22), Approved: false},
	}

	got := attendance.Compute(calendar.New(2026, time.January, 5), leaves, oct(19))

	assert.Zero(t, got.MessCutDays)
	assert.Zero(t, got.WaitingApprovalDays)
	assert.Equal(t, 19, got.PresentDays)
}

func TestCompute_LeaveStartingAtCycleStart_CountsFully(t *testing.T) {
	leaves := []attendance.Leave{{From: oct(1), To: oct(4), Approved: true}}

	got := attendance.Compute(calendar.New(2026, time.January, 5), leaves, oct(19))

	assert.Equal(t, 4, got.MessCutDays)
	assert.Equal(t, 15, got.PresentDays)
}

func TestCompute_LeaveBeforeMidMonthRegistration_IsClipped(t *testing.T) {
	// Registered Oct 10; leave Oct 8-12 overlaps the cycle for 3 days.
	leaves := []attendance.Leave{{From: oct(8), To: oct(12), Approved: true}}

	got := attendance.Compute(oct(10), leaves, oct(19))

	assert.Equal(t, 3, got.MessCutDays)
	assert.Equal(t, 7, got.PresentDays)
}

func TestCompute_LeaveSpanningAsOf_ClippedToToday(t *testing.T) {
	leaves := []attendance.Leave{{From: oct(17), To: oct(30), Approved: false}}

	got := attendance.Compute(calendar.New(2026, time.March, 1), leaves, oct(19))

	assert.Equal(t, 3, got.WaitingApprovalDays)
	assert.Equal(t, 16, got.PresentDays)
}

func TestCompute_PendingAndApprovedBothReducePresent(t *testing.T) {
	leaves := []attendance.Leave{
		{From: oct(2), To: oct(4), Approved: true},
		{From: oct(10), To: oct(11), Approved: false},
	}

	got := attendance.Compute(calendar.New(2026, time.March, 1), leaves, oct(19))

	assert.Equal(t, 3, got.MessCutDays)
	assert.Equal(t, 2, got.WaitingApprovalDays)
	assert.Equal(t, 14, got.PresentDays)
}

func TestCompute_OverlappingLeaves_PresentFlooredAtZero(t *testing.T) {
	leaves := []attendance.Leave{
		{From: oct(1), To: oct(5), Approved: true},
		{From: oct(1), To: oct(5), Approved: false},
	}

	got := attendance.Compute(oct(1), leaves, oct(5))

	assert.Equal(t, 5, got.TotalDays)
	assert.Zero(t, got.PresentDays)
}

// =============================================================================
// POLICY + PURITY
// =============================================================================

func TestPolicy_PendingCountsAsPresent(t *testing.T) {
	leaves := []attendance.Leave{
		{From: oct(2), To: oct(4), Approved: true},
		{From: oct(10), To: oct(11), Approved: false},
	}
	policy := attendance.Policy{PendingCountsAsPresent: true}

	got := policy.Compute(calendar.New(2026, time.March, 1), leaves, oct(19))

	assert.Equal(t, 2, got.WaitingApprovalDays)
	assert.Equal(t, 16, got.PresentDays)
}

func TestCompute_Idempotent(t *testing.T) {
	leaves := []attendance.Leave{{From: oct(3), To: oct(6), Approved: true}}

	first := attendance.Compute(oct(2), leaves, oct(19))
	second := attendance.Compute(oct(2), leaves, oct(19))

	assert.Equal(t, first, second)
	assert.Equal(t, oct(3), leaves[0].From, "input must not be mutated")
}
