// Package attendance computes a student's day counts for the current billing
// cycle. It performs no I/O.
package attendance

import "github.com/mamadbah2/hostel/internal/domain/calendar"

// Leave is a requested absence, inclusive on both ends.
type Leave struct {
	From     calendar.Date
	To       calendar.Date
	Approved bool
}

// Result holds the day counts of one billing cycle.
type Result struct {
	PresentDays         int           `json:"presentDays"`
	MessCutDays         int           `json:"messCutDays"`
	WaitingApprovalDays int           `json:"waitingApprovalDays"`
	TotalDays           int           `json:"totalDays"`
	CycleStart          calendar.Date `json:"cycleStart"`
	CycleEnd            calendar.Date `json:"cycleEnd"`
}

// Policy controls how pending leave days are billed. With the zero value,
// pending days are treated as absent until an admin acts on them.
type Policy struct {
	PendingCountsAsPresent bool
}

// Compute runs the default policy.
func Compute(registered calendar.Date, leaves []Leave, asOf calendar.Date) Result {
	return Policy{}.Compute(registered, leaves, asOf)
}

// Compute returns the day counts from the start of the cycle through asOf.
// The cycle is asOf's calendar month, except that a student who registered
// during that month starts on the registration day.
func (p Policy) Compute(registered calendar.Date, leaves []Leave, asOf calendar.Date) Result {
	cycleStart := asOf.FirstOfMonth()
	if !registered.IsZero() && registered.SameMonth(asOf) {
		cycleStart = calendar.Max(cycleStart, registered)
	}

	result := Result{CycleStart: cycleStart, CycleEnd: asOf}
	if registered.After(asOf) {
		return result
	}

	result.TotalDays = cycleStart.DaysThrough(asOf)

	for _, leave := range leaves {
		if leave.From.IsZero() || leave.To.IsZero() {
			continue
		}
		from := calendar.Max(leave.From, cycleStart)
		to := calendar.Min(leave.To, asOf)
		if from.After(to) {
			continue
		}

		days := from.DaysThrough(to)
		if leave.Approved {
			result.MessCutDays += days
		} else {
			result.WaitingApprovalDays += days
		}
	}

	absent := result.MessCutDays
	if !p.PendingCountsAsPresent {
		absent += result.WaitingApprovalDays
	}
	result.PresentDays = max(result.TotalDays-absent, 0)

	return result
}
