package models

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/hostel/internal/attendance"
	"github.com/mamadbah2/hostel/internal/domain/calendar"
)

// Role distinguishes residents from hostel administrators.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Student is a hostel resident document. Leaves and billing history are
// embedded so every mutation stays a single-document update.
type Student struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	HostelID         string             `bson:"hostelid" json:"hostelId"`
	Name             string             `bson:"name" json:"name"`
	Department       string             `bson:"department" json:"department"`
	Program          string             `bson:"program" json:"program"`
	Semester         int                `bson:"semester" json:"semester"`
	PasswordHash     string             `bson:"password" json:"-"`
	Role             Role               `bson:"role" json:"role"`
	RegistrationDate time.Time          `bson:"registrationDate" json:"registrationDate"`
	IsApproved       bool               `bson:"isApproved" json:"isApproved"`
	Leaves           []Leave            `bson:"leaves" json:"leaves"`
	BillingHistory   []BillingEntry     `bson:"billingHistory" json:"billingHistory"`
	NeedsBillRefresh bool               `bson:"needsBillRefresh" json:"needsBillRefresh"`
	Complaints       []Complaint        `bson:"complaints" json:"complaints"`
	Suggestions      []Suggestion       `bson:"suggestions" json:"suggestions"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsAdmin reports whether the account administers the hostel.
func (s Student) IsAdmin() bool { return s.Role == RoleAdmin }

// AttendanceLeaves converts the embedded leaves for the attendance calculator.
func (s Student) AttendanceLeaves() []attendance.Leave {
	out := make([]attendance.Leave, 0, len(s.Leaves))
	for _, l := range s.Leaves {
		out = append(out, attendance.Leave{
			From:     calendar.Of(l.From),
			To:       calendar.Of(l.To),
			Approved: l.Approved,
		})
	}
	return out
}

// Leave is a mess cut request. Once approved it is never changed.
type Leave struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	From      time.Time          `bson:"from" json:"from"`
	To        time.Time          `bson:"to" json:"to"`
	Approved  bool               `bson:"approved" json:"approved"`
	AppliedOn time.Time          `bson:"appliedOn" json:"appliedOn"`
}

// PendingLeave is a leave awaiting approval, joined with its owner.
type PendingLeave struct {
	Leave
	HostelID string `json:"hostelId"`
	Name     string `json:"name"`
}

// BillingEntry is one monthly bill line appended by the billing engine.
type BillingEntry struct {
	Date         time.Time `bson:"date" json:"date"`
	TotalExpense float64   `bson:"totalExpense" json:"totalExpense"`
	StudentShare float64   `bson:"studentShare" json:"studentShare"`
	PresentDays  int       `bson:"presentDays" json:"presentDays"`
	RatePerDay   float64   `bson:"ratePerDay" json:"ratePerDay"`
}

// SortPendingLeaves orders the approval queue oldest application first.
func SortPendingLeaves(leaves []PendingLeave) {
	sort.SliceStable(leaves, func(i, j int) bool {
		return leaves[i].AppliedOn.Before(leaves[j].AppliedOn)
	})
}

// ComplaintStatus tracks an administrator's handling of a complaint.
type ComplaintStatus string

const (
	ComplaintPending  ComplaintStatus = "Pending"
	ComplaintResolved ComplaintStatus = "Resolved"
	ComplaintRejected ComplaintStatus = "Rejected"
)

// ParseComplaintStatus matches s case-insensitively against the known statuses.
func ParseComplaintStatus(s string) (ComplaintStatus, bool) {
	for _, status := range []ComplaintStatus{ComplaintPending, ComplaintResolved, ComplaintRejected} {
		if strings.EqualFold(strings.TrimSpace(s), string(status)) {
			return status, true
		}
	}
	return "", false
}

// Complaint is a grievance filed by a resident.
type Complaint struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Text   string             `bson:"text" json:"text"`
	Date   time.Time          `bson:"date" json:"date"`
	Status ComplaintStatus    `bson:"status" json:"status"`
}

// Suggestion is free-form feedback; it has no workflow.
type Suggestion struct {
	ID   primitive.ObjectID `bson:"_id" json:"id"`
	Text string             `bson:"text" json:"text"`
	Date time.Time          `bson:"date" json:"date"`
}

// StudentComplaints groups one resident's complaints for the admin view.
type StudentComplaints struct {
	HostelID   string      `bson:"hostelid" json:"hostelId"`
	Name       string      `bson:"name" json:"name"`
	Program    string      `bson:"program" json:"program"`
	Complaints []Complaint `bson:"complaints" json:"complaints"`
}

// StudentSuggestions groups one resident's suggestions for the admin view.
type StudentSuggestions struct {
	HostelID    string       `bson:"hostelid" json:"hostelId"`
	Name        string       `bson:"name" json:"name"`
	Suggestions []Suggestion `bson:"suggestions" json:"suggestions"`
}
