package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentStatus mirrors the gateway outcome.
type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
	PaymentPending   PaymentStatus = "Pending"
)

// Payment records a confirmed bill payment. Only one Completed payment may
// exist per student and billing cycle.
type Payment struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID            primitive.ObjectID `bson:"userId" json:"userId"`
	HostelID          string             `bson:"hostelid" json:"hostelId"`
	BillingCycle      string             `bson:"billingCycle" json:"billingCycle"`
	Amount            float64            `bson:"amount" json:"amount"`
	Status            PaymentStatus      `bson:"status" json:"status"`
	PresentDays       int                `bson:"presentDays" json:"presentDays"`
	RazorpayPaymentID string             `bson:"razorpayPaymentId,omitempty" json:"razorpayPaymentId,omitempty"`
	RazorpayOrderID   string             `bson:"razorpayOrderId,omitempty" json:"razorpayOrderId,omitempty"`
	PaymentDate       time.Time          `bson:"paymentDate" json:"paymentDate"`
}
