package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExpenseRecord is the hostel-wide summary of one generated bill. At most one
// exists per MonthYear.
type ExpenseRecord struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Date             time.Time          `bson:"date" json:"date"`
	MonthYear        string             `bson:"monthYear" json:"monthYear"`
	KitchenRent      float64            `bson:"kitchenRent" json:"kitchenRent"`
	KitchenExpense   float64            `bson:"kitchenExpense" json:"kitchenExpense"`
	StaffSalary      float64            `bson:"staffSalary" json:"staffSalary"`
	TotalExpense     float64            `bson:"totalExpense" json:"totalExpense"`
	RatePerDay       float64            `bson:"ratePerDay" json:"ratePerDay"`
	UsersBilledCount int                `bson:"usersBilledCount" json:"usersBilledCount"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}
