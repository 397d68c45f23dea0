package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/hostel/internal/domain/models"
	"github.com/mamadbah2/hostel/internal/repository"
)

// CreateStudent inserts a new student document.
func (r *MongoDBRepository) CreateStudent(ctx context.Context, student *models.Student) error {
	now := r.now()
	if student.ID.IsZero() {
		student.ID = primitive.NewObjectID()
	}
	if student.Leaves == nil {
		student.Leaves = []models.Leave{}
	}
	if student.BillingHistory == nil {
		student.BillingHistory = []models.BillingEntry{}
	}
	if student.Complaints == nil {
		student.Complaints = []models.Complaint{}
	}
	if student.Suggestions == nil {
		student.Suggestions = []models.Suggestion{}
	}
	student.CreatedAt = now
	student.UpdatedAt = now

	if _, err := r.collection(studentsCollection).InsertOne(ctx, student); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert student: %w", err)
	}
	return nil
}

// FindStudent loads a student by hostel id.
func (r *MongoDBRepository) FindStudent(ctx context.Context, hostelID string) (*models.Student, error) {
	var student models.Student
	err := r.collection(studentsCollection).FindOne(ctx, bson.M{"hostelid": hostelID}).Decode(&student)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find student %s: %w", hostelID, err)
	}
	return &student, nil
}

// ListBillableStudents returns all non-admin students.
func (r *MongoDBRepository) ListBillableStudents(ctx context.Context) ([]models.Student, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "hostelid", Value: 1}}).
		SetProjection(bson.M{"password": 0})

	cursor, err := r.collection(studentsCollection).Find(ctx, bson.M{"role": bson.M{"$ne": models.RoleAdmin}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	var students []models.Student
	if err := cursor.All(ctx, &students); err != nil {
		return nil, fmt.Errorf("failed to decode students: %w", err)
	}
	return students, nil
}

// ApproveStudent marks a registration as approved.
func (r *MongoDBRepository) ApproveStudent(ctx context.Context, hostelID string) error {
	return r.updateStudent(ctx, hostelID, bson.M{"$set": bson.M{"isApproved": true, "updatedAt": r.now()}})
}

// AppendLeave pushes a leave onto the student's embedded list.
func (r *MongoDBRepository) AppendLeave(ctx context.Context, hostelID string, leave models.Leave) error {
	return r.updateStudent(ctx, hostelID, bson.M{
		"$push": bson.M{"leaves": leave},
		"$set":  bson.M{"updatedAt": r.now()},
	})
}

// ApproveLeave flips the approved flag of the embedded leave with leaveID.
func (r *MongoDBRepository) ApproveLeave(ctx context.Context, leaveID primitive.ObjectID) error {
	res, err := r.collection(studentsCollection).UpdateOne(ctx,
		bson.M{"leaves._id": leaveID},
		bson.M{"$set": bson.M{"leaves.$.approved": true, "updatedAt": r.now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to approve leave %s: %w", leaveID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrLeaveNotFound
	}
	return nil
}

// PendingLeaves flattens every unapproved leave with its owner, oldest
// application first.
func (r *MongoDBRepository) PendingLeaves(ctx context.Context) ([]models.PendingLeave, error) {
	opts := options.Find().SetProjection(bson.M{"hostelid": 1, "name": 1, "leaves": 1})
	cursor, err := r.collection(studentsCollection).Find(ctx, bson.M{"leaves.approved": false}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending leaves: %w", err)
	}

	var students []models.Student
	if err := cursor.All(ctx, &students); err != nil {
		return nil, fmt.Errorf("failed to decode pending leaves: %w", err)
	}

	var pending []models.PendingLeave
	for _, student := range students {
		for _, leave := range student.Leaves {
			if leave.Approved {
				continue
			}
			pending = append(pending, models.PendingLeave{Leave: leave, HostelID: student.HostelID, Name: student.Name})
		}
	}
	models.SortPendingLeaves(pending)
	return pending, nil
}

// AppendBillingEntry pushes the entry and raises the refresh flag in one update.
func (r *MongoDBRepository) AppendBillingEntry(ctx context.Context, hostelID string, entry models.BillingEntry) error {
	return r.updateStudent(ctx, hostelID, bson.M{
		"$push": bson.M{"billingHistory": entry},
		"$set":  bson.M{"needsBillRefresh": true, "updatedAt": r.now()},
	})
}

// BillFlag reads needsBillRefresh without changing it.
func (r *MongoDBRepository) BillFlag(ctx context.Context, hostelID string) (bool, error) {
	var doc struct {
		NeedsBillRefresh bool `bson:"needsBillRefresh"`
	}
	opts := options.FindOne().SetProjection(bson.M{"needsBillRefresh": 1})
	err := r.collection(studentsCollection).FindOne(ctx, bson.M{"hostelid": hostelID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, repository.ErrStudentNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to read bill flag for %s: %w", hostelID, err)
	}
	return doc.NeedsBillRefresh, nil
}

// ConsumeBillFlag clears a raised flag with findOneAndUpdate so only one
// caller can observe it.
func (r *MongoDBRepository) ConsumeBillFlag(ctx context.Context, hostelID string) (*models.Student, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.Before).
		SetProjection(bson.M{"password": 0})

	var student models.Student
	err := r.collection(studentsCollection).FindOneAndUpdate(ctx,
		bson.M{"hostelid": hostelID, "needsBillRefresh": true},
		bson.M{"$set": bson.M{"needsBillRefresh": false}},
		opts,
	).Decode(&student)
	if err == nil {
		return &student, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to consume bill flag for %s: %w", hostelID, err)
	}

	count, err := r.collection(studentsCollection).CountDocuments(ctx, bson.M{"hostelid": hostelID})
	if err != nil {
		return nil, fmt.Errorf("failed to look up student %s: %w", hostelID, err)
	}
	if count == 0 {
		return nil, repository.ErrStudentNotFound
	}
	return nil, repository.ErrNoNewBill
}

func (r *MongoDBRepository) updateStudent(ctx context.Context, hostelID string, update bson.M) error {
	res, err := r.collection(studentsCollection).UpdateOne(ctx, bson.M{"hostelid": hostelID}, update)
	if err != nil {
		return fmt.Errorf("failed to update student %s: %w", hostelID, err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrStudentNotFound
	}
	return nil
}
