package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/hostel/internal/domain/models"
	"github.com/mamadbah2/hostel/internal/repository"
)

// AppendComplaint pushes a complaint onto the student document.
func (r *MongoDBRepository) AppendComplaint(ctx context.Context, hostelID string, complaint models.Complaint) error {
	return r.updateStudent(ctx, hostelID, bson.M{
		"$push": bson.M{"complaints": complaint},
		"$set":  bson.M{"updatedAt": r.now()},
	})
}

// SetComplaintStatus updates one embedded complaint through the positional operator.
func (r *MongoDBRepository) SetComplaintStatus(ctx context.Context, hostelID string, complaintID primitive.ObjectID, status models.ComplaintStatus) error {
	res, err := r.collection(studentsCollection).UpdateOne(ctx,
		bson.M{"hostelid": hostelID, "complaints._id": complaintID},
		bson.M{"$set": bson.M{"complaints.$.status": status, "updatedAt": r.now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update complaint %s: %w", complaintID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return r.complaintMiss(ctx, hostelID)
	}
	return nil
}

// DeleteComplaint pulls one complaint from the student document.
func (r *MongoDBRepository) DeleteComplaint(ctx context.Context, hostelID string, complaintID primitive.ObjectID) error {
	res, err := r.collection(studentsCollection).UpdateOne(ctx,
		bson.M{"hostelid": hostelID, "complaints._id": complaintID},
		bson.M{
			"$pull": bson.M{"complaints": bson.M{"_id": complaintID}},
			"$set":  bson.M{"updatedAt": r.now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to delete complaint %s: %w", complaintID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return r.complaintMiss(ctx, hostelID)
	}
	return nil
}

// ListComplaints returns students that filed at least one complaint.
func (r *MongoDBRepository) ListComplaints(ctx context.Context) ([]models.StudentComplaints, error) {
	opts := options.Find().
		SetProjection(bson.M{"hostelid": 1, "name": 1, "program": 1, "complaints": 1}).
		SetSort(bson.D{{Key: "hostelid", Value: 1}})
	cursor, err := r.collection(studentsCollection).Find(ctx, bson.M{"complaints.0": bson.M{"$exists": true}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query complaints: %w", err)
	}

	var out []models.StudentComplaints
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode complaints: %w", err)
	}
	return out, nil
}

// AppendSuggestion pushes a suggestion onto the student document.
func (r *MongoDBRepository) AppendSuggestion(ctx context.Context, hostelID string, suggestion models.Suggestion) error {
	return r.updateStudent(ctx, hostelID, bson.M{
		"$push": bson.M{"suggestions": suggestion},
		"$set":  bson.M{"updatedAt": r.now()},
	})
}

// ListSuggestions returns students that left at least one suggestion.
func (r *MongoDBRepository) ListSuggestions(ctx context.Context) ([]models.StudentSuggestions, error) {
	opts := options.Find().
		SetProjection(bson.M{"hostelid": 1, "name": 1, "suggestions": 1}).
		SetSort(bson.D{{Key: "hostelid", Value: 1}})
	cursor, err := r.collection(studentsCollection).Find(ctx, bson.M{"suggestions.0": bson.M{"$exists": true}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestions: %w", err)
	}

	var out []models.StudentSuggestions
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode suggestions: %w", err)
	}
	return out, nil
}

func (r *MongoDBRepository) complaintMiss(ctx context.Context, hostelID string) error {
	count, err := r.collection(studentsCollection).CountDocuments(ctx, bson.M{"hostelid": hostelID})
	if err != nil {
		return fmt.Errorf("failed to look up student %s: %w", hostelID, err)
	}
	if count == 0 {
		return repository.ErrStudentNotFound
	}
	return repository.ErrComplaintNotFound
}
