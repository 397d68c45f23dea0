package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/hostel/internal/domain/models"
	"github.com/mamadbah2/hostel/internal/repository"
)

// CreateExpense saves a monthly summary. The unique monthYear index turns a
// second insert for the same month into repository.ErrDuplicateKey.
func (r *MongoDBRepository) CreateExpense(ctx context.Context, record *models.ExpenseRecord) error {
	record.CreatedAt = r.now()
	res, err := r.collection(expensesCollection).InsertOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert expense record: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		record.ID = id
	}
	r.logger.Info("expense record inserted", zap.String("month_year", record.MonthYear))
	return nil
}

func (r *MongoDBRepository) FindExpense(ctx context.Context, monthYear string) (*models.ExpenseRecord, error) {
	var record models.ExpenseRecord
	err := r.collection(expensesCollection).FindOne(ctx, bson.M{"monthYear": monthYear}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrExpenseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find expense record %s: %w", monthYear, err)
	}
	return &record, nil
}

func (r *MongoDBRepository) ListExpenses(ctx context.Context) ([]models.ExpenseRecord, error) {
	cursor, err := r.collection(expensesCollection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list expense records: %w", err)
	}
	var records []models.ExpenseRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode expense records: %w", err)
	}
	return records, nil
}

// CreatePayment stores a payment confirmation.
func (r *MongoDBRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	if _, err := r.collection(paymentsCollection).InsertOne(ctx, payment); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (r *MongoDBRepository) ListPayments(ctx context.Context, hostelID string) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "paymentDate", Value: -1}})
	cursor, err := r.collection(paymentsCollection).Find(ctx, bson.M{"hostelid": hostelID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}
	return payments, nil
}

// CreateNotification stores a broadcast.
func (r *MongoDBRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	if _, err := r.collection(notificationsCollection).InsertOne(ctx, notification); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns broadcasts newest first.
func (r *MongoDBRepository) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	cursor, err := r.collection(notificationsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

// DeleteNotification removes a broadcast by id.
func (r *MongoDBRepository) DeleteNotification(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection(notificationsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete notification %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotificationNotFound
	}
	return nil
}
