package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/hostel/internal/domain/models"
	"github.com/mamadbah2/hostel/internal/repository"
)

const (
	studentsCollection      = "users"
	expensesCollection      = "expenses"
	paymentsCollection      = "payments"
	notificationsCollection = "notifications"
)

// MongoDBRepository implements repository.Store on MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
	now    func() time.Time
}

var _ repository.Store = (*MongoDBRepository)(nil)

// NewMongoDBRepository connects, pings and ensures the indexes that keep
// hostel ids, billing months and completed payments unique.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	r := &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
		now:    time.Now,
	}

	if err := r.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return r, nil
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	indexes := map[string]mongo.IndexModel{
		studentsCollection: {
			Keys:    bson.D{{Key: "hostelid", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		expensesCollection: {
			Keys:    bson.D{{Key: "monthYear", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		paymentsCollection: {
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "billingCycle", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": models.PaymentCompleted}),
		},
	}

	for coll, model := range indexes {
		name, err := r.db.Collection(coll).Indexes().CreateOne(ctx, model)
		if err != nil {
			return fmt.Errorf("create index on %s: %w", coll, err)
		}
		r.logger.Debug("index ensured", zap.String("collection", coll), zap.String("index", name))
	}
	return nil
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.db.Collection(name)
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
