package mongodb

import (
	// Go Internal Packages
	"context"
	"time"

	// Local Packages
	models "pdv-bridge/models"

	// External Packages
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LogRepository struct {
	client   *mongo.Client
	database string
}

func NewLogRepository(client *mongo.Client, database string) *LogRepository {
	return &LogRepository{client: client, database: database}
}

func (r *LogRepository) collection() *mongo.Collection {
	return r.client.Database(r.database).Collection("integration_logs")
}

func (r *LogRepository) Insert(ctx context.Context, entry *models.IntegrationLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = time.Now().UTC()
	_, err := r.collection().InsertOne(ctx, entry)
	return err
}

func (r *LogRepository) ListRecent(ctx context.Context, limit int64) ([]models.IntegrationLog, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(limit)
	cur, err := r.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var entries []models.IntegrationLog
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
