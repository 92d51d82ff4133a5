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

type NotificationRepository struct {
	client   *mongo.Client
	database string
}

func NewNotificationRepository(client *mongo.Client, database string) *NotificationRepository {
	return &NotificationRepository{client: client, database: database}
}

func (r *NotificationRepository) settings() *mongo.Collection {
	return r.client.Database(r.database).Collection("notification_settings")
}

func (r *NotificationRepository) history() *mongo.Collection {
	return r.client.Database(r.database).Collection("notification_history")
}

// GetSettings returns the stored flags. With nothing stored, only
// retry-exhausted notifications are on.
func (r *NotificationRepository) GetSettings(ctx context.Context) (*models.NotificationSettings, error) {
	var settings models.NotificationSettings
	err := r.settings().FindOne(ctx, bson.M{}).Decode(&settings)
	if err == mongo.ErrNoDocuments {
		return &models.NotificationSettings{NotifyOnRetryExhausted: true}, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *NotificationRepository) UpsertSettings(ctx context.Context, settings *models.NotificationSettings) error {
	now := time.Now().UTC()
	if settings.ID == "" {
		settings.ID = uuid.NewString()
		settings.CreatedAt = now
	}
	settings.UpdatedAt = now
	// Settings are a singleton document.
	opts := options.Replace().SetUpsert(true)
	_, err := r.settings().ReplaceOne(ctx, bson.M{}, settings, opts)
	return err
}

func (r *NotificationRepository) InsertHistory(ctx context.Context, record *models.NotificationHistory) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = time.Now().UTC()
	_, err := r.history().InsertOne(ctx, record)
	return err
}

func (r *NotificationRepository) ListHistory(ctx context.Context, limit int64) ([]models.NotificationHistory, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(limit)
	cur, err := r.history().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var records []models.NotificationHistory
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
