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

const defaultProfile = "default"

type ConfigRepository struct {
	client   *mongo.Client
	database string
}

func NewConfigRepository(client *mongo.Client, database string) *ConfigRepository {
	return &ConfigRepository{client: client, database: database}
}

func (r *ConfigRepository) collection() *mongo.Collection {
	return r.client.Database(r.database).Collection("configurations")
}

// Active returns the default profile, or nil when none is configured.
func (r *ConfigRepository) Active(ctx context.Context) (*models.Configuration, error) {
	return r.GetByName(ctx, defaultProfile)
}

func (r *ConfigRepository) GetByName(ctx context.Context, name string) (*models.Configuration, error) {
	filter := bson.M{"name": name, "active": true}
	var cfg models.Configuration
	err := r.collection().FindOne(ctx, filter).Decode(&cfg)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Upsert replaces the profile with the same name; no history is kept.
func (r *ConfigRepository) Upsert(ctx context.Context, cfg *models.Configuration) error {
	if cfg.Name == "" {
		cfg.Name = defaultProfile
	}
	if cfg.GatewayCurrency == "" {
		cfg.GatewayCurrency = "643"
	}
	now := time.Now().UTC()

	existing, err := r.GetByName(ctx, cfg.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		cfg.ID = existing.ID
		cfg.CreatedAt = existing.CreatedAt
	} else {
		cfg.ID = uuid.NewString()
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now

	opts := options.Replace().SetUpsert(true)
	_, err = r.collection().ReplaceOne(ctx, bson.M{"name": cfg.Name}, cfg, opts)
	return err
}
