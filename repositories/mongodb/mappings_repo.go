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

type MappingRepository struct {
	client   *mongo.Client
	database string
}

func NewMappingRepository(client *mongo.Client, database string) *MappingRepository {
	return &MappingRepository{client: client, database: database}
}

func (r *MappingRepository) collection() *mongo.Collection {
	return r.client.Database(r.database).Collection("field_mappings")
}

// Active returns the active rules for an entity scope, ordered by target
// field so transformation output is deterministic.
func (r *MappingRepository) Active(ctx context.Context, scope models.EntityScope) ([]models.FieldMapping, error) {
	filter := bson.M{"scope": scope, "active": true}
	opts := options.Find().SetSort(bson.M{"target_field": 1})
	cur, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var rules []models.FieldMapping
	if err := cur.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *MappingRepository) List(ctx context.Context, scope models.EntityScope) ([]models.FieldMapping, error) {
	filter := bson.M{}
	if scope != "" {
		filter["scope"] = scope
	}
	opts := options.Find().SetSort(bson.M{"target_field": 1})
	cur, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var rules []models.FieldMapping
	if err := cur.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *MappingRepository) Get(ctx context.Context, id string) (*models.FieldMapping, error) {
	var rule models.FieldMapping
	err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&rule)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *MappingRepository) Create(ctx context.Context, rule *models.FieldMapping) error {
	now := time.Now().UTC()
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	rule.Kind = models.ParseMappingKind(string(rule.Kind))
	rule.CreatedAt = now
	rule.UpdatedAt = now
	_, err := r.collection().InsertOne(ctx, rule)
	return err
}

func (r *MappingRepository) Update(ctx context.Context, id string, rule *models.FieldMapping) error {
	rule.ID = id
	rule.Kind = models.ParseMappingKind(string(rule.Kind))
	rule.UpdatedAt = time.Now().UTC()
	opts := options.Replace().SetUpsert(false)
	_, err := r.collection().ReplaceOne(ctx, bson.M{"_id": id}, rule, opts)
	return err
}

func (r *MappingRepository) Delete(ctx context.Context, id string) error {
	_, err := r.collection().DeleteOne(ctx, bson.M{"_id": id})
	return err
}
