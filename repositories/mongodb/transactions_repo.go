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

type TxRepository struct {
	client   *mongo.Client
	database string
}

func NewTxRepository(client *mongo.Client, database string) *TxRepository {
	return &TxRepository{client: client, database: database}
}

func (r *TxRepository) transactions() *mongo.Collection {
	return r.client.Database(r.database).Collection("transactions")
}

func (r *TxRepository) lineItems() *mongo.Collection {
	return r.client.Database(r.database).Collection("line_items")
}

func (r *TxRepository) payments() *mongo.Collection {
	return r.client.Database(r.database).Collection("payments")
}

func (r *TxRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.transactions().FindOne(ctx, bson.M{"_id": id}).Decode(&txn)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// GetBySaleCode looks a transaction up by its natural key.
func (r *TxRepository) GetBySaleCode(ctx context.Context, companyCode, saleCode string) (*models.Transaction, error) {
	filter := bson.M{"company_code": companyCode, "sale_code": saleCode}
	var txn models.Transaction
	err := r.transactions().FindOne(ctx, filter).Decode(&txn)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *TxRepository) Create(ctx context.Context, txn *models.Transaction) error {
	now := time.Now().UTC()
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	txn.CreatedAt = now
	txn.UpdatedAt = now
	_, err := r.transactions().InsertOne(ctx, txn)
	return err
}

// Update applies a partial field update; last write wins.
func (r *TxRepository) Update(ctx context.Context, id string, updates map[string]any) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range updates {
		set[k] = v
	}
	_, err := r.transactions().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

func (r *TxRepository) ListRecent(ctx context.Context, limit int64) ([]models.Transaction, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(limit)
	cur, err := r.transactions().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var txns []models.Transaction
	if err := cur.All(ctx, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// ReplaceLineItems deletes every line item of the transaction and inserts
// the new set. Re-validation replaces items wholesale, never patches.
func (r *TxRepository) ReplaceLineItems(ctx context.Context, txnID string, items []models.LineItem) error {
	if _, err := r.lineItems().DeleteMany(ctx, bson.M{"transaction_id": txnID}); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(items))
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		items[i].TransactionID = txnID
		items[i].CreatedAt = now
		docs[i] = items[i]
	}
	_, err := r.lineItems().InsertMany(ctx, docs)
	return err
}

func (r *TxRepository) ListLineItems(ctx context.Context, txnID string) ([]models.LineItem, error) {
	opts := options.Find().SetSort(bson.M{"sequence": 1})
	cur, err := r.lineItems().Find(ctx, bson.M{"transaction_id": txnID}, opts)
	if err != nil {
		return nil, err
	}
	var items []models.LineItem
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *TxRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	payment.CreatedAt = time.Now().UTC()
	_, err := r.payments().InsertOne(ctx, payment)
	return err
}

func (r *TxRepository) ListPayments(ctx context.Context, txnID string) ([]models.Payment, error) {
	cur, err := r.payments().Find(ctx, bson.M{"transaction_id": txnID})
	if err != nil {
		return nil, err
	}
	var payments []models.Payment
	if err := cur.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}
