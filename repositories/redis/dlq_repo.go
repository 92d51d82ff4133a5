package redis

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"fmt"
	"time"

	// Local Packages
	models "pdv-bridge/models"

	// External Packages
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DeadLetterQueue parks sales whose gateway delivery retries are
// exhausted, keyed as "sale:{companyCode}:{saleCode}". Parked records are
// an operator artifact; nothing in the engine resurrects them.
type DeadLetterQueue struct {
	client *redis.Client
	logger *zap.Logger
}

type deadLetterRecord struct {
	TransactionID string    `json:"transactionId"`
	CompanyCode   string    `json:"companyCode"`
	SaleCode      string    `json:"saleCode"`
	GatewayTxnID  string    `json:"gatewayTxnId"`
	ErrorMessage  string    `json:"errorMessage"`
	RetryCount    int       `json:"retryCount"`
	FailedAt      time.Time `json:"failedAt"`
}

func NewDeadLetterQueue(client *redis.Client, logger *zap.Logger) *DeadLetterQueue {
	return &DeadLetterQueue{client: client, logger: logger}
}

// Park stores the terminally failed sale. Failures are logged, not
// propagated: parking is best effort and must not mask the retry outcome.
func (r *DeadLetterQueue) Park(ctx context.Context, txn *models.Transaction, errMessage string) {
	record := deadLetterRecord{
		TransactionID: txn.ID,
		CompanyCode:   txn.CompanyCode,
		SaleCode:      txn.SaleCode,
		GatewayTxnID:  txn.GatewayTxnID,
		ErrorMessage:  errMessage,
		RetryCount:    txn.RetryCount,
		FailedAt:      time.Now().UTC(),
	}

	jsonData, err := json.Marshal(record)
	if err != nil {
		r.logger.Error("failed to marshal dead letter record", zap.Error(err))
		return
	}

	key := fmt.Sprintf("sale:%s:%s", txn.CompanyCode, txn.SaleCode)
	if err := r.client.Set(ctx, key, jsonData, 0).Err(); err != nil {
		r.logger.Error("failed to park failed sale", zap.String("key", key), zap.Error(err))
		return
	}

	r.logger.Info("parked failed sale", zap.String("key", key), zap.Int("retry_count", txn.RetryCount))
}
