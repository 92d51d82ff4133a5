package models

import "time"

// IntegrationLog is the persisted audit record mirrored alongside the
// structured process logs.
type IntegrationLog struct {
	ID            string `json:"id" bson:"_id"`
	TransactionID string `json:"transactionId,omitempty" bson:"transaction_id,omitempty"`

	Level   string         `json:"level" bson:"level"`   // info, warning, error
	Source  string         `json:"source" bson:"source"` // terminal, gateway, system
	Action  string         `json:"action" bson:"action"` // auth, validate, send, cancel, retry, notification
	Message string         `json:"message" bson:"message"`
	Details map[string]any `json:"details,omitempty" bson:"details,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}
