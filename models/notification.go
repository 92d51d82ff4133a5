package models

import "time"

// Notification events the engine can decide to emit. Delivery itself
// (webhook/email dispatch) is an external collaborator.
const (
	EventRetryExhausted = "retry_exhausted"
	EventGatewayError   = "gateway_error"
	EventTerminalError  = "terminal_error"
)

type NotificationSettings struct {
	ID string `json:"id" bson:"_id"`

	NotifyOnRetryExhausted bool `json:"notifyOnRetryExhausted" bson:"notify_on_retry_exhausted"`
	NotifyOnGatewayError   bool `json:"notifyOnGatewayError" bson:"notify_on_gateway_error"`
	NotifyOnTerminalError  bool `json:"notifyOnTerminalError" bson:"notify_on_terminal_error"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Enabled reports whether the given event qualifies for notification.
func (s NotificationSettings) Enabled(event string) bool {
	switch event {
	case EventRetryExhausted:
		return s.NotifyOnRetryExhausted
	case EventGatewayError:
		return s.NotifyOnGatewayError
	case EventTerminalError:
		return s.NotifyOnTerminalError
	}
	return false
}

// NotificationEvent is the payload handed to the outbound sink.
type NotificationEvent struct {
	Event         string         `json:"event"`
	TransactionID string         `json:"transactionId,omitempty"`
	SaleCode      string         `json:"saleCode,omitempty"`
	Message       string         `json:"message"`
	Timestamp     time.Time      `json:"timestamp"`
	Details       map[string]any `json:"details,omitempty"`
}

type NotificationHistory struct {
	ID            string `json:"id" bson:"_id"`
	TransactionID string `json:"transactionId,omitempty" bson:"transaction_id,omitempty"`

	Event   string         `json:"event" bson:"event"`
	Message string         `json:"message" bson:"message"`
	Payload map[string]any `json:"payload,omitempty" bson:"payload,omitempty"`

	Status       string `json:"status" bson:"status"` // queued, dropped
	ErrorMessage string `json:"errorMessage,omitempty" bson:"error_message,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}
