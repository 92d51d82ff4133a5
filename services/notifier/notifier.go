// Package notifier decides whether an engine event qualifies for
// outbound notification. Delivery itself is an external collaborator;
// qualifying events go into a bounded channel drained by a background
// publisher, so callers never block on delivery semantics.
package notifier

import (
	// Go Internal Packages
	"context"
	"time"

	// Local Packages
	models "pdv-bridge/models"

	// External Packages
	"go.uber.org/zap"
)

type SettingsStore interface {
	GetSettings(ctx context.Context) (*models.NotificationSettings, error)
	InsertHistory(ctx context.Context, record *models.NotificationHistory) error
}

type TxLookup interface {
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
}

// Sink publishes a qualifying event for external delivery workers.
type Sink interface {
	Publish(ctx context.Context, event models.NotificationEvent) error
}

type Notifier struct {
	settings SettingsStore
	txns     TxLookup
	sink     Sink // nil means log-only
	logger   *zap.Logger
	events   chan models.NotificationEvent
}

func NewNotifier(settings SettingsStore, txns TxLookup, sink Sink, bufferSize int, logger *zap.Logger) *Notifier {
	return &Notifier{
		settings: settings,
		txns:     txns,
		sink:     sink,
		logger:   logger,
		events:   make(chan models.NotificationEvent, bufferSize),
	}
}

// Notify checks the configured flags and, when the event qualifies,
// records it and hands it to the publisher. It never blocks: with the
// channel full the event is dropped with a warning.
func (n *Notifier) Notify(event, message, txnID string, details map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	settings, err := n.settings.GetSettings(ctx)
	if err != nil {
		n.logger.Error("failed to load notification settings", zap.Error(err))
		return
	}
	if !settings.Enabled(event) {
		return
	}

	payload := models.NotificationEvent{
		Event:         event,
		TransactionID: txnID,
		Message:       message,
		Timestamp:     time.Now().UTC(),
		Details:       details,
	}
	if txnID != "" {
		if txn, err := n.txns.GetByID(ctx, txnID); err == nil && txn != nil {
			payload.SaleCode = txn.SaleCode
		}
	}

	status := "queued"
	errMessage := ""
	select {
	case n.events <- payload:
	default:
		status = "dropped"
		errMessage = "notification buffer full"
		n.logger.Warn("notification dropped, buffer full", zap.String("event", event))
	}

	record := &models.NotificationHistory{
		TransactionID: txnID,
		Event:         event,
		Message:       message,
		Payload:       map[string]any{"saleCode": payload.SaleCode, "details": details},
		Status:        status,
		ErrorMessage:  errMessage,
	}
	if err := n.settings.InsertHistory(ctx, record); err != nil {
		n.logger.Error("failed to record notification history", zap.Error(err))
	}
}

// Run drains the channel until ctx is cancelled. Publish failures are
// logged and the event discarded; the engine never depends on delivery.
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-n.events:
			if n.sink == nil {
				n.logger.Info("notification event",
					zap.String("event", event.Event), zap.String("sale_code", event.SaleCode))
				continue
			}
			if err := n.sink.Publish(ctx, event); err != nil {
				n.logger.Error("failed to publish notification",
					zap.String("event", event.Event), zap.Error(err))
			}
		}
	}
}
