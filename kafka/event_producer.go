package kafka

import (
	// Go Internal Packages
	"context"
	"encoding/json"

	// Local Packages
	models "pdv-bridge/models"

	// External Packages
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kprom"
	"go.uber.org/zap"
)

type ProducerConfig struct {
	Brokers []string
	Name    string
	Topic   string
}

// Producer publishes notification events for external delivery workers
// (webhook/email dispatch lives downstream of this topic).
type Producer struct {
	Client *kgo.Client
	Config *ProducerConfig
	Logger *zap.Logger
}

func NewEventProducer(conf *ProducerConfig, metrics *kprom.Metrics, logger *zap.Logger) (*Producer, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(conf.Brokers...), // Connects to Kafka brokers
		kgo.ClientID(conf.Name),
		kgo.DefaultProduceTopic(conf.Topic),
		kgo.WithHooks(metrics), // Attaches monitoring hooks
	}

	client, err := kgo.NewClient(opts...)
	if err != nil || client == nil {
		return nil, err
	}

	return &Producer{Client: client, Config: conf, Logger: logger}, nil
}

// Publish produces the event synchronously, keyed by event name so
// consumers see per-event ordering.
func (p *Producer) Publish(ctx context.Context, event models.NotificationEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	record := &kgo.Record{
		Key:   []byte(event.Event),
		Value: value,
		Topic: p.Config.Topic,
	}
	if err := p.Client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return err
	}

	p.Logger.Info("notification event published",
		zap.String("event", event.Event), zap.String("topic", p.Config.Topic))
	return nil
}

func (p *Producer) Close() {
	p.Client.Close()
}
