package pubsub

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/domain/service"
	"storefront/internal/errors"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// kafkaPublisher writes order events keyed by order ID so that one order's
// events land on one partition in order.
type kafkaPublisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewKafkaPublisher creates a synchronous writer acknowledged by all replicas.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (service.EventPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka publisher requires at least one broker")
	}
	if topic == "" {
		return nil, errors.New("kafka publisher requires a topic")
	}

	logger.Info("Kafka publisher initialized",
		slog.Any("brokers", brokers),
		slog.String("topic", topic),
	)

	return &kafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: false,
			BatchTimeout:           10 * time.Millisecond,
		},
		logger: logger,
	}, nil
}

// PublishOrderEvent writes the event and waits for the broker ack.
func (p *kafkaPublisher) PublishOrderEvent(ctx context.Context, event *service.OrderEvent) error {
	encoded, err := encodeEvent(event)
	if err != nil {
		return err
	}

	headers := make([]kafka.Header, 0, len(encoded.Attributes))
	for k, v := range encoded.Attributes {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(encoded.Key),
		Value:   encoded.Payload,
		Headers: headers,
		Time:    event.OccurredAt.UTC(),
	})
	if err != nil {
		return errors.Wrap(err, "write kafka message")
	}

	p.logger.Debug("[Kafka] Event published",
		slog.String("type", event.Type),
		slog.String("order_id", event.OrderID),
	)

	return nil
}

func (p *kafkaPublisher) Close() error {
	return errors.WithStack(p.writer.Close())
}
