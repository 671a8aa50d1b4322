package repository

import (
	"context"

	"ApexCore/internal/domain/models"
	"ApexCore/internal/domain/repository"
	pkgkafka "ApexCore/pkg/kafka"
)

// KafkaIntentSink implements IntentSink for Kafka. Intents are keyed by
// symbol so stops and targets land on the same partition as their entry.
type KafkaIntentSink struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaIntentSink creates a Kafka-backed intent sink.
func NewKafkaIntentSink(producer *pkgkafka.Producer, topic string) repository.IntentSink {
	return &KafkaIntentSink{producer: producer, topic: topic}
}

func (s *KafkaIntentSink) Publish(ctx context.Context, intent *models.TradeIntent) error {
	return s.producer.Publish(ctx, s.topic, []byte(intent.Symbol), intent)
}

func (s *KafkaIntentSink) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}
