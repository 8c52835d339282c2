package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/credimart/lending-service/internal/domain/port"
	pkgkafka "github.com/credimart/lending-service/pkg/kafka"
)

// KafkaDisbursementQueue implements port.DisbursementQueue on a Kafka topic.
// Jobs are keyed by loan ID so redeliveries of the same loan stay in order.
type KafkaDisbursementQueue struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaDisbursementQueue creates a queue writing to the given topic.
func NewKafkaDisbursementQueue(producer *pkgkafka.Producer, topic string) *KafkaDisbursementQueue {
	return &KafkaDisbursementQueue{producer: producer, topic: topic}
}

// Enqueue places a disbursement job on the durable queue.
func (q *KafkaDisbursementQueue) Enqueue(ctx context.Context, job port.DisbursementJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal disbursement job: %w", err)
	}
	if err := q.producer.Publish(ctx, q.topic, pkgkafka.Message{
		Key:   []byte(job.LoanID),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("enqueue disbursement job: %w", err)
	}
	return nil
}
