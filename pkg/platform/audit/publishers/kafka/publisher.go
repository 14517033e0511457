// Package kafka streams audit events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "gamelib/pkg/platform/audit"
)

// Producer is the subset of *kgo.Client the publisher needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Message is the JSON value written for each event. Records are keyed by subject
// so every event about one console or game lands on the same partition.
type Message struct {
	Action      string            `json:"action"`
	SubjectType string            `json:"subjectType"`
	Subject     string            `json:"subject"`
	RequestID   string            `json:"requestId,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
	OccurredAt  time.Time         `json:"occurredAt"`
}

// Publisher is an audit.Store that produces to Kafka.
type Publisher struct {
	producer Producer
	topic    string
}

// NewClient builds a franz-go client for the audit topic.
func NewClient(brokers []string, topic string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}

// New creates a publisher producing to topic.
func New(producer Producer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

// Append produces one event and waits for the broker acknowledgement.
func (p *Publisher) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(Message{
		Action:      string(event.Action),
		SubjectType: string(event.Action.SubjectType()),
		Subject:     event.Subject,
		RequestID:   event.RequestID,
		Details:     event.Details,
		OccurredAt:  event.Timestamp.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal audit message: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.Subject),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
		},
	}
	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}
