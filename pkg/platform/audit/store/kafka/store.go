// Package kafka publishes audit events to a Kafka topic with franz-go.
//
// Records are keyed by the hashed subject identifier so events for the same
// batch land on the same partition. The category travels as a header for
// consumers that route without decoding the payload.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	audit "pharmaguard/pkg/platform/audit"

	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	HeaderCategory = "audit-category"
	HeaderAction   = "audit-action"
)

// producer is the subset of *kgo.Client the store needs.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Ping(ctx context.Context) error
	Close()
}

// Store appends audit events to a single topic.
type Store struct {
	client producer
	topic  string
}

// New dials the given brokers. The connection is lazy; use Ping to check
// reachability before serving.
func New(brokers []string, topic string, opts ...kgo.Opt) (*Store, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka audit store: no brokers")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka audit store: empty topic")
	}
	base := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(5 * time.Millisecond),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	}
	client, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("kafka audit store: %w", err)
	}
	return &Store{client: client, topic: topic}, nil
}

func newWithProducer(p producer, topic string) *Store {
	return &Store{client: p, topic: topic}
}

func (s *Store) Topic() string {
	return s.topic
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	record, err := toRecord(s.topic, event)
	if err != nil {
		return err
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event %s: %w", event.Action, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *Store) Close() {
	s.client.Close()
}

func toRecord(topic string, event audit.Event) (*kgo.Record, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode audit event: %w", err)
	}
	key := event.SubjectIDHash
	if key == "" {
		key = event.Action
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: HeaderCategory, Value: []byte(event.Category)},
			{Key: HeaderAction, Value: []byte(event.Action)},
		},
		Timestamp: event.Timestamp,
	}, nil
}
