package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"alert-strategist/internal/domain"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// ActionEvent is the payload published for every recorded action.
type ActionEvent struct {
	Type   string        `json:"type"`
	Action domain.Action `json:"action"`
	SentAt time.Time     `json:"sent_at"`
}

// KafkaPublisher streams recorded actions to a topic keyed by ticker so one
// ticker's actions stay ordered within a partition.
type KafkaPublisher struct {
	writer MessageWriter
	topic  string
	now    func() time.Time
}

func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            3,
		WriteTimeout:           cfg.WriteTimeout,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(w, cfg.Topic), nil
}

func newKafkaPublisher(w MessageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic, now: time.Now}
}

func (p *KafkaPublisher) Name() string { return "kafka" }

func (p *KafkaPublisher) Send(ctx context.Context, a domain.Action) error {
	value, err := json.Marshal(ActionEvent{Type: "action.recorded", Action: a, SentAt: p.now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal action: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(a.Ticker),
		Value: value,
		Time:  a.Timestamp,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(a.Kind)},
			{Key: "dedupe_key", Value: []byte(a.DedupeKey)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish action to %s: %w", p.topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
