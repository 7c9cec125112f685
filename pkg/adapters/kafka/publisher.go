// Package kafka publishes engine lifecycle events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/sensact/pkg/domain"
	"github.com/segmentio/kafka-go"
)

// DefaultTopic receives the events when Config.Topic is empty.
const DefaultTopic = "sensact.events"

// MessageWriter is the subset of *kafka.Writer used by the Publisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config describes the target cluster.
type Config struct {
	Brokers      []string
	Topic        string
	Async        bool
	WriteTimeout time.Duration
}

// Publisher writes one JSON message per lifecycle event, keyed by run id.
type Publisher struct {
	writer MessageWriter
	topic  string
	logger *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger receiving publish failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a publisher backed by a kafka.Writer.
func NewPublisher(cfg Config, opts ...Option) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		Async:                  cfg.Async,
		WriteTimeout:           cfg.WriteTimeout,
		AllowAutoTopicCreation: true,
	}
	return NewPublisherWithWriter(writer, cfg.Topic, opts...), nil
}

// NewPublisherWithWriter creates a publisher on an existing writer.
func NewPublisherWithWriter(w MessageWriter, topic string, opts ...Option) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	p := &Publisher{
		writer: w,
		topic:  topic,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Hooks returns lifecycle hooks publishing every event.
func (p *Publisher) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGoalEnter: func(ctx context.Context, e *domain.GoalEvent) { p.publish(ctx, e.EventBase, e) },
		OnGoalLeave: func(ctx context.Context, e *domain.GoalEvent) { p.publish(ctx, e.EventBase, e) },
		OnRuleFire:  func(ctx context.Context, e *domain.RuleEvent) { p.publish(ctx, e.EventBase, e) },
		OnAction:    func(ctx context.Context, e *domain.ActionEvent) { p.publish(ctx, e.EventBase, e) },
	}
}

func (p *Publisher) publish(ctx context.Context, base domain.EventBase, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.WarnContext(ctx, "failed to encode event", "type", base.Type, "err", err)
		return
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(base.RunID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(base.Type)},
		},
		Time: base.Timestamp,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WarnContext(ctx, "failed to publish event", "type", base.Type, "run_id", base.RunID, "err", err)
	}
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close publisher: %w", err)
	}
	return nil
}
