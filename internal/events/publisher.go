package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventPublisher publishes service events to downstream consumers
// (dashboards, notification services).
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Watermill with Kafka.
type KafkaEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
	topic     string
}

// PublisherConfig holds configuration for the Kafka publisher.
type PublisherConfig struct {
	Brokers []string
	Topic   string
	Logger  *slog.Logger
}

func NewKafkaEventPublisher(cfg PublisherConfig) (*KafkaEventPublisher, error) {
	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   cfg.Brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, watermill.NewSlogLogger(cfg.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher: publisher,
		logger:    cfg.Logger,
		topic:     cfg.Topic,
	}, nil
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("version", event.Version)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		p.logger.Error("failed to publish event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Info("published event",
		"event_id", event.ID,
		"event_type", event.Type,
		"topic", p.topic)
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// MockEventPublisher collects events in memory for tests.
type MockEventPublisher struct {
	Events []Event
	Logger *slog.Logger
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{Logger: logger}
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *Event) error {
	m.Events = append(m.Events, *event)
	m.Logger.Debug("mock: published event", "event_id", event.ID, "event_type", event.Type)
	return nil
}

func (m *MockEventPublisher) Close() error {
	return nil
}

// PublishedEvents returns all collected events.
func (m *MockEventPublisher) PublishedEvents() []Event {
	return m.Events
}

// ClearEvents drops all collected events.
func (m *MockEventPublisher) ClearEvents() {
	m.Events = nil
}
