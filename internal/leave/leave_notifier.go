package leave

import (
	"context"
	"encoding/json"

	"go-leave/internal/events"
	"go-leave/internal/messaging/kafka"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Notifier receives every committed transition. Delivery is best effort: the
// service logs a returned error and keeps the transition.
//
//go:generate mockgen -source=leave_notifier.go -destination=mock/leave_notifier_mock.go -package=mock
type Notifier interface {
	Notify(ctx context.Context, event events.LeaveTransitionedEvent) error
}

type noopNotifier struct{}

func NewNoopNotifier() Notifier {
	return noopNotifier{}
}

func (noopNotifier) Notify(context.Context, events.LeaveTransitionedEvent) error {
	return nil
}

// outboxNotifier queues the event in outbox_events; the worker publishes it.
type outboxNotifier struct {
	outbox kafka.OutboxRepository
	topic  string
}

func NewOutboxNotifier(outbox kafka.OutboxRepository, topic string) Notifier {
	if topic == "" {
		topic = events.LeaveTransitionedTopic
	}
	return &outboxNotifier{outbox: outbox, topic: topic}
}

func (n *outboxNotifier) Notify(ctx context.Context, event events.LeaveTransitionedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	outboxEvent := kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     event.RequestID,
		AggregateType: "leave_request",
		AggregateID:   event.LeaveID,
		EventType:     event.EventType,
		Topic:         n.topic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
	if err := kafka.ValidateOutboxEvent(outboxEvent); err != nil {
		return err
	}
	return n.outbox.Create(ctx, outboxEvent)
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// kafkaNotifier publishes straight to the broker, skipping the outbox.
type kafkaNotifier struct {
	writer messageWriter
	topic  string
}

func NewKafkaNotifier(writer messageWriter, topic string) Notifier {
	if topic == "" {
		topic = events.LeaveTransitionedTopic
	}
	return &kafkaNotifier{writer: writer, topic: topic}
}

func (n *kafkaNotifier) Notify(ctx context.Context, event events.LeaveTransitionedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.writer.WriteMessages(ctx, kafkago.Message{
		Topic: n.topic,
		Key:   []byte(event.LeaveID),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "aggregate_type", Value: []byte("leave_request")},
		},
	})
}
