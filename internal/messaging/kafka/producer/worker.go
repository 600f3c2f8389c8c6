package producer

import (
	"context"
	"time"

	"go-leave/internal/messaging/kafka"
	"go-leave/internal/metrics"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the part of *kafkago.Writer the worker needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type WorkerOptions struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

type Worker struct {
	repo   kafka.OutboxRepository
	writer MessageWriter
	opts   WorkerOptions
	logger *zap.Logger
}

func NewWorker(repo kafka.OutboxRepository, writer MessageWriter, opts WorkerOptions, logger ...*zap.Logger) *Worker {
	l := zap.L().Named("kafka.producer.worker")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("kafka.producer.worker")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 3 * time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = kafka.DefaultMaxAttempts
	}
	return &Worker{repo: repo, writer: writer, opts: opts, logger: l}
}

// Run polls the outbox until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	w.logger.Info("outbox worker started", zap.Duration("poll_interval", w.opts.PollInterval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbox worker stopped")
			return
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil {
				w.logger.Error("process outbox events failed", zap.Error(err))
			}
		}
	}
}

// ProcessPending publishes one batch and returns how many rows were sent.
func (w *Worker) ProcessPending(ctx context.Context) (int, error) {
	events, err := w.repo.ListPending(ctx, w.opts.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	w.logger.Debug("processing pending outbox events", zap.Int("count", len(events)))

	sent := 0
	for _, event := range events {
		if err := w.publish(ctx, event); err != nil {
			metrics.RecordOutboxPublish("failed")
			w.logger.Error("publish outbox event failed",
				zap.String("outbox_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.String("topic", event.Topic),
				zap.Int("retry_count", event.RetryCount),
				zap.Error(err),
			)
			if markErr := w.repo.MarkFailed(ctx, event.ID, err.Error(), w.opts.MaxAttempts); markErr != nil {
				w.logger.Error("mark outbox failed failed", zap.String("outbox_id", event.ID), zap.Error(markErr))
			}
			continue
		}

		if err := w.repo.MarkSent(ctx, event.ID); err != nil {
			// the message is out; a retry will publish a duplicate the consumer must tolerate
			w.logger.Error("mark outbox sent failed", zap.String("outbox_id", event.ID), zap.Error(err))
			continue
		}

		metrics.RecordOutboxPublish("sent")
		sent++
		w.logger.Info("outbox event sent",
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("aggregate_id", event.AggregateID),
		)
	}
	return sent, nil
}

func (w *Worker) publish(ctx context.Context, event kafka.OutboxEvent) error {
	headers := []kafkago.Header{
		{Key: "event_type", Value: []byte(event.EventType)},
		{Key: "aggregate_type", Value: []byte(event.AggregateType)},
	}
	if event.RequestID != "" {
		headers = append(headers, kafkago.Header{Key: "request_id", Value: []byte(event.RequestID)})
	}
	return w.writer.WriteMessages(ctx, kafkago.Message{
		Topic:   event.Topic,
		Key:     []byte(event.AggregateID),
		Value:   event.Payload,
		Headers: headers,
	})
}
