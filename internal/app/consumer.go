package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-leave/internal/bootstrap"
	"go-leave/internal/config"
	"go-leave/internal/messaging/kafka/consumer"
	"go-leave/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer writes every published leave transition to the audit log.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.Kafka.Broker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	if err := connection.EnsureTopic(cfg.Kafka.Broker, cfg.Kafka.TransitionTopic, 3); err != nil {
		logger.Warn("ensure topic failed", zap.String("topic", cfg.Kafka.TransitionTopic), zap.Error(err))
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.Kafka.Broker},
		Topic:          cfg.Kafka.TransitionTopic,
		GroupID:        cfg.Kafka.ConsumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	auditLogger := bootstrap.NewStdoutAuditLogger()
	go consumer.ConsumeLeaveTransitions(ctx, reader, auditLogger, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
