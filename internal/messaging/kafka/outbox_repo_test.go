package kafka_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"go-leave/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := kafka.NewOutboxRepository(db)
	event := kafka.OutboxEvent{
		ID:            "o-1",
		RequestID:     "rid-1",
		AggregateType: "leave_request",
		AggregateID:   "leave-1",
		EventType:     "leave_transitioned",
		Topic:         "hr.leave.transition.v1",
		Payload:       []byte(`{}`),
		Status:        kafka.OutboxStatusPending,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs("o-1", "rid-1", "leave_request", "leave-1", "leave_transitioned", "hr.leave.transition.v1", []byte(`{}`), "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_ListPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "request_id", "aggregate_type", "aggregate_id", "event_type",
		"topic", "payload", "status", "retry_count", "next_retry_at",
	}).AddRow("o-1", "rid-1", "leave_request", "leave-1", "leave_transitioned",
		"hr.leave.transition.v1", []byte(`{}`), "failed", 2, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM outbox_events")).
		WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, 20).
		WillReturnRows(rows)

	events, err := kafka.NewOutboxRepository(db).ListPending(context.Background(), 20)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "leave-1", events[0].AggregateID)
	assert.Equal(t, 2, events[0].RetryCount)
	assert.Equal(t, "rid-1", events[0].RequestID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkSentAndFailed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := kafka.NewOutboxRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
		WithArgs("o-1", kafka.OutboxStatusSent).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE outbox_events")).
		WithArgs("o-2", kafka.OutboxStatusFailed, "boom", kafka.DefaultMaxAttempts, kafka.OutboxStatusDead).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkSent(context.Background(), "o-1"))
	require.NoError(t, repo.MarkFailed(context.Background(), "o-2", "boom", 0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateOutboxEvent(t *testing.T) {
	valid := kafka.OutboxEvent{
		ID:          "o-1",
		AggregateID: "leave-1",
		Topic:       "t",
		Payload:     []byte(`{}`),
		Status:      kafka.OutboxStatusPending,
	}
	assert.NoError(t, kafka.ValidateOutboxEvent(valid))

	tests := []struct {
		name   string
		mutate func(*kafka.OutboxEvent)
		msg    string
	}{
		{"missing id", func(e *kafka.OutboxEvent) { e.ID = "" }, "outbox id is required"},
		{"missing aggregate", func(e *kafka.OutboxEvent) { e.AggregateID = "" }, "outbox aggregate id is required"},
		{"missing topic", func(e *kafka.OutboxEvent) { e.Topic = "" }, "outbox topic is required"},
		{"missing payload", func(e *kafka.OutboxEvent) { e.Payload = nil }, "outbox payload is required"},
		{"bad status", func(e *kafka.OutboxEvent) { e.Status = "queued" }, "invalid outbox status: queued"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			assert.EqualError(t, kafka.ValidateOutboxEvent(e), tt.msg)
		})
	}
}
