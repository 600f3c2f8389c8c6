package consumer_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go-leave/internal/bootstrap"
	"go-leave/internal/events"
	"go-leave/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeReader serves queued messages, then cancels the consumer.
type fakeReader struct {
	mu        sync.Mutex
	messages  []kafkago.Message
	fetchErrs []error
	committed []int64
	cancel    context.CancelFunc
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.fetchErrs) > 0 {
		err := f.fetchErrs[0]
		f.fetchErrs = f.fetchErrs[1:]
		return kafkago.Message{}, err
	}
	if len(f.messages) == 0 {
		f.cancel()
		return kafkago.Message{}, ctx.Err()
	}
	msg := f.messages[0]
	f.messages = f.messages[1:]
	return msg, nil
}

func (f *fakeReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

type recordingAudit struct {
	entries []bootstrap.AuditLog
}

func (r *recordingAudit) Log(ctx context.Context, entry bootstrap.AuditLog) {
	r.entries = append(r.entries, entry)
}

func TestConsumeLeaveTransitions(t *testing.T) {
	event := events.LeaveTransitionedEvent{
		EventType:      events.LeaveTransitionedEventType,
		LeaveID:        "leave-1",
		RequesterID:    "emp-1",
		PreviousStatus: "pending",
		NewStatus:      "manager_approved",
		ActorID:        "mgr-1",
		ActorRole:      "manager",
		OccurredAt:     time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC),
	}
	payload, _ := json.Marshal(event)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &fakeReader{
		messages: []kafkago.Message{
			{Offset: 1, Value: payload},
			{Offset: 2, Value: []byte("not json")},
		},
		fetchErrs: []error{errors.New("broker hiccup")},
		cancel:    cancel,
	}
	audit := &recordingAudit{}

	consumer.ConsumeLeaveTransitions(ctx, reader, audit, zap.NewNop())

	assert.Equal(t, []int64{1, 2}, reader.committed)
	if assert.Len(t, audit.entries, 1) {
		entry := audit.entries[0]
		assert.Equal(t, "LEAVE_manager_approved", entry.Action)
		assert.Equal(t, "leave request leave-1 moved from pending to manager_approved", entry.Message)
		assert.Equal(t, "mgr-1", entry.Meta["actor_id"])
	}
}

func TestTransitionAuditLog_Creation(t *testing.T) {
	entry := consumer.TransitionAuditLog(events.LeaveTransitionedEvent{LeaveID: "leave-9", NewStatus: "pending"})

	assert.Equal(t, "LEAVE_pending", entry.Action)
	assert.Contains(t, entry.Message, "from none to pending")
}
