package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"go-leave/internal/bootstrap"
	"go-leave/internal/events"
	"go-leave/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// ConsumeLeaveTransitions writes every leave transition to the audit trail.
// Undecodable messages are committed and skipped; the offset of a message is
// committed only after it was recorded.
func ConsumeLeaveTransitions(
	ctx context.Context,
	reader MessageReader,
	audit bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_transition")
	log.Info("leave transition consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave transition consumer stopped")
				return
			}
			log.Error("fetch leave transition message failed", zap.Error(err))
			continue
		}

		var event events.LeaveTransitionedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil || event.LeaveID == "" {
			log.Error("decode leave transition event failed",
				zap.Int64("offset", msg.Offset),
				zap.Int("partition", msg.Partition),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		msgCtx := ctx
		if event.RequestID != "" {
			msgCtx = contextutil.WithRequestID(ctx, event.RequestID)
		}
		audit.Log(msgCtx, TransitionAuditLog(event))

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave transition message failed", zap.Error(err))
			continue
		}

		log.Debug("leave transition recorded",
			zap.String("leave_id", event.LeaveID),
			zap.String("new_status", event.NewStatus),
		)
	}
}

func TransitionAuditLog(event events.LeaveTransitionedEvent) bootstrap.AuditLog {
	from := event.PreviousStatus
	if from == "" {
		from = "none"
	}
	return bootstrap.AuditLog{
		Action:  "LEAVE_" + event.NewStatus,
		Message: fmt.Sprintf("leave request %s moved from %s to %s", event.LeaveID, from, event.NewStatus),
		Meta: map[string]any{
			"leave_id":        event.LeaveID,
			"requester_id":    event.RequesterID,
			"department_id":   event.DepartmentID,
			"leave_type":      event.LeaveType,
			"chargeable_days": event.ChargeableDays,
			"previous_status": event.PreviousStatus,
			"new_status":      event.NewStatus,
			"actor_id":        event.ActorID,
			"actor_role":      event.ActorRole,
			"comment":         event.Comment,
			"occurred_at":     event.OccurredAt,
		},
	}
}
