package events

import "time"

const LeaveTransitionedTopic = "hr.leave.transition.v1"

const LeaveTransitionedEventType = "leave_transitioned"

// LeaveTransitionedEvent is emitted once per committed status change of a
// leave request, including its creation (PreviousStatus empty).
type LeaveTransitionedEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id,omitempty"`
	LeaveID        string    `json:"leave_id"`
	RequesterID    string    `json:"requester_id"`
	DepartmentID   string    `json:"department_id"`
	LeaveType      string    `json:"leave_type"`
	ChargeableDays int       `json:"chargeable_days"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	ActorID        string    `json:"actor_id"`
	ActorRole      string    `json:"actor_role"`
	Comment        string    `json:"comment,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
