package events

import "time"

const RequestStatusChangedTopic = "hr.leave.request.status.v1"

type RequestStatusChangedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id"`
	RequesterID string    `json:"requester_id"`
	LeaveType   string    `json:"leave_type"`
	OldStatus   string    `json:"old_status"`
	NewStatus   string    `json:"new_status"`
	WorkingDays int       `json:"working_days"`
	ActorID     string    `json:"actor_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}
