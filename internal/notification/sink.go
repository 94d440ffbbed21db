// Package notification carries status-change notices out of the portal core.
// Emission is deliberately fire-and-forget: a failing sink must never roll
// back or block the state transition that produced the event.
package notification

import (
	"context"
	"encoding/json"
	"time"

	"go-leave/internal/events"
	"go-leave/internal/messaging/kafka"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Sink interface {
	StatusChanged(ctx context.Context, ev events.RequestStatusChangedEvent) error
}

// outboxSink enqueues the event into the transactional outbox in its own
// short write, outside the workflow's transaction. The worker binary drains
// the outbox and publishes to kafka with retry bookkeeping.
type outboxSink struct {
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewOutboxSink(outbox kafka.OutboxRepository, logger ...*zap.Logger) Sink {
	l := zap.L().Named("notification.sink")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.sink")
	}
	return &outboxSink{outbox: outbox, logger: l}
}

func (s *outboxSink) StatusChanged(ctx context.Context, ev events.RequestStatusChangedEvent) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error("marshal status change event failed", zap.Error(err))
		return err
	}

	event := kafka.OutboxEvent{
		ID:            uuid.NewString(),
		AggregateType: "leave_request",
		AggregateID:   ev.RequestID,
		EventType:     ev.EventType,
		Topic:         events.RequestStatusChangedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
	if err := kafka.ValidateOutboxEvent(event); err != nil {
		return err
	}

	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error("enqueue status change notice failed",
			zap.String("request_id", ev.RequestID),
			zap.Error(err),
		)
		return err
	}

	s.logger.Debug("status change notice enqueued",
		zap.String("request_id", ev.RequestID),
		zap.String("new_status", ev.NewStatus),
	)
	return nil
}

// Noop discards events; used in tests and kafka-less deployments.
type Noop struct{}

func (Noop) StatusChanged(context.Context, events.RequestStatusChangedEvent) error {
	return nil
}
