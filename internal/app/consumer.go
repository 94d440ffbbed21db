package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-leave/internal/bootstrap"
	"go-leave/internal/events"
	"go-leave/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// auditDeliverer records delivered status-change notices on the audit log.
// It stands in for the mail/chat integrations that live outside this portal.
type auditDeliverer struct {
	audit bootstrap.AuditLogger
}

func (d *auditDeliverer) Deliver(ctx context.Context, ev events.RequestStatusChangedEvent) error {
	d.audit.Log(ctx, bootstrap.AuditLog{
		Action:  "REQUEST_STATUS_NOTIFIED",
		Message: fmt.Sprintf("leave request %s moved %s -> %s", ev.RequestID, ev.OldStatus, ev.NewStatus),
		Meta: map[string]any{
			"request_id":   ev.RequestID,
			"requester_id": ev.RequesterID,
			"leave_type":   ev.LeaveType,
			"working_days": ev.WorkingDays,
			"actor_id":     ev.ActorID,
		},
	})
	return nil
}

func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.RequestStatusChangedTopic,
		GroupID:        "go-leave-notifications",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	deliverer := &auditDeliverer{audit: bootstrap.NewStdoutAuditLogger()}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeStatusChanges(ctx, reader, deliverer, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
