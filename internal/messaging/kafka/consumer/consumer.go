package consumer

import (
	"context"
	"encoding/json"

	"go-leave/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Deliverer is the downstream channel for a status-change notice. Mail and
// push delivery live behind this interface; the portal core only guarantees
// the event reaches it.
type Deliverer interface {
	Deliver(ctx context.Context, ev events.RequestStatusChangedEvent) error
}

func ConsumeStatusChanges(
	ctx context.Context,
	reader *kafkago.Reader,
	deliverer Deliverer,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.request_status")
	log.Info("request status consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("request status consumer stopped")
				return
			}
			log.Error("fetch status change message failed", zap.Error(err))
			continue
		}

		var event events.RequestStatusChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode status change event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := deliverer.Deliver(ctx, event); err != nil {
			// Leave the message uncommitted so it is retried on the next fetch.
			log.Error("deliver status change notice failed",
				zap.String("request_id", event.RequestID),
				zap.String("requester_id", event.RequesterID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit status change message failed", zap.Error(err))
			continue
		}

		log.Info("status change notice delivered",
			zap.String("request_id", event.RequestID),
			zap.String("new_status", event.NewStatus),
		)
	}
}
