package listener

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/verone/catalog-service/internal/inventory"
	"github.com/verone/catalog-service/internal/model"
	"github.com/verone/catalog-service/internal/platform/broker"
	"github.com/verone/catalog-service/internal/platform/logger"
	"go.uber.org/zap"
)

// Listener consumes OrderCreated events and records the matching stock
// movements. A malformed or failing message is logged and skipped; the
// usecase's idempotency check makes redelivery safe.
type Listener struct {
	consumer *broker.KafkaConsumer
	uc       inventory.UseCase
	logger   logger.ZapLogger
}

func NewListener(consumer *broker.KafkaConsumer, uc inventory.UseCase, log logger.ZapLogger) *Listener {
	return &Listener{
		consumer: consumer,
		uc:       uc,
		logger:   log,
	}
}

func (l *Listener) Run(ctx context.Context) {
	for {
		msg, err := l.consumer.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			l.logger.Error("failed to read order event", zap.Error(err))
			continue
		}

		var event model.OrderCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			l.logger.Error("malformed order event, skipping",
				zap.ByteString("payload", msg.Value),
				zap.Error(err))
			continue
		}

		if err := l.uc.HandleOrderCreated(ctx, &event); err != nil {
			l.logger.Error("failed to process order event",
				zap.String("event_id", event.EventID),
				zap.String("order_id", event.OrderID),
				zap.Error(err))
		}
	}
}
