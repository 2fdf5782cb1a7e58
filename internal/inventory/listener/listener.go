package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-marketplace-service/internal/inventory"
	"github.com/fekuna/omnipos-marketplace-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const EventOrderCreated = "OrderCreated"

// MessageReader is satisfied by *broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type InventoryListener struct {
	consumer MessageReader
	uc       inventory.UseCase
	logger   logger.ZapLogger
}

func NewInventoryListener(consumer MessageReader, uc inventory.UseCase, logger logger.ZapLogger) *InventoryListener {
	return &InventoryListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

// Start blocks until ctx is cancelled.
func (l *InventoryListener) Start(ctx context.Context) {
	l.logger.Info("Starting Inventory Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Inventory Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

func (l *InventoryListener) processMessage(ctx context.Context, value []byte) {
	var event dto.OrderCreatedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != EventOrderCreated {
		return
	}

	l.logger.Info("Processing OrderCreated event", zap.String("order_id", event.Payload.ID))

	for _, item := range event.Payload.Items {
		stock, err := l.uc.RecordSale(ctx, item.SKU, item.Quantity, event.Payload.ID)
		if err != nil {
			// The order is already placed; a failed item is logged for reconciliation.
			l.logger.Error("Failed to record sale for order item",
				zap.String("order_id", event.Payload.ID),
				zap.String("sku", item.SKU),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
			continue
		}
		l.logger.Debug("stock decremented",
			zap.String("sku", item.SKU),
			zap.Int("units", stock.Units),
			zap.Int("units_sold", stock.UnitsSold),
		)
	}
}
