package worker

import (
	"context"
	"encoding/json"

	"tpcc-service/internal/broker"
	"tpcc-service/internal/models"
	"tpcc-service/internal/service"
	"tpcc-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// DeliveryWorker consumes deferred delivery requests and runs the delivery
// transaction for each. A failed delivery is logged and the message is
// committed anyway; the order stays queued and is picked up by the next
// request for the same district.
type DeliveryWorker struct {
	consumer *broker.Consumer
	service  *service.Service
	logger   *zap.Logger
}

// NewDeliveryWorker creates a new delivery worker
func NewDeliveryWorker(consumer *broker.Consumer, svc *service.Service) *DeliveryWorker {
	return &DeliveryWorker{
		consumer: consumer,
		service:  svc,
		logger:   util.GetLogger(),
	}
}

// Start starts the worker
func (w *DeliveryWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting delivery worker")
	return w.consumer.StartConsuming(ctx, w.handleMessage)
}

// Stop stops the worker
func (w *DeliveryWorker) Stop() error {
	w.logger.Info("Stopping delivery worker")
	return w.consumer.Close()
}

func (w *DeliveryWorker) handleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		w.logger.Error("Failed to unmarshal event", zap.Error(err))
		return nil
	}

	if baseEvent.EventType != models.EventTypeDeliveryRequested {
		return nil
	}

	var event models.DeliveryRequestedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		w.logger.Error("Failed to unmarshal DeliveryRequested event", zap.Error(err))
		return nil
	}

	resp, err := w.service.Delivery(ctx, &service.DeliveryRequest{
		WarehouseID: event.WarehouseID,
		DistrictID:  event.DistrictID,
		CarrierID:   event.CarrierID,
	})
	if err != nil {
		w.logger.Error("Deferred delivery failed",
			zap.Int("warehouse_id", event.WarehouseID),
			zap.Int("district_id", event.DistrictID),
			zap.Error(err))
		return nil
	}

	if resp.TotalOrdersDelivered == 0 {
		w.logger.Info("Deferred delivery found empty queue",
			zap.Int("warehouse_id", event.WarehouseID),
			zap.Int("district_id", event.DistrictID))
	}
	return nil
}
