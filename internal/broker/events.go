package broker

import (
	"context"
	"fmt"

	"tpcc-service/internal/models"
	"tpcc-service/internal/util"
)

// EventPublisher handles publishing domain events. Committed business
// transactions go to the order-events topic; deferred delivery requests go
// to their own topic consumed by the delivery worker.
type EventPublisher struct {
	orders     *Producer
	deliveries *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(orders, deliveries *Producer) *EventPublisher {
	return &EventPublisher{orders: orders, deliveries: deliveries}
}

func (ep *EventPublisher) publish(ctx context.Context, p *Producer, eventType, key string, event interface{}) error {
	if err := p.PublishEvent(ctx, key, event); err != nil {
		util.EventsPublishFailedTotal.WithLabelValues(eventType).Inc()
		return err
	}
	util.EventsPublishedTotal.WithLabelValues(eventType).Inc()
	return nil
}

// PublishOrderEntered publishes an OrderEntered event
func (ep *EventPublisher) PublishOrderEntered(ctx context.Context, event *models.OrderEnteredEvent) error {
	key := fmt.Sprintf("order-%d-%d-%d", event.WarehouseID, event.DistrictID, event.OrderID)
	return ep.publish(ctx, ep.orders, event.EventType, key, event)
}

// PublishPaymentRecorded publishes a PaymentRecorded event
func (ep *EventPublisher) PublishPaymentRecorded(ctx context.Context, event *models.PaymentRecordedEvent) error {
	key := fmt.Sprintf("customer-%d-%d-%d", event.WarehouseID, event.DistrictID, event.CustomerID)
	return ep.publish(ctx, ep.orders, event.EventType, key, event)
}

// PublishOrderDelivered publishes an OrderDelivered event
func (ep *EventPublisher) PublishOrderDelivered(ctx context.Context, event *models.OrderDeliveredEvent) error {
	key := fmt.Sprintf("order-%d-%d-%d", event.WarehouseID, event.DistrictID, event.OrderID)
	return ep.publish(ctx, ep.orders, event.EventType, key, event)
}

// PublishDeliveryRequested queues a deferred delivery request
func (ep *EventPublisher) PublishDeliveryRequested(ctx context.Context, event *models.DeliveryRequestedEvent) error {
	key := fmt.Sprintf("district-%d-%d", event.WarehouseID, event.DistrictID)
	return ep.publish(ctx, ep.deliveries, event.EventType, key, event)
}
