package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tpcc-service/internal/models"
	"tpcc-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DeliveryRequest represents a delivery run for one district. CarrierID is
// optional; zero means the configured default.
type DeliveryRequest struct {
	WarehouseID int `json:"warehouse_id" binding:"required"`
	DistrictID  int `json:"district_id" binding:"required"`
	CarrierID   int `json:"carrier_id,omitempty"`
}

// DeliveryResponse represents the outcome of a delivery run. DeliveredOrders
// is empty when the district had no undelivered orders, which is a normal
// outcome rather than an error.
type DeliveryResponse struct {
	WarehouseID          int              `json:"warehouse_id"`
	DistrictID           int              `json:"district_id"`
	DeliveryDate         time.Time        `json:"delivery_date"`
	DeliveredOrders      []DeliveredOrder `json:"delivered_orders"`
	TotalOrdersDelivered int              `json:"total_orders_delivered"`
}

// DeliveredOrder summarizes one delivered order
type DeliveredOrder struct {
	OrderID        int             `json:"order_id"`
	CustomerID     int             `json:"customer_id"`
	CarrierID      int             `json:"carrier_id"`
	OrderLineCount int             `json:"order_line_count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// Delivery delivers the oldest undelivered order of one district: it assigns
// the carrier, stamps every order line with the delivery timestamp, credits
// the line total to the customer balance and removes the order from the
// undelivered queue.
func (s *Service) Delivery(ctx context.Context, req *DeliveryRequest) (*DeliveryResponse, error) {
	ctx, span := util.StartSpan(ctx, "Service.Delivery")
	defer span.End()

	carrierID := req.CarrierID
	if carrierID == 0 {
		carrierID = s.defaultCarrier
	}
	if carrierID < 1 || carrierID > 10 {
		util.DeliveriesFailedTotal.WithLabelValues("invalid_carrier").Inc()
		return nil, fmt.Errorf("%w: carrier id must be between 1 and 10, got %d",
			models.ErrInvalidArgument, carrierID)
	}

	deliveryDate := time.Now().UTC()
	var delivered *DeliveredOrder
	err := s.runInTx(ctx, "delivery", func(r models.Repository) error {
		var err error
		delivered, err = s.deliverOldest(ctx, r, req.WarehouseID, req.DistrictID, carrierID, deliveryDate)
		return err
	})
	if err != nil {
		reason := "store_error"
		switch {
		case errors.Is(err, models.ErrInternalInconsistency):
			reason = "inconsistency"
		case models.IsNotFound(err):
			reason = "not_found"
		}
		util.DeliveriesFailedTotal.WithLabelValues(reason).Inc()
		return nil, err
	}

	resp := &DeliveryResponse{
		WarehouseID:     req.WarehouseID,
		DistrictID:      req.DistrictID,
		DeliveryDate:    deliveryDate,
		DeliveredOrders: []DeliveredOrder{},
	}
	if delivered == nil {
		util.DeliveriesEmptyTotal.Inc()
		return resp, nil
	}
	resp.DeliveredOrders = append(resp.DeliveredOrders, *delivered)
	resp.TotalOrdersDelivered = 1

	util.DeliveriesTotal.Inc()
	s.logger.Info("Order delivered",
		zap.Int("warehouse_id", req.WarehouseID),
		zap.Int("district_id", req.DistrictID),
		zap.Int("order_id", delivered.OrderID),
		zap.Int("carrier_id", carrierID))

	if s.eventPublisher != nil {
		event := &models.OrderDeliveredEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderDelivered,
				Timestamp: time.Now(),
			},
			WarehouseID: req.WarehouseID,
			DistrictID:  req.DistrictID,
			OrderID:     delivered.OrderID,
			CustomerID:  delivered.CustomerID,
			CarrierID:   carrierID,
			TotalAmount: delivered.TotalAmount.String(),
		}
		if err := s.eventPublisher.PublishOrderDelivered(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderDelivered event", zap.Error(err))
		}
	}

	return resp, nil
}

// deliverOldest returns nil without error when the queue is empty. Once a
// queue entry exists, a missing order or empty line set is a broken invariant
// and surfaces as an internal inconsistency.
func (s *Service) deliverOldest(ctx context.Context, r models.Repository, warehouseID, districtID, carrierID int, deliveryDate time.Time) (*DeliveredOrder, error) {
	orderID, ok, err := r.OldestNewOrder(ctx, warehouseID, districtID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	order, err := r.GetOrder(ctx, warehouseID, districtID, orderID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, fmt.Errorf("%w: queued order %d has no orders row", models.ErrInternalInconsistency, orderID)
		}
		return nil, err
	}

	if err := r.SetOrderCarrier(ctx, warehouseID, districtID, orderID, carrierID); err != nil {
		return nil, err
	}

	lines, err := r.OrderLines(ctx, warehouseID, districtID, orderID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: queued order %d has no order lines", models.ErrInternalInconsistency, orderID)
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Amount)
	}

	if err := r.MarkOrderLinesDelivered(ctx, warehouseID, districtID, orderID, deliveryDate); err != nil {
		return nil, err
	}
	if err := r.ApplyCustomerDelivery(ctx, warehouseID, districtID, order.CustomerID, total); err != nil {
		return nil, err
	}
	if err := r.DeleteNewOrder(ctx, warehouseID, districtID, orderID); err != nil {
		return nil, err
	}

	return &DeliveredOrder{
		OrderID:        orderID,
		CustomerID:     order.CustomerID,
		CarrierID:      carrierID,
		OrderLineCount: len(lines),
		TotalAmount:    total,
	}, nil
}

// RequestDelivery queues a deferred delivery run. The request is acknowledged
// immediately and executed by the delivery worker when consumed.
func (s *Service) RequestDelivery(ctx context.Context, req *DeliveryRequest) (string, error) {
	ctx, span := util.StartSpan(ctx, "Service.RequestDelivery")
	defer span.End()

	carrierID := req.CarrierID
	if carrierID == 0 {
		carrierID = s.defaultCarrier
	}
	if carrierID < 1 || carrierID > 10 {
		return "", fmt.Errorf("%w: carrier id must be between 1 and 10, got %d",
			models.ErrInvalidArgument, carrierID)
	}
	if s.eventPublisher == nil {
		return "", fmt.Errorf("deferred delivery unavailable: no event publisher configured")
	}

	event := &models.DeliveryRequestedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeDeliveryRequested,
			Timestamp: time.Now(),
		},
		WarehouseID: req.WarehouseID,
		DistrictID:  req.DistrictID,
		CarrierID:   carrierID,
	}
	if err := s.eventPublisher.PublishDeliveryRequested(ctx, event); err != nil {
		return "", err
	}

	s.logger.Info("Delivery queued",
		zap.Int("warehouse_id", req.WarehouseID),
		zap.Int("district_id", req.DistrictID),
		zap.String("event_id", event.EventID))
	return event.EventID, nil
}
