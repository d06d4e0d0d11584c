package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tpcc-service/internal/models"
	"tpcc-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaxOrderLines bounds the order-line list of one order.
const MaxOrderLines = 15

// NewOrderRequest represents a request to enter an order
type NewOrderRequest struct {
	WarehouseID int                `json:"warehouse_id" binding:"required"`
	DistrictID  int                `json:"district_id" binding:"required"`
	CustomerID  int                `json:"customer_id" binding:"required"`
	OrderLines  []OrderLineRequest `json:"order_lines"`
}

// OrderLineRequest represents one requested order line
type OrderLineRequest struct {
	ItemID            int `json:"item_id" binding:"required"`
	SupplyWarehouseID int `json:"supply_warehouse_id" binding:"required"`
	Quantity          int `json:"quantity" binding:"required,min=1"`
}

// NewOrderResponse represents the outcome of an entered order
type NewOrderResponse struct {
	OrderID        int                `json:"order_id"`
	Customer       CustomerSummary    `json:"customer"`
	WarehouseTax   decimal.Decimal    `json:"warehouse_tax"`
	DistrictTax    decimal.Decimal    `json:"district_tax"`
	OrderEntryDate time.Time          `json:"order_entry_date"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	OrderLines     []OrderLineSummary `json:"order_lines"`
}

// CustomerSummary identifies the ordering customer
type CustomerSummary struct {
	CustomerID int             `json:"customer_id"`
	LastName   string          `json:"last_name"`
	Credit     string          `json:"credit"`
	Discount   decimal.Decimal `json:"discount"`
}

// OrderLineSummary represents one persisted order line
type OrderLineSummary struct {
	ItemID            int             `json:"item_id"`
	SupplyWarehouseID int             `json:"supply_warehouse_id"`
	Quantity          int             `json:"quantity"`
	ItemName          string          `json:"item_name"`
	ItemPrice         decimal.Decimal `json:"item_price"`
	StockQuantity     int             `json:"stock_quantity"`
	BrandGeneric      string          `json:"brand_generic"`
	LineAmount        decimal.Decimal `json:"line_amount"`
}

// NewOrder enters a customer order: it allocates the next order id from the
// district, inserts the order with its undelivered-queue entry, consumes
// stock per line and prices the order with warehouse and district tax applied
// before the customer discount.
func (s *Service) NewOrder(ctx context.Context, req *NewOrderRequest) (*NewOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "Service.NewOrder")
	defer span.End()

	if len(req.OrderLines) == 0 || len(req.OrderLines) > MaxOrderLines {
		util.NewOrdersFailedTotal.WithLabelValues("invalid_line_count").Inc()
		return nil, fmt.Errorf("%w: order must have between 1 and %d lines, got %d",
			models.ErrInvalidArgument, MaxOrderLines, len(req.OrderLines))
	}
	for i, line := range req.OrderLines {
		if line.Quantity < 1 {
			util.NewOrdersFailedTotal.WithLabelValues("invalid_quantity").Inc()
			return nil, fmt.Errorf("%w: order line %d has non-positive quantity %d",
				models.ErrInvalidArgument, i+1, line.Quantity)
		}
	}

	var resp *NewOrderResponse
	err := s.runInTx(ctx, "new_order", func(r models.Repository) error {
		var err error
		resp, err = s.enterOrder(ctx, r, req)
		return err
	})
	if err != nil {
		if !models.IsInvalidArgument(err) && !models.IsNotFound(err) {
			util.NewOrdersFailedTotal.WithLabelValues("store_error").Inc()
		} else if models.IsNotFound(err) {
			util.NewOrdersFailedTotal.WithLabelValues("not_found").Inc()
		}
		return nil, err
	}

	util.NewOrdersTotal.Inc()
	s.logger.Info("Order entered",
		zap.Int("warehouse_id", req.WarehouseID),
		zap.Int("district_id", req.DistrictID),
		zap.Int("order_id", resp.OrderID),
		zap.Int("line_count", len(resp.OrderLines)))

	s.publishOrderEntered(ctx, req, resp)
	return resp, nil
}

func (s *Service) enterOrder(ctx context.Context, r models.Repository, req *NewOrderRequest) (*NewOrderResponse, error) {
	warehouse, err := r.GetWarehouse(ctx, req.WarehouseID)
	if err != nil {
		return nil, err
	}

	district, err := r.GetDistrictForUpdate(ctx, req.WarehouseID, req.DistrictID)
	if err != nil {
		return nil, err
	}
	orderID := district.NextOrderID
	if err := r.SetDistrictNextOrderID(ctx, req.WarehouseID, req.DistrictID, orderID+1); err != nil {
		return nil, err
	}

	customer, err := r.GetCustomer(ctx, req.WarehouseID, req.DistrictID, req.CustomerID)
	if err != nil {
		return nil, err
	}

	entryDate := time.Now().UTC()
	order := &models.Order{
		ID:          orderID,
		DistrictID:  req.DistrictID,
		WarehouseID: req.WarehouseID,
		CustomerID:  req.CustomerID,
		EntryDate:   entryDate,
	}
	if err := r.InsertOrder(ctx, order); err != nil {
		return nil, err
	}
	if err := r.InsertNewOrder(ctx, req.WarehouseID, req.DistrictID, orderID); err != nil {
		return nil, err
	}

	sum := decimal.Zero
	allLocal := true
	lines := make([]OrderLineSummary, 0, len(req.OrderLines))

	for i, line := range req.OrderLines {
		item, err := r.GetItem(ctx, line.ItemID)
		if err != nil {
			return nil, err
		}

		stock, err := r.GetStockForUpdate(ctx, line.SupplyWarehouseID, line.ItemID)
		if err != nil {
			return nil, err
		}

		newQty := stock.Quantity - line.Quantity
		if newQty < 1 {
			newQty += 91
		}
		stock.Quantity = newQty
		stock.OrderCnt++
		if line.SupplyWarehouseID != req.WarehouseID {
			stock.RemoteCnt++
			allLocal = false
		}
		stock.YTD = stock.YTD.Add(decimal.NewFromInt(int64(line.Quantity)))
		if err := r.UpdateStock(ctx, stock); err != nil {
			return nil, err
		}

		amount := item.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))

		brandGeneric := "G"
		if containsOriginal(item.Data) && containsOriginal(stock.Data) {
			brandGeneric = "B"
		}

		ol := &models.OrderLine{
			OrderID:           orderID,
			DistrictID:        req.DistrictID,
			WarehouseID:       req.WarehouseID,
			Number:            i + 1,
			ItemID:            line.ItemID,
			SupplyWarehouseID: line.SupplyWarehouseID,
			Quantity:          line.Quantity,
			Amount:            amount,
			DistInfo:          stock.DistInfo(req.DistrictID),
		}
		if err := r.InsertOrderLine(ctx, ol); err != nil {
			return nil, err
		}

		sum = sum.Add(amount)
		lines = append(lines, OrderLineSummary{
			ItemID:            line.ItemID,
			SupplyWarehouseID: line.SupplyWarehouseID,
			Quantity:          line.Quantity,
			ItemName:          item.Name,
			ItemPrice:         item.Price,
			StockQuantity:     newQty,
			BrandGeneric:      brandGeneric,
			LineAmount:        amount,
		})
	}

	// Tax applies to the pre-discount sum and the discount to the same
	// pre-tax sum; the order of the two adjustments is part of the contract.
	total := sum.Add(sum.Mul(warehouse.Tax.Add(district.Tax)))
	total = total.Sub(sum.Mul(customer.Discount))

	if err := r.UpdateOrderCounts(ctx, req.WarehouseID, req.DistrictID, orderID, len(lines), allLocal); err != nil {
		return nil, err
	}

	return &NewOrderResponse{
		OrderID: orderID,
		Customer: CustomerSummary{
			CustomerID: customer.ID,
			LastName:   customer.Last,
			Credit:     customer.Credit,
			Discount:   customer.Discount,
		},
		WarehouseTax:   warehouse.Tax,
		DistrictTax:    district.Tax,
		OrderEntryDate: entryDate,
		TotalAmount:    total,
		OrderLines:     lines,
	}, nil
}

func (s *Service) publishOrderEntered(ctx context.Context, req *NewOrderRequest, resp *NewOrderResponse) {
	if s.eventPublisher == nil {
		return
	}
	allLocal := true
	for _, line := range req.OrderLines {
		if line.SupplyWarehouseID != req.WarehouseID {
			allLocal = false
			break
		}
	}
	event := &models.OrderEnteredEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderEntered,
			Timestamp: time.Now(),
		},
		WarehouseID: req.WarehouseID,
		DistrictID:  req.DistrictID,
		CustomerID:  req.CustomerID,
		OrderID:     resp.OrderID,
		LineCount:   len(resp.OrderLines),
		TotalAmount: resp.TotalAmount.String(),
		AllLocal:    allLocal,
	}
	if err := s.eventPublisher.PublishOrderEntered(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderEntered event", zap.Error(err))
	}
}

func containsOriginal(data string) bool {
	return strings.Contains(data, models.OriginalMarker)
}
