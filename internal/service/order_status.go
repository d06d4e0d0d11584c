package service

import (
	"context"
	"time"

	"tpcc-service/internal/models"
	"tpcc-service/internal/util"

	"github.com/shopspring/decimal"
)

// OrderStatusResponse represents a customer's most recent order with its
// lines.
type OrderStatusResponse struct {
	Customer    OrderStatusCustomer `json:"customer"`
	LatestOrder LatestOrder         `json:"latest_order"`
	OrderLines  []OrderStatusLine   `json:"order_lines"`
}

// OrderStatusCustomer is the customer identity and balance
type OrderStatusCustomer struct {
	ID      int             `json:"c_id"`
	First   string          `json:"c_first"`
	Middle  string          `json:"c_middle"`
	Last    string          `json:"c_last"`
	Balance decimal.Decimal `json:"c_balance"`
}

// LatestOrder identifies the customer's highest-numbered order
type LatestOrder struct {
	ID        int       `json:"o_id"`
	EntryDate time.Time `json:"o_entry_d"`
	CarrierID *int      `json:"o_carrier_id"`
}

// OrderStatusLine is one line of the latest order
type OrderStatusLine struct {
	ItemID            int             `json:"ol_i_id"`
	SupplyWarehouseID int             `json:"ol_supply_w_id"`
	Quantity          int             `json:"ol_quantity"`
	Amount            decimal.Decimal `json:"ol_amount"`
	DeliveryDate      *time.Time      `json:"ol_delivery_d"`
}

// OrderStatus returns the customer's balance and most recently entered order
// with all of its lines in line-number order. A customer with no orders is a
// not-found condition.
func (s *Service) OrderStatus(ctx context.Context, warehouseID, districtID, customerID int) (*OrderStatusResponse, error) {
	ctx, span := util.StartSpan(ctx, "Service.OrderStatus")
	defer span.End()

	var resp *OrderStatusResponse
	err := s.runInTx(ctx, "order_status", func(r models.Repository) error {
		customer, err := r.GetCustomer(ctx, warehouseID, districtID, customerID)
		if err != nil {
			return err
		}

		order, err := r.LatestOrderForCustomer(ctx, warehouseID, districtID, customerID)
		if err != nil {
			return err
		}

		lines, err := r.OrderLines(ctx, warehouseID, districtID, order.ID)
		if err != nil {
			return err
		}

		statusLines := make([]OrderStatusLine, len(lines))
		for i, line := range lines {
			statusLines[i] = OrderStatusLine{
				ItemID:            line.ItemID,
				SupplyWarehouseID: line.SupplyWarehouseID,
				Quantity:          line.Quantity,
				Amount:            line.Amount,
				DeliveryDate:      line.DeliveryDate,
			}
		}

		resp = &OrderStatusResponse{
			Customer: OrderStatusCustomer{
				ID:      customer.ID,
				First:   customer.First,
				Middle:  customer.Middle,
				Last:    customer.Last,
				Balance: customer.Balance,
			},
			LatestOrder: LatestOrder{
				ID:        order.ID,
				EntryDate: order.EntryDate,
				CarrierID: order.CarrierID,
			},
			OrderLines: statusLines,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
