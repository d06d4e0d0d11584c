package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tpcc-service/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Tx implements models.UnitOfWork on top of one open sqlx transaction.
// Row acquisition follows a fixed order across all operations
// (warehouse, district, customer, item, stock, order, new_orders,
// order_line, history) to bound deadlock risk.
type Tx struct {
	tx *sqlx.Tx
}

// Commit commits the transaction
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback rolls the transaction back; calling it after Commit is a no-op.
func (t *Tx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

func notFound(err error, what string, keys ...int) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", what, keys, models.ErrNotFound)
	}
	return err
}

// GetWarehouse retrieves a warehouse row
func (t *Tx) GetWarehouse(ctx context.Context, warehouseID int) (*models.Warehouse, error) {
	var w models.Warehouse
	err := t.tx.GetContext(ctx, &w, "SELECT * FROM warehouse WHERE w_id = $1", warehouseID)
	if err != nil {
		return nil, notFound(err, "warehouse", warehouseID)
	}
	return &w, nil
}

// AddWarehouseYTD adds a payment amount to the warehouse year-to-date total
func (t *Tx) AddWarehouseYTD(ctx context.Context, warehouseID int, amount decimal.Decimal) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE warehouse SET w_ytd = w_ytd + $1 WHERE w_id = $2", amount, warehouseID)
	if err != nil {
		return fmt.Errorf("update warehouse ytd: %w", err)
	}
	return requireRow(res, "warehouse", warehouseID)
}

// GetDistrict retrieves a district row
func (t *Tx) GetDistrict(ctx context.Context, warehouseID, districtID int) (*models.District, error) {
	var d models.District
	err := t.tx.GetContext(ctx, &d,
		"SELECT * FROM district WHERE d_w_id = $1 AND d_id = $2", warehouseID, districtID)
	if err != nil {
		return nil, notFound(err, "district", warehouseID, districtID)
	}
	return &d, nil
}

// GetDistrictForUpdate retrieves a district row under a row lock; the lock
// serializes concurrent order-id allocation for the district.
func (t *Tx) GetDistrictForUpdate(ctx context.Context, warehouseID, districtID int) (*models.District, error) {
	var d models.District
	err := t.tx.GetContext(ctx, &d,
		"SELECT * FROM district WHERE d_w_id = $1 AND d_id = $2 FOR UPDATE", warehouseID, districtID)
	if err != nil {
		return nil, notFound(err, "district", warehouseID, districtID)
	}
	return &d, nil
}

// SetDistrictNextOrderID writes the district's order-id allocation counter
func (t *Tx) SetDistrictNextOrderID(ctx context.Context, warehouseID, districtID, next int) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE district SET d_next_o_id = $1 WHERE d_w_id = $2 AND d_id = $3",
		next, warehouseID, districtID)
	if err != nil {
		return fmt.Errorf("update district next order id: %w", err)
	}
	return requireRow(res, "district", warehouseID, districtID)
}

// AddDistrictYTD adds a payment amount to the district year-to-date total
func (t *Tx) AddDistrictYTD(ctx context.Context, warehouseID, districtID int, amount decimal.Decimal) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE district SET d_ytd = d_ytd + $1 WHERE d_w_id = $2 AND d_id = $3",
		amount, warehouseID, districtID)
	if err != nil {
		return fmt.Errorf("update district ytd: %w", err)
	}
	return requireRow(res, "district", warehouseID, districtID)
}

// GetCustomer retrieves a customer row
func (t *Tx) GetCustomer(ctx context.Context, warehouseID, districtID, customerID int) (*models.Customer, error) {
	var c models.Customer
	err := t.tx.GetContext(ctx, &c,
		"SELECT * FROM customer WHERE c_w_id = $1 AND c_d_id = $2 AND c_id = $3",
		warehouseID, districtID, customerID)
	if err != nil {
		return nil, notFound(err, "customer", warehouseID, districtID, customerID)
	}
	return &c, nil
}

// UpdateCustomerPayment writes the payment-mutated customer fields
func (t *Tx) UpdateCustomerPayment(ctx context.Context, c *models.Customer) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE customer
		SET c_balance = $1, c_ytd_payment = $2, c_payment_cnt = $3, c_data = $4
		WHERE c_w_id = $5 AND c_d_id = $6 AND c_id = $7`,
		c.Balance, c.YTDPayment, c.PaymentCnt, c.Data,
		c.WarehouseID, c.DistrictID, c.ID)
	if err != nil {
		return fmt.Errorf("update customer payment: %w", err)
	}
	return requireRow(res, "customer", c.WarehouseID, c.DistrictID, c.ID)
}

// ApplyCustomerDelivery credits a delivered order total to the customer
func (t *Tx) ApplyCustomerDelivery(ctx context.Context, warehouseID, districtID, customerID int, amount decimal.Decimal) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE customer
		SET c_balance = c_balance + $1, c_delivery_cnt = c_delivery_cnt + 1
		WHERE c_w_id = $2 AND c_d_id = $3 AND c_id = $4`,
		amount, warehouseID, districtID, customerID)
	if err != nil {
		return fmt.Errorf("update customer delivery: %w", err)
	}
	return requireRow(res, "customer", warehouseID, districtID, customerID)
}

// GetItem retrieves an item row
func (t *Tx) GetItem(ctx context.Context, itemID int) (*models.Item, error) {
	var i models.Item
	err := t.tx.GetContext(ctx, &i, "SELECT * FROM item WHERE i_id = $1", itemID)
	if err != nil {
		return nil, notFound(err, "item", itemID)
	}
	return &i, nil
}

// GetStockForUpdate retrieves a stock row under a row lock
func (t *Tx) GetStockForUpdate(ctx context.Context, warehouseID, itemID int) (*models.Stock, error) {
	var st models.Stock
	err := t.tx.GetContext(ctx, &st,
		"SELECT * FROM stock WHERE s_w_id = $1 AND s_i_id = $2 FOR UPDATE", warehouseID, itemID)
	if err != nil {
		return nil, notFound(err, "stock", warehouseID, itemID)
	}
	return &st, nil
}

// UpdateStock writes the order-mutated stock fields
func (t *Tx) UpdateStock(ctx context.Context, st *models.Stock) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE stock
		SET s_quantity = $1, s_ytd = $2, s_order_cnt = $3, s_remote_cnt = $4
		WHERE s_w_id = $5 AND s_i_id = $6`,
		st.Quantity, st.YTD, st.OrderCnt, st.RemoteCnt,
		st.WarehouseID, st.ItemID)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	return requireRow(res, "stock", st.WarehouseID, st.ItemID)
}

// InsertOrder creates an orders row; carrier id and all-local stay NULL
// until delivery and the final count update respectively.
func (t *Tx) InsertOrder(ctx context.Context, o *models.Order) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO orders (o_id, o_d_id, o_w_id, o_c_id, o_entry_d, o_carrier_id, o_ol_cnt, o_all_local)
		VALUES ($1, $2, $3, $4, $5, NULL, $6, NULL)`,
		o.ID, o.DistrictID, o.WarehouseID, o.CustomerID, o.EntryDate, o.LineCount)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// UpdateOrderCounts finalizes the line count and all-local flag
func (t *Tx) UpdateOrderCounts(ctx context.Context, warehouseID, districtID, orderID, lineCount int, allLocal bool) error {
	local := 0
	if allLocal {
		local = 1
	}
	res, err := t.tx.ExecContext(ctx,
		"UPDATE orders SET o_ol_cnt = $1, o_all_local = $2 WHERE o_w_id = $3 AND o_d_id = $4 AND o_id = $5",
		lineCount, local, warehouseID, districtID, orderID)
	if err != nil {
		return fmt.Errorf("update order counts: %w", err)
	}
	return requireRow(res, "order", warehouseID, districtID, orderID)
}

// SetOrderCarrier stamps the carrier id on a delivered order
func (t *Tx) SetOrderCarrier(ctx context.Context, warehouseID, districtID, orderID, carrierID int) error {
	res, err := t.tx.ExecContext(ctx,
		"UPDATE orders SET o_carrier_id = $1 WHERE o_w_id = $2 AND o_d_id = $3 AND o_id = $4",
		carrierID, warehouseID, districtID, orderID)
	if err != nil {
		return fmt.Errorf("update order carrier: %w", err)
	}
	return requireRow(res, "order", warehouseID, districtID, orderID)
}

// GetOrder retrieves an orders row
func (t *Tx) GetOrder(ctx context.Context, warehouseID, districtID, orderID int) (*models.Order, error) {
	var o models.Order
	err := t.tx.GetContext(ctx, &o,
		"SELECT * FROM orders WHERE o_w_id = $1 AND o_d_id = $2 AND o_id = $3",
		warehouseID, districtID, orderID)
	if err != nil {
		return nil, notFound(err, "order", warehouseID, districtID, orderID)
	}
	return &o, nil
}

// LatestOrderForCustomer returns the customer's most recently entered order
func (t *Tx) LatestOrderForCustomer(ctx context.Context, warehouseID, districtID, customerID int) (*models.Order, error) {
	var o models.Order
	err := t.tx.GetContext(ctx, &o, `
		SELECT * FROM orders
		WHERE o_w_id = $1 AND o_d_id = $2 AND o_c_id = $3
		ORDER BY o_id DESC
		LIMIT 1`,
		warehouseID, districtID, customerID)
	if err != nil {
		return nil, notFound(err, "order for customer", warehouseID, districtID, customerID)
	}
	return &o, nil
}

// InsertNewOrder queues an order as undelivered
func (t *Tx) InsertNewOrder(ctx context.Context, warehouseID, districtID, orderID int) error {
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO new_orders (no_o_id, no_d_id, no_w_id) VALUES ($1, $2, $3)",
		orderID, districtID, warehouseID)
	if err != nil {
		return fmt.Errorf("insert new order: %w", err)
	}
	return nil
}

// OldestNewOrder returns the smallest undelivered order id for the district.
// The row is locked so concurrent delivery calls do not pick the same order.
func (t *Tx) OldestNewOrder(ctx context.Context, warehouseID, districtID int) (int, bool, error) {
	var orderID int
	err := t.tx.GetContext(ctx, &orderID, `
		SELECT no_o_id FROM new_orders
		WHERE no_w_id = $1 AND no_d_id = $2
		ORDER BY no_o_id ASC
		LIMIT 1
		FOR UPDATE`,
		warehouseID, districtID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("select oldest new order: %w", err)
	}
	return orderID, true, nil
}

// DeleteNewOrder removes the undelivered marker for an order
func (t *Tx) DeleteNewOrder(ctx context.Context, warehouseID, districtID, orderID int) error {
	res, err := t.tx.ExecContext(ctx,
		"DELETE FROM new_orders WHERE no_w_id = $1 AND no_d_id = $2 AND no_o_id = $3",
		warehouseID, districtID, orderID)
	if err != nil {
		return fmt.Errorf("delete new order: %w", err)
	}
	return requireRow(res, "new order", warehouseID, districtID, orderID)
}

// InsertOrderLine creates one order line
func (t *Tx) InsertOrderLine(ctx context.Context, ol *models.OrderLine) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO order_line (ol_o_id, ol_d_id, ol_w_id, ol_number, ol_i_id,
		                        ol_supply_w_id, ol_delivery_d, ol_quantity, ol_amount, ol_dist_info)
		VALUES ($1, $2, $3, $4, $5, $6, NULL, $7, $8, $9)`,
		ol.OrderID, ol.DistrictID, ol.WarehouseID, ol.Number, ol.ItemID,
		ol.SupplyWarehouseID, ol.Quantity, ol.Amount, ol.DistInfo)
	if err != nil {
		return fmt.Errorf("insert order line: %w", err)
	}
	return nil
}

// OrderLines returns an order's lines ordered by line number
func (t *Tx) OrderLines(ctx context.Context, warehouseID, districtID, orderID int) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	err := t.tx.SelectContext(ctx, &lines, `
		SELECT * FROM order_line
		WHERE ol_w_id = $1 AND ol_d_id = $2 AND ol_o_id = $3
		ORDER BY ol_number ASC`,
		warehouseID, districtID, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order lines: %w", err)
	}
	return lines, nil
}

// MarkOrderLinesDelivered stamps the delivery timestamp on every line of an order
func (t *Tx) MarkOrderLinesDelivered(ctx context.Context, warehouseID, districtID, orderID int, deliveredAt time.Time) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE order_line
		SET ol_delivery_d = $1
		WHERE ol_w_id = $2 AND ol_d_id = $3 AND ol_o_id = $4`,
		deliveredAt, warehouseID, districtID, orderID)
	if err != nil {
		return fmt.Errorf("update order line delivery date: %w", err)
	}
	return nil
}

// InsertHistory appends a payment ledger row
func (t *Tx) InsertHistory(ctx context.Context, h *models.History) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO history (h_c_id, h_c_d_id, h_c_w_id, h_d_id, h_w_id, h_date, h_amount, h_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		h.CustomerID, h.CustomerDistrictID, h.CustomerWarehouseID,
		h.DistrictID, h.WarehouseID, h.Date, h.Amount, h.Data)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// CountLowStock counts distinct items in the district's order lines over
// [fromOrderID, toOrderID) whose stock in the warehouse is below threshold
func (t *Tx) CountLowStock(ctx context.Context, warehouseID, districtID, fromOrderID, toOrderID, threshold int) (int, error) {
	var count int
	err := t.tx.GetContext(ctx, &count, `
		SELECT COUNT(DISTINCT s.s_i_id)
		FROM order_line ol
		JOIN stock s ON s.s_w_id = ol.ol_w_id AND s.s_i_id = ol.ol_i_id
		WHERE ol.ol_w_id = $1
		  AND ol.ol_d_id = $2
		  AND ol.ol_o_id >= $3
		  AND ol.ol_o_id < $4
		  AND s.s_quantity < $5`,
		warehouseID, districtID, fromOrderID, toOrderID, threshold)
	if err != nil {
		return 0, fmt.Errorf("count low stock: %w", err)
	}
	return count, nil
}

// requireRow turns a zero-row UPDATE/DELETE into a not-found error so a row
// that disappeared mid-transaction cannot be silently skipped.
func requireRow(res sql.Result, what string, keys ...int) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%s %v: %w", what, keys, models.ErrNotFound)
	}
	return nil
}
