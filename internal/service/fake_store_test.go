package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"tpcc-service/internal/models"

	"github.com/shopspring/decimal"
)

type wdKey struct{ w, d int }
type custKey struct{ w, d, c int }
type stockKey struct{ w, i int }
type orderKey struct{ w, d, o int }

// fakeState is an in-memory image of the relational schema.
type fakeState struct {
	warehouses map[int]models.Warehouse
	districts  map[wdKey]models.District
	customers  map[custKey]models.Customer
	items      map[int]models.Item
	stocks     map[stockKey]models.Stock
	orders     map[orderKey]models.Order
	newOrders  map[orderKey]bool
	lines      map[orderKey][]models.OrderLine
	history    []models.History
}

func newFakeState() *fakeState {
	return &fakeState{
		warehouses: map[int]models.Warehouse{},
		districts:  map[wdKey]models.District{},
		customers:  map[custKey]models.Customer{},
		items:      map[int]models.Item{},
		stocks:     map[stockKey]models.Stock{},
		orders:     map[orderKey]models.Order{},
		newOrders:  map[orderKey]bool{},
		lines:      map[orderKey][]models.OrderLine{},
	}
}

func (s *fakeState) clone() *fakeState {
	c := newFakeState()
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.districts {
		c.districts[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.stocks {
		c.stocks[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.newOrders {
		c.newOrders[k] = v
	}
	for k, v := range s.lines {
		lines := make([]models.OrderLine, len(v))
		copy(lines, v)
		c.lines[k] = lines
	}
	c.history = make([]models.History, len(s.history))
	copy(c.history, s.history)
	return c
}

// fakeFactory hands out transactions that work on a clone of the shared
// state; Commit publishes the clone, Rollback discards it. Uncommitted writes
// are never visible, which is what the rollback tests rely on.
type fakeFactory struct {
	state    *fakeState
	beginErr error
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{state: newFakeState()}
}

func (f *fakeFactory) Begin(ctx context.Context) (models.UnitOfWork, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return &fakeUOW{factory: f, work: f.state.clone()}, nil
}

type fakeUOW struct {
	factory   *fakeFactory
	work      *fakeState
	committed bool
}

func (u *fakeUOW) Commit() error {
	u.factory.state = u.work
	u.committed = true
	return nil
}

func (u *fakeUOW) Rollback() error {
	return nil
}

func notFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", models.ErrNotFound, fmt.Sprintf(format, args...))
}

func (u *fakeUOW) GetWarehouse(ctx context.Context, warehouseID int) (*models.Warehouse, error) {
	w, ok := u.work.warehouses[warehouseID]
	if !ok {
		return nil, notFoundf("warehouse %d", warehouseID)
	}
	return &w, nil
}

func (u *fakeUOW) AddWarehouseYTD(ctx context.Context, warehouseID int, amount decimal.Decimal) error {
	w, ok := u.work.warehouses[warehouseID]
	if !ok {
		return notFoundf("warehouse %d", warehouseID)
	}
	w.YTD = w.YTD.Add(amount)
	u.work.warehouses[warehouseID] = w
	return nil
}

func (u *fakeUOW) GetDistrict(ctx context.Context, warehouseID, districtID int) (*models.District, error) {
	d, ok := u.work.districts[wdKey{warehouseID, districtID}]
	if !ok {
		return nil, notFoundf("district %d/%d", warehouseID, districtID)
	}
	return &d, nil
}

func (u *fakeUOW) GetDistrictForUpdate(ctx context.Context, warehouseID, districtID int) (*models.District, error) {
	return u.GetDistrict(ctx, warehouseID, districtID)
}

func (u *fakeUOW) SetDistrictNextOrderID(ctx context.Context, warehouseID, districtID, next int) error {
	key := wdKey{warehouseID, districtID}
	d, ok := u.work.districts[key]
	if !ok {
		return notFoundf("district %d/%d", warehouseID, districtID)
	}
	d.NextOrderID = next
	u.work.districts[key] = d
	return nil
}

func (u *fakeUOW) AddDistrictYTD(ctx context.Context, warehouseID, districtID int, amount decimal.Decimal) error {
	key := wdKey{warehouseID, districtID}
	d, ok := u.work.districts[key]
	if !ok {
		return notFoundf("district %d/%d", warehouseID, districtID)
	}
	d.YTD = d.YTD.Add(amount)
	u.work.districts[key] = d
	return nil
}

func (u *fakeUOW) GetCustomer(ctx context.Context, warehouseID, districtID, customerID int) (*models.Customer, error) {
	c, ok := u.work.customers[custKey{warehouseID, districtID, customerID}]
	if !ok {
		return nil, notFoundf("customer %d/%d/%d", warehouseID, districtID, customerID)
	}
	return &c, nil
}

func (u *fakeUOW) UpdateCustomerPayment(ctx context.Context, c *models.Customer) error {
	key := custKey{c.WarehouseID, c.DistrictID, c.ID}
	if _, ok := u.work.customers[key]; !ok {
		return notFoundf("customer %d/%d/%d", c.WarehouseID, c.DistrictID, c.ID)
	}
	u.work.customers[key] = *c
	return nil
}

func (u *fakeUOW) ApplyCustomerDelivery(ctx context.Context, warehouseID, districtID, customerID int, amount decimal.Decimal) error {
	key := custKey{warehouseID, districtID, customerID}
	c, ok := u.work.customers[key]
	if !ok {
		return notFoundf("customer %d/%d/%d", warehouseID, districtID, customerID)
	}
	c.Balance = c.Balance.Add(amount)
	c.DeliveryCnt++
	u.work.customers[key] = c
	return nil
}

func (u *fakeUOW) GetItem(ctx context.Context, itemID int) (*models.Item, error) {
	i, ok := u.work.items[itemID]
	if !ok {
		return nil, notFoundf("item %d", itemID)
	}
	return &i, nil
}

func (u *fakeUOW) GetStockForUpdate(ctx context.Context, warehouseID, itemID int) (*models.Stock, error) {
	st, ok := u.work.stocks[stockKey{warehouseID, itemID}]
	if !ok {
		return nil, notFoundf("stock %d/%d", warehouseID, itemID)
	}
	return &st, nil
}

func (u *fakeUOW) UpdateStock(ctx context.Context, st *models.Stock) error {
	key := stockKey{st.WarehouseID, st.ItemID}
	if _, ok := u.work.stocks[key]; !ok {
		return notFoundf("stock %d/%d", st.WarehouseID, st.ItemID)
	}
	u.work.stocks[key] = *st
	return nil
}

func (u *fakeUOW) InsertOrder(ctx context.Context, o *models.Order) error {
	u.work.orders[orderKey{o.WarehouseID, o.DistrictID, o.ID}] = *o
	return nil
}

func (u *fakeUOW) UpdateOrderCounts(ctx context.Context, warehouseID, districtID, orderID, lineCount int, allLocal bool) error {
	key := orderKey{warehouseID, districtID, orderID}
	o, ok := u.work.orders[key]
	if !ok {
		return notFoundf("order %d/%d/%d", warehouseID, districtID, orderID)
	}
	local := 0
	if allLocal {
		local = 1
	}
	o.LineCount = lineCount
	o.AllLocal = &local
	u.work.orders[key] = o
	return nil
}

func (u *fakeUOW) SetOrderCarrier(ctx context.Context, warehouseID, districtID, orderID, carrierID int) error {
	key := orderKey{warehouseID, districtID, orderID}
	o, ok := u.work.orders[key]
	if !ok {
		return notFoundf("order %d/%d/%d", warehouseID, districtID, orderID)
	}
	o.CarrierID = &carrierID
	u.work.orders[key] = o
	return nil
}

func (u *fakeUOW) GetOrder(ctx context.Context, warehouseID, districtID, orderID int) (*models.Order, error) {
	o, ok := u.work.orders[orderKey{warehouseID, districtID, orderID}]
	if !ok {
		return nil, notFoundf("order %d/%d/%d", warehouseID, districtID, orderID)
	}
	return &o, nil
}

func (u *fakeUOW) LatestOrderForCustomer(ctx context.Context, warehouseID, districtID, customerID int) (*models.Order, error) {
	var latest *models.Order
	for key, o := range u.work.orders {
		if key.w != warehouseID || key.d != districtID || o.CustomerID != customerID {
			continue
		}
		if latest == nil || o.ID > latest.ID {
			cp := o
			latest = &cp
		}
	}
	if latest == nil {
		return nil, notFoundf("no orders for customer %d/%d/%d", warehouseID, districtID, customerID)
	}
	return latest, nil
}

func (u *fakeUOW) InsertNewOrder(ctx context.Context, warehouseID, districtID, orderID int) error {
	u.work.newOrders[orderKey{warehouseID, districtID, orderID}] = true
	return nil
}

func (u *fakeUOW) OldestNewOrder(ctx context.Context, warehouseID, districtID int) (int, bool, error) {
	oldest := 0
	found := false
	for key := range u.work.newOrders {
		if key.w != warehouseID || key.d != districtID {
			continue
		}
		if !found || key.o < oldest {
			oldest = key.o
			found = true
		}
	}
	return oldest, found, nil
}

func (u *fakeUOW) DeleteNewOrder(ctx context.Context, warehouseID, districtID, orderID int) error {
	key := orderKey{warehouseID, districtID, orderID}
	if !u.work.newOrders[key] {
		return notFoundf("new order %d/%d/%d", warehouseID, districtID, orderID)
	}
	delete(u.work.newOrders, key)
	return nil
}

func (u *fakeUOW) InsertOrderLine(ctx context.Context, ol *models.OrderLine) error {
	key := orderKey{ol.WarehouseID, ol.DistrictID, ol.OrderID}
	u.work.lines[key] = append(u.work.lines[key], *ol)
	return nil
}

func (u *fakeUOW) OrderLines(ctx context.Context, warehouseID, districtID, orderID int) ([]models.OrderLine, error) {
	src := u.work.lines[orderKey{warehouseID, districtID, orderID}]
	lines := make([]models.OrderLine, len(src))
	copy(lines, src)
	sort.Slice(lines, func(i, j int) bool { return lines[i].Number < lines[j].Number })
	return lines, nil
}

func (u *fakeUOW) MarkOrderLinesDelivered(ctx context.Context, warehouseID, districtID, orderID int, deliveredAt time.Time) error {
	key := orderKey{warehouseID, districtID, orderID}
	lines := u.work.lines[key]
	for i := range lines {
		d := deliveredAt
		lines[i].DeliveryDate = &d
	}
	u.work.lines[key] = lines
	return nil
}

func (u *fakeUOW) InsertHistory(ctx context.Context, h *models.History) error {
	u.work.history = append(u.work.history, *h)
	return nil
}

func (u *fakeUOW) CountLowStock(ctx context.Context, warehouseID, districtID, fromOrderID, toOrderID, threshold int) (int, error) {
	seen := map[int]bool{}
	for key, lines := range u.work.lines {
		if key.w != warehouseID || key.d != districtID || key.o < fromOrderID || key.o >= toOrderID {
			continue
		}
		for _, line := range lines {
			st, ok := u.work.stocks[stockKey{warehouseID, line.ItemID}]
			if ok && st.Quantity < threshold {
				seen[line.ItemID] = true
			}
		}
	}
	return len(seen), nil
}

// seedBasic loads one warehouse with one district, one customer, two items
// and their stock rows. Tax and discount values match the worked pricing
// example used by the order tests.
func seedBasic(f *fakeFactory) {
	f.state.warehouses[1] = models.Warehouse{
		ID:   1,
		Name: "W-One",
		Tax:  decimal.RequireFromString("0.10"),
		YTD:  decimal.Zero,
	}
	f.state.districts[wdKey{1, 1}] = models.District{
		ID:          1,
		WarehouseID: 1,
		Name:        "D-One",
		Tax:         decimal.RequireFromString("0.05"),
		YTD:         decimal.Zero,
		NextOrderID: 3001,
	}
	f.state.customers[custKey{1, 1, 42}] = models.Customer{
		ID:          42,
		DistrictID:  1,
		WarehouseID: 1,
		First:       "Alice",
		Middle:      "OE",
		Last:        "BARBARBAR",
		Credit:      models.CreditGood,
		Discount:    decimal.RequireFromString("0.02"),
		Balance:     decimal.RequireFromString("-10.00"),
		YTDPayment:  decimal.RequireFromString("10.00"),
		Since:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	f.state.items[101] = models.Item{
		ID:    101,
		Name:  "Widget",
		Price: decimal.RequireFromString("10.00"),
		Data:  "some ORIGINAL data",
	}
	f.state.items[102] = models.Item{
		ID:    102,
		Name:  "Gadget",
		Price: decimal.RequireFromString("4.25"),
		Data:  "plain data",
	}
	f.state.stocks[stockKey{1, 101}] = models.Stock{
		ItemID:      101,
		WarehouseID: 1,
		Quantity:    50,
		Dist01:      "dist-info-one",
		YTD:         decimal.Zero,
		Data:        "stock ORIGINAL data",
	}
	f.state.stocks[stockKey{1, 102}] = models.Stock{
		ItemID:      102,
		WarehouseID: 1,
		Quantity:    3,
		Dist01:      "dist-info-two",
		YTD:         decimal.Zero,
		Data:        "stock data",
	}
}

func newTestService(f *fakeFactory) *Service {
	return NewService(f, nil, 1)
}
