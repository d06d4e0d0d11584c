package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository is the set of typed row accessors a business transaction needs.
// Implementations are bound to one open store transaction; every ForUpdate
// read takes a row lock that is held until commit or rollback.
type Repository interface {
	GetWarehouse(ctx context.Context, warehouseID int) (*Warehouse, error)
	AddWarehouseYTD(ctx context.Context, warehouseID int, amount decimal.Decimal) error

	GetDistrict(ctx context.Context, warehouseID, districtID int) (*District, error)
	GetDistrictForUpdate(ctx context.Context, warehouseID, districtID int) (*District, error)
	SetDistrictNextOrderID(ctx context.Context, warehouseID, districtID, next int) error
	AddDistrictYTD(ctx context.Context, warehouseID, districtID int, amount decimal.Decimal) error

	GetCustomer(ctx context.Context, warehouseID, districtID, customerID int) (*Customer, error)
	UpdateCustomerPayment(ctx context.Context, c *Customer) error
	ApplyCustomerDelivery(ctx context.Context, warehouseID, districtID, customerID int, amount decimal.Decimal) error

	GetItem(ctx context.Context, itemID int) (*Item, error)

	GetStockForUpdate(ctx context.Context, warehouseID, itemID int) (*Stock, error)
	UpdateStock(ctx context.Context, st *Stock) error

	InsertOrder(ctx context.Context, o *Order) error
	UpdateOrderCounts(ctx context.Context, warehouseID, districtID, orderID, lineCount int, allLocal bool) error
	SetOrderCarrier(ctx context.Context, warehouseID, districtID, orderID, carrierID int) error
	GetOrder(ctx context.Context, warehouseID, districtID, orderID int) (*Order, error)
	LatestOrderForCustomer(ctx context.Context, warehouseID, districtID, customerID int) (*Order, error)

	InsertNewOrder(ctx context.Context, warehouseID, districtID, orderID int) error
	OldestNewOrder(ctx context.Context, warehouseID, districtID int) (int, bool, error)
	DeleteNewOrder(ctx context.Context, warehouseID, districtID, orderID int) error

	InsertOrderLine(ctx context.Context, ol *OrderLine) error
	OrderLines(ctx context.Context, warehouseID, districtID, orderID int) ([]OrderLine, error)
	MarkOrderLinesDelivered(ctx context.Context, warehouseID, districtID, orderID int, deliveredAt time.Time) error

	InsertHistory(ctx context.Context, h *History) error

	// CountLowStock counts distinct items in order lines of the district's
	// orders with id in [fromOrderID, toOrderID) whose stock quantity in the
	// warehouse is below threshold.
	CountLowStock(ctx context.Context, warehouseID, districtID, fromOrderID, toOrderID, threshold int) (int, error)
}

// UnitOfWork is one store transaction. Rollback after a successful Commit is
// a no-op, so callers can defer it unconditionally.
type UnitOfWork interface {
	Repository
	Commit() error
	Rollback() error
}

// UnitOfWorkFactory opens a fresh transaction per business operation.
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// OrderSort is the closed set of sortable columns for the order listing.
// Sorting is selected from this enumeration only; user input never reaches
// query text.
type OrderSort string

const (
	SortOrderID      OrderSort = "order_id"
	SortEntryDate    OrderSort = "entry_date"
	SortCustomerLast OrderSort = "customer_last"
	SortWarehouseID  OrderSort = "warehouse_id"
	SortDistrictID   OrderSort = "district_id"
	SortCarrierID    OrderSort = "carrier_id"
)

// ParseOrderSort maps a request value onto the enumeration, defaulting to
// entry date.
func ParseOrderSort(s string) (OrderSort, bool) {
	switch OrderSort(s) {
	case SortOrderID, SortEntryDate, SortCustomerLast, SortWarehouseID, SortDistrictID, SortCarrierID:
		return OrderSort(s), true
	case "":
		return SortEntryDate, true
	default:
		return SortEntryDate, false
	}
}

// OrderQuery is the filter/sort/pagination input for the order listing.
type OrderQuery struct {
	WarehouseID *int
	DistrictID  *int
	CustomerID  *int
	OrderID     *int
	FromDate    *time.Time
	ToDate      *time.Time
	SortBy      OrderSort
	Descending  bool
	Page        int
	PerPage     int
}

// OrderSummary is one page row of the order listing.
type OrderSummary struct {
	Order
	CustomerFirst  string          `db:"c_first" json:"customer_first"`
	CustomerMiddle string          `db:"c_middle" json:"customer_middle"`
	CustomerLast   string          `db:"c_last" json:"customer_last"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`
	IsDelivered    bool            `db:"is_delivered" json:"is_delivered"`
	Lines          int64           `db:"line_count" json:"line_count"`
}

// CatalogRepository serves the reference/lookup reads outside the
// transactional core.
type CatalogRepository interface {
	ListWarehouses(ctx context.Context, limit int) ([]Warehouse, error)
	ListDistricts(ctx context.Context, warehouseID int) ([]District, error)
	SearchCustomers(ctx context.Context, warehouseID, districtID int, search string, limit int) ([]Customer, error)
	SearchItems(ctx context.Context, search string, limit int) ([]Item, error)
	ListOrders(ctx context.Context, q OrderQuery) ([]OrderSummary, int64, error)
}
