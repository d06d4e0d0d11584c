package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Warehouse is one row of the warehouse table.
type Warehouse struct {
	ID      int             `db:"w_id" json:"w_id"`
	Name    string          `db:"w_name" json:"w_name"`
	Street1 string          `db:"w_street_1" json:"w_street_1"`
	Street2 string          `db:"w_street_2" json:"w_street_2"`
	City    string          `db:"w_city" json:"w_city"`
	State   string          `db:"w_state" json:"w_state"`
	Zip     string          `db:"w_zip" json:"w_zip"`
	Tax     decimal.Decimal `db:"w_tax" json:"w_tax"`
	YTD     decimal.Decimal `db:"w_ytd" json:"w_ytd"`
}

// District is one of the ten districts of a warehouse. NextOrderID is the
// allocation source for new order ids.
type District struct {
	ID          int             `db:"d_id" json:"d_id"`
	WarehouseID int             `db:"d_w_id" json:"d_w_id"`
	Name        string          `db:"d_name" json:"d_name"`
	Street1     string          `db:"d_street_1" json:"d_street_1"`
	Street2     string          `db:"d_street_2" json:"d_street_2"`
	City        string          `db:"d_city" json:"d_city"`
	State       string          `db:"d_state" json:"d_state"`
	Zip         string          `db:"d_zip" json:"d_zip"`
	Tax         decimal.Decimal `db:"d_tax" json:"d_tax"`
	YTD         decimal.Decimal `db:"d_ytd" json:"d_ytd"`
	NextOrderID int             `db:"d_next_o_id" json:"d_next_o_id"`
}

// Customer credit standings.
const (
	CreditGood = "GC"
	CreditBad  = "BC"
)

// MaxCustomerData caps the customer data blob; the bad-credit audit trail is
// truncated from the front to this length.
const MaxCustomerData = 500

// Customer is one row of the customer table.
type Customer struct {
	ID          int             `db:"c_id" json:"c_id"`
	DistrictID  int             `db:"c_d_id" json:"c_d_id"`
	WarehouseID int             `db:"c_w_id" json:"c_w_id"`
	First       string          `db:"c_first" json:"c_first"`
	Middle      string          `db:"c_middle" json:"c_middle"`
	Last        string          `db:"c_last" json:"c_last"`
	Street1     string          `db:"c_street_1" json:"c_street_1"`
	Street2     string          `db:"c_street_2" json:"c_street_2"`
	City        string          `db:"c_city" json:"c_city"`
	State       string          `db:"c_state" json:"c_state"`
	Zip         string          `db:"c_zip" json:"c_zip"`
	Phone       string          `db:"c_phone" json:"c_phone"`
	Since       time.Time       `db:"c_since" json:"c_since"`
	Credit      string          `db:"c_credit" json:"c_credit"`
	CreditLim   int64           `db:"c_credit_lim" json:"c_credit_lim"`
	Discount    decimal.Decimal `db:"c_discount" json:"c_discount"`
	Balance     decimal.Decimal `db:"c_balance" json:"c_balance"`
	YTDPayment  decimal.Decimal `db:"c_ytd_payment" json:"c_ytd_payment"`
	PaymentCnt  int             `db:"c_payment_cnt" json:"c_payment_cnt"`
	DeliveryCnt int             `db:"c_delivery_cnt" json:"c_delivery_cnt"`
	Data        string          `db:"c_data" json:"c_data"`
}

// OriginalMarker is the token in item/stock data blobs that classifies an
// order line as brand ("B") rather than generic ("G").
const OriginalMarker = "ORIGINAL"

// Item is one row of the item catalog.
type Item struct {
	ID      int             `db:"i_id" json:"i_id"`
	ImageID int             `db:"i_im_id" json:"i_im_id"`
	Name    string          `db:"i_name" json:"i_name"`
	Price   decimal.Decimal `db:"i_price" json:"i_price"`
	Data    string          `db:"i_data" json:"i_data"`
}

// Stock is the per-warehouse stock row for an item.
type Stock struct {
	ItemID      int             `db:"s_i_id" json:"s_i_id"`
	WarehouseID int             `db:"s_w_id" json:"s_w_id"`
	Quantity    int             `db:"s_quantity" json:"s_quantity"`
	Dist01      string          `db:"s_dist_01" json:"s_dist_01"`
	Dist02      string          `db:"s_dist_02" json:"s_dist_02"`
	Dist03      string          `db:"s_dist_03" json:"s_dist_03"`
	Dist04      string          `db:"s_dist_04" json:"s_dist_04"`
	Dist05      string          `db:"s_dist_05" json:"s_dist_05"`
	Dist06      string          `db:"s_dist_06" json:"s_dist_06"`
	Dist07      string          `db:"s_dist_07" json:"s_dist_07"`
	Dist08      string          `db:"s_dist_08" json:"s_dist_08"`
	Dist09      string          `db:"s_dist_09" json:"s_dist_09"`
	Dist10      string          `db:"s_dist_10" json:"s_dist_10"`
	YTD         decimal.Decimal `db:"s_ytd" json:"s_ytd"`
	OrderCnt    int             `db:"s_order_cnt" json:"s_order_cnt"`
	RemoteCnt   int             `db:"s_remote_cnt" json:"s_remote_cnt"`
	Data        string          `db:"s_data" json:"s_data"`
}

// DistInfo returns the shipping-info snapshot string for a district (1..10).
func (s *Stock) DistInfo(districtID int) string {
	switch districtID {
	case 1:
		return s.Dist01
	case 2:
		return s.Dist02
	case 3:
		return s.Dist03
	case 4:
		return s.Dist04
	case 5:
		return s.Dist05
	case 6:
		return s.Dist06
	case 7:
		return s.Dist07
	case 8:
		return s.Dist08
	case 9:
		return s.Dist09
	case 10:
		return s.Dist10
	default:
		return ""
	}
}

// Order is one row of the orders table. CarrierID stays nil until delivery;
// AllLocal stays nil until the final line count is written.
type Order struct {
	ID          int       `db:"o_id" json:"o_id"`
	DistrictID  int       `db:"o_d_id" json:"o_d_id"`
	WarehouseID int       `db:"o_w_id" json:"o_w_id"`
	CustomerID  int       `db:"o_c_id" json:"o_c_id"`
	EntryDate   time.Time `db:"o_entry_d" json:"o_entry_d"`
	CarrierID   *int      `db:"o_carrier_id" json:"o_carrier_id"`
	LineCount   int       `db:"o_ol_cnt" json:"o_ol_cnt"`
	AllLocal    *int      `db:"o_all_local" json:"o_all_local"`
}

// NewOrder is the queue entry marking an order as undelivered. Its deletion
// is the only delivery marker.
type NewOrder struct {
	OrderID     int `db:"no_o_id" json:"no_o_id"`
	DistrictID  int `db:"no_d_id" json:"no_d_id"`
	WarehouseID int `db:"no_w_id" json:"no_w_id"`
}

// OrderLine is one line of an order. DeliveryDate stays nil until the
// delivery transaction stamps it.
type OrderLine struct {
	OrderID           int             `db:"ol_o_id" json:"ol_o_id"`
	DistrictID        int             `db:"ol_d_id" json:"ol_d_id"`
	WarehouseID       int             `db:"ol_w_id" json:"ol_w_id"`
	Number            int             `db:"ol_number" json:"ol_number"`
	ItemID            int             `db:"ol_i_id" json:"ol_i_id"`
	SupplyWarehouseID int             `db:"ol_supply_w_id" json:"ol_supply_w_id"`
	DeliveryDate      *time.Time      `db:"ol_delivery_d" json:"ol_delivery_d"`
	Quantity          int             `db:"ol_quantity" json:"ol_quantity"`
	Amount            decimal.Decimal `db:"ol_amount" json:"ol_amount"`
	DistInfo          string          `db:"ol_dist_info" json:"ol_dist_info"`
}

// History is an append-only payment ledger row.
type History struct {
	CustomerID          int             `db:"h_c_id" json:"h_c_id"`
	CustomerDistrictID  int             `db:"h_c_d_id" json:"h_c_d_id"`
	CustomerWarehouseID int             `db:"h_c_w_id" json:"h_c_w_id"`
	DistrictID          int             `db:"h_d_id" json:"h_d_id"`
	WarehouseID         int             `db:"h_w_id" json:"h_w_id"`
	Date                time.Time       `db:"h_date" json:"h_date"`
	Amount              decimal.Decimal `db:"h_amount" json:"h_amount"`
	Data                string          `db:"h_data" json:"h_data"`
}
