package models

import "time"

// Event types
const (
	EventTypeOrderEntered      = "ORDER_ENTERED"
	EventTypePaymentRecorded   = "PAYMENT_RECORDED"
	EventTypeOrderDelivered    = "ORDER_DELIVERED"
	EventTypeDeliveryRequested = "DELIVERY_REQUESTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderEnteredEvent is published after a New-Order transaction commits.
type OrderEnteredEvent struct {
	BaseEvent
	WarehouseID int    `json:"warehouse_id"`
	DistrictID  int    `json:"district_id"`
	CustomerID  int    `json:"customer_id"`
	OrderID     int    `json:"order_id"`
	LineCount   int    `json:"line_count"`
	TotalAmount string `json:"total_amount"`
	AllLocal    bool   `json:"all_local"`
}

// PaymentRecordedEvent is published after a Payment transaction commits.
type PaymentRecordedEvent struct {
	BaseEvent
	WarehouseID int    `json:"warehouse_id"`
	DistrictID  int    `json:"district_id"`
	CustomerID  int    `json:"customer_id"`
	Amount      string `json:"amount"`
}

// OrderDeliveredEvent is published after a Delivery transaction commits with
// a delivered order.
type OrderDeliveredEvent struct {
	BaseEvent
	WarehouseID int    `json:"warehouse_id"`
	DistrictID  int    `json:"district_id"`
	OrderID     int    `json:"order_id"`
	CustomerID  int    `json:"customer_id"`
	CarrierID   int    `json:"carrier_id"`
	TotalAmount string `json:"total_amount"`
}

// DeliveryRequestedEvent queues a deferred delivery for one district.
type DeliveryRequestedEvent struct {
	BaseEvent
	WarehouseID int `json:"warehouse_id"`
	DistrictID  int `json:"district_id"`
	CarrierID   int `json:"carrier_id"`
}
