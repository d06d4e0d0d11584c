package service

import (
	"context"
	"fmt"
	"time"

	"tpcc-service/internal/models"
	"tpcc-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentRequest represents a payment against a customer balance. Amount is
// accepted as a JSON number or string and kept exact.
type PaymentRequest struct {
	WarehouseID int             `json:"warehouse_id" binding:"required"`
	DistrictID  int             `json:"district_id" binding:"required"`
	CustomerID  int             `json:"customer_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
}

// PaymentResponse represents the recorded payment
type PaymentResponse struct {
	Warehouse     WarehouseInfo   `json:"warehouse"`
	District      DistrictInfo    `json:"district"`
	Customer      PaymentCustomer `json:"customer"`
	PaymentDate   time.Time       `json:"payment_date"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
}

// WarehouseInfo is the warehouse address echoed in a payment result
type WarehouseInfo struct {
	ID      int    `json:"w_id"`
	Name    string `json:"w_name"`
	Street1 string `json:"w_street_1"`
	Street2 string `json:"w_street_2"`
	City    string `json:"w_city"`
	State   string `json:"w_state"`
	Zip     string `json:"w_zip"`
}

// DistrictInfo is the district address echoed in a payment result
type DistrictInfo struct {
	ID      int    `json:"d_id"`
	Name    string `json:"d_name"`
	Street1 string `json:"d_street_1"`
	Street2 string `json:"d_street_2"`
	City    string `json:"d_city"`
	State   string `json:"d_state"`
	Zip     string `json:"d_zip"`
}

// PaymentCustomer is the customer state after the payment applied
type PaymentCustomer struct {
	ID         int             `json:"c_id"`
	First      string          `json:"c_first"`
	Middle     string          `json:"c_middle"`
	Last       string          `json:"c_last"`
	Street1    string          `json:"c_street_1"`
	Street2    string          `json:"c_street_2"`
	City       string          `json:"c_city"`
	State      string          `json:"c_state"`
	Zip        string          `json:"c_zip"`
	Phone      string          `json:"c_phone"`
	Since      time.Time       `json:"c_since"`
	Credit     string          `json:"c_credit"`
	CreditLim  int64           `json:"c_credit_lim"`
	Discount   decimal.Decimal `json:"c_discount"`
	Balance    decimal.Decimal `json:"c_balance"`
	YTDPayment decimal.Decimal `json:"c_ytd_payment"`
	PaymentCnt int             `json:"c_payment_cnt"`
	Data       string          `json:"c_data"`
}

// Payment records a customer payment: warehouse and district year-to-date
// totals grow by the amount, the customer balance shrinks by it, and a
// history row is appended. Bad-credit customers get the payment prepended to
// their data blob as an audit token.
func (s *Service) Payment(ctx context.Context, req *PaymentRequest) (*PaymentResponse, error) {
	ctx, span := util.StartSpan(ctx, "Service.Payment")
	defer span.End()

	if !req.Amount.IsPositive() {
		util.PaymentsFailedTotal.WithLabelValues("non_positive_amount").Inc()
		return nil, fmt.Errorf("%w: payment amount must be positive, got %s",
			models.ErrInvalidArgument, req.Amount)
	}

	var resp *PaymentResponse
	err := s.runInTx(ctx, "payment", func(r models.Repository) error {
		var err error
		resp, err = s.recordPayment(ctx, r, req)
		return err
	})
	if err != nil {
		if models.IsNotFound(err) {
			util.PaymentsFailedTotal.WithLabelValues("not_found").Inc()
		} else {
			util.PaymentsFailedTotal.WithLabelValues("store_error").Inc()
		}
		return nil, err
	}

	util.PaymentsTotal.Inc()
	s.logger.Info("Payment recorded",
		zap.Int("warehouse_id", req.WarehouseID),
		zap.Int("district_id", req.DistrictID),
		zap.Int("customer_id", req.CustomerID),
		zap.String("amount", req.Amount.String()))

	if s.eventPublisher != nil {
		event := &models.PaymentRecordedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypePaymentRecorded,
				Timestamp: time.Now(),
			},
			WarehouseID: req.WarehouseID,
			DistrictID:  req.DistrictID,
			CustomerID:  req.CustomerID,
			Amount:      req.Amount.String(),
		}
		if err := s.eventPublisher.PublishPaymentRecorded(ctx, event); err != nil {
			s.logger.Error("Failed to publish PaymentRecorded event", zap.Error(err))
		}
	}

	return resp, nil
}

func (s *Service) recordPayment(ctx context.Context, r models.Repository, req *PaymentRequest) (*PaymentResponse, error) {
	warehouse, err := r.GetWarehouse(ctx, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	if err := r.AddWarehouseYTD(ctx, req.WarehouseID, req.Amount); err != nil {
		return nil, err
	}

	district, err := r.GetDistrict(ctx, req.WarehouseID, req.DistrictID)
	if err != nil {
		return nil, err
	}
	if err := r.AddDistrictYTD(ctx, req.WarehouseID, req.DistrictID, req.Amount); err != nil {
		return nil, err
	}

	customer, err := r.GetCustomer(ctx, req.WarehouseID, req.DistrictID, req.CustomerID)
	if err != nil {
		return nil, err
	}

	customer.Balance = customer.Balance.Sub(req.Amount)
	customer.YTDPayment = customer.YTDPayment.Add(req.Amount)
	customer.PaymentCnt++
	if customer.Credit == models.CreditBad {
		customer.Data = badCreditData(customer, req.Amount)
	}
	if err := r.UpdateCustomerPayment(ctx, customer); err != nil {
		return nil, err
	}

	paymentDate := time.Now().UTC()
	history := &models.History{
		CustomerID:          req.CustomerID,
		CustomerDistrictID:  req.DistrictID,
		CustomerWarehouseID: req.WarehouseID,
		DistrictID:          req.DistrictID,
		WarehouseID:         req.WarehouseID,
		Date:                paymentDate,
		Amount:              req.Amount,
		Data:                fmt.Sprintf("%s %s", warehouse.Name, district.Name),
	}
	if err := r.InsertHistory(ctx, history); err != nil {
		return nil, err
	}

	return &PaymentResponse{
		Warehouse: WarehouseInfo{
			ID:      warehouse.ID,
			Name:    warehouse.Name,
			Street1: warehouse.Street1,
			Street2: warehouse.Street2,
			City:    warehouse.City,
			State:   warehouse.State,
			Zip:     warehouse.Zip,
		},
		District: DistrictInfo{
			ID:      district.ID,
			Name:    district.Name,
			Street1: district.Street1,
			Street2: district.Street2,
			City:    district.City,
			State:   district.State,
			Zip:     district.Zip,
		},
		Customer: PaymentCustomer{
			ID:         customer.ID,
			First:      customer.First,
			Middle:     customer.Middle,
			Last:       customer.Last,
			Street1:    customer.Street1,
			Street2:    customer.Street2,
			City:       customer.City,
			State:      customer.State,
			Zip:        customer.Zip,
			Phone:      customer.Phone,
			Since:      customer.Since,
			Credit:     customer.Credit,
			CreditLim:  customer.CreditLim,
			Discount:   customer.Discount,
			Balance:    customer.Balance,
			YTDPayment: customer.YTDPayment,
			PaymentCnt: customer.PaymentCnt,
			Data:       customer.Data,
		},
		PaymentDate:   paymentDate,
		PaymentAmount: req.Amount,
	}, nil
}

// badCreditData prepends the legacy audit token to the customer data blob and
// truncates to the maximum length. The district and warehouse ids and the
// amount are each repeated to match the historical consumer's format.
func badCreditData(c *models.Customer, amount decimal.Decimal) string {
	token := fmt.Sprintf("%d|%d|%d|%d|%d|%s|%s|",
		c.ID, c.DistrictID, c.WarehouseID, c.DistrictID, c.WarehouseID, amount, amount)
	combined := token + c.Data
	if len(combined) > models.MaxCustomerData {
		combined = combined[:models.MaxCustomerData]
	}
	return combined
}
