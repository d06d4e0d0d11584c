package service

import (
	"context"

	"tpcc-service/internal/models"
	"tpcc-service/internal/util"
)

// StockLevelResponse represents a low-stock count over the district's 20 most
// recently allocated orders.
type StockLevelResponse struct {
	WarehouseID   int `json:"warehouse_id"`
	DistrictID    int `json:"district_id"`
	Threshold     int `json:"threshold"`
	LowStockCount int `json:"low_stock_count"`
}

// StockLevel counts distinct items on the order lines of the district's last
// 20 allocated orders whose current stock quantity is below the threshold.
func (s *Service) StockLevel(ctx context.Context, warehouseID, districtID, threshold int) (*StockLevelResponse, error) {
	ctx, span := util.StartSpan(ctx, "Service.StockLevel")
	defer span.End()

	var resp *StockLevelResponse
	err := s.runInTx(ctx, "stock_level", func(r models.Repository) error {
		district, err := r.GetDistrict(ctx, warehouseID, districtID)
		if err != nil {
			return err
		}

		// Order ids below 1 cannot exist; the range is simply empty for a
		// fresh district.
		to := district.NextOrderID
		from := to - 20

		count, err := r.CountLowStock(ctx, warehouseID, districtID, from, to, threshold)
		if err != nil {
			return err
		}

		resp = &StockLevelResponse{
			WarehouseID:   warehouseID,
			DistrictID:    districtID,
			Threshold:     threshold,
			LowStockCount: count,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
