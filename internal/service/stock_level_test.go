package service

import (
	"context"
	"testing"

	"tpcc-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockLevelCountsDistinctLowItems(t *testing.T) {
	f := newFakeFactory()
	seedBasic(f)
	svc := newTestService(f)
	ctx := context.Background()

	// two orders touching both items; item 102 appears twice but counts once
	for _, lines := range [][]OrderLineRequest{
		{{ItemID: 101, SupplyWarehouseID: 1, Quantity: 1}, {ItemID: 102, SupplyWarehouseID: 1, Quantity: 1}},
		{{ItemID: 102, SupplyWarehouseID: 1, Quantity: 1}},
	} {
		_, err := svc.NewOrder(ctx, &NewOrderRequest{
			WarehouseID: 1, DistrictID: 1, CustomerID: 42, OrderLines: lines,
		})
		require.NoError(t, err)
	}

	// stock after the orders: item 101 at 49, item 102 at 1
	resp, err := svc.StockLevel(ctx, 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.LowStockCount)

	resp, err = svc.StockLevel(ctx, 1, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.LowStockCount)

	resp, err = svc.StockLevel(ctx, 1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.LowStockCount)
}

func TestStockLevelFreshDistrict(t *testing.T) {
	f := newFakeFactory()
	seedBasic(f)
	svc := newTestService(f)

	resp, err := svc.StockLevel(context.Background(), 1, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.LowStockCount)
}

func TestStockLevelWindowExcludesOldOrders(t *testing.T) {
	f := newFakeFactory()
	seedBasic(f)
	// an ancient order far below the 20-order window
	f.state.lines[orderKey{1, 1, 100}] = []models.OrderLine{
		{OrderID: 100, DistrictID: 1, WarehouseID: 1, Number: 1, ItemID: 102, Quantity: 1},
	}
	svc := newTestService(f)
	ctx := context.Background()

	resp, err := svc.StockLevel(ctx, 1, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.LowStockCount)

	// a fresh order brings the same item into the window
	_, err = svc.NewOrder(ctx, &NewOrderRequest{
		WarehouseID: 1, DistrictID: 1, CustomerID: 42,
		OrderLines: []OrderLineRequest{{ItemID: 102, SupplyWarehouseID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	resp, err = svc.StockLevel(ctx, 1, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.LowStockCount)
}

func TestStockLevelUnknownDistrict(t *testing.T) {
	f := newFakeFactory()
	seedBasic(f)
	svc := newTestService(f)

	_, err := svc.StockLevel(context.Background(), 1, 9, 10)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
