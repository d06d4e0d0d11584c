package service

import (
	"context"
	"testing"

	"tpcc-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderAllocatesDistrictCounter(t *testing.T) {
	f := newFakeFactory()
	seedBasic(f)
	svc := newTestService(f)
	ctx := context.Background()

	req := &NewOrderRequest{
		WarehouseID: 1,
		DistrictID:  1,
		CustomerID:  42,
		OrderLines: []OrderLineRequest{
			{ItemID: 101, SupplyWarehouseID: 1, Quantity: 2},
		},
	}

	resp, err := svc.NewOrder(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 3001, resp.OrderID)
	assert.Equal(t, 3002, f.state.districts[wdKey{1, 1}].NextOrderID)

	resp2, err := svc.NewOrder(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 3002, resp2.OrderID)
	assert.Equal(t, 3003, f.state.districts[wdKey{1, 1}].NextOrderID)
}

func TestNewOrderPricing(t *testing.T) {
	// warehouse tax 0.10, district tax 0.05, discount 0.02, one line of
	// quantity 5 at 10.00: 50.00 * 1.15 - 50.00 * 0.02 = 56.50
	f := newFakeFactory()
	seedBasic(f)
	svc := newTestService(f)

	resp, err := svc.NewOrder(context.Background(), &NewOrderRequest{
		WarehouseID: 1,
		DistrictID:  1,
		CustomerID:  42,
		OrderLines: []OrderLineRequest{
			{ItemID: 101, SupplyWarehouseID: 1, Quantity: 5},
		},
	})
	require.NoError(t, err)

	require.Len(t, resp.OrderLines, 1)
	assert.True(t, resp.OrderLines[0].LineAmount.Equal(decimal.RequireFromString("50.00")),
		"line amount was %s", resp.OrderLines[0].LineAmount)
	assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("56.50")),
		"total was %s", resp.TotalAmount)
	assert.True(t, resp.WarehouseTax.Equal(decimal.RequireFromString("0.10")))
	assert.True(t, resp.DistrictTax.Equal(decimal.RequireFromString("0.05")))
}

func TestNewOrderStockWraparound(t *testing.T) {
	// quantity 3 on hand, 5 requested: 3 - 5 + 91 = 89
	f := newFakeFactory()
	seedBasic(f)
	svc := newTestService(f)

	resp, err := svc.NewOrder(context.Background(), &NewOrderRequest{
		WarehouseID: 1,
		DistrictID:  1,
		CustomerID:  42,
		OrderLines: []OrderLineRequest{
			{ItemID: 102, SupplyWarehouseID: 1, Quantity: 5},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 89, resp.OrderLines[0].StockQuantity)
	assert.Equal(t, 89, f.state.stocks[stockKey{1, 102}].Quantity)
}

func TestNewOrderStockWraparoundAtZero(t *testing.T) {
	f := newFakeFactory()
	seedBasic(f)
	st := f.state.stocks[stockKey{1, 102}]
	st.Quantity = 5
	f.state.stocks[stockKey{1, 102}] = st
	svc := newTestService(f)

	resp, err := svc.NewOrder(context.Background(), &NewOrderRequest{
		WarehouseID: 1,
		DistrictID:  1,
		CustomerID:  42,
		OrderLines: []OrderLineRequest{
			{ItemID: 102, SupplyWarehouseID: 1, Quantity: 5},
		},
	})
	require.NoError(t, err)

	// 5 - 5 = 0 is below 1, so the restock offset applies
	assert.Equal(t, 91, resp.OrderLines[0].StockQuantity)
}

func TestNewOrderStockCounters(t *testing.T) {
	f := newFakeFactory()
	seedBasic(f)
	svc := newTestService(f)

	_, err := svc.NewOrder(context.Background(), &NewOrderRequest{
		WarehouseID: 1,
		DistrictID:  1,
		CustomerID:  42,
		OrderLines: []OrderLineRequest{
			{ItemID: 101, SupplyWarehouseID: 1, Quantity: 4},
		},
	})
	require.NoError(t, err)

	st := f.state.stocks[stockKey{1, 101}]
	assert.Equal(t, 46, st.Quantity)
	assert.Equal(t, 1, st.OrderCnt)
	assert.Equal(t, 0, st.RemoteCnt)
	assert.True(t, st.YTD.Equal(decimal.NewFromInt(4)))
}

func TestNewOrderBrandGeneric(t *testing.T) {
	f := newFakeFactory()
	seedBasic(f)
	svc := newTestService(f)

	resp, err := svc.NewOrder(context.Background(), &NewOrderRequest{
		WarehouseID: 1,
		DistrictID:  1,
		CustomerID:  42,
		OrderLines: []OrderLineRequest{
			{ItemID: 101, SupplyWarehouseID: 1, Quantity: 1},
			{ItemID: 102, SupplyWarehouseID: 1, Quantity: 1},
		},
	})
	require.NoError(t, err)

	// item 101 and its stock both carry the marker, item 102 does not
	assert.Equal(t, "B", resp.OrderLines[0].BrandGeneric)
	assert.Equal(t, "G", resp.OrderLines[1].BrandGeneric)
}

func TestNewOrderLineCountBounds(t *testing.T) {
	f := newFakeFactory()
	seedBasic(f)
	svc := newTestService(f)
	ctx := context.Background()

	_, err := svc.NewOrder(ctx, &NewOrderRequest{
		WarehouseID: 1, DistrictID: 1, CustomerID: 42,
	})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	tooMany := make([]OrderLineRequest, MaxOrderLines+1)
	for i := range tooMany {
		tooMany[i] = OrderLineRequest{ItemID: 101, SupplyWarehouseID: 1, Quantity: 1}
	}
	_, err = svc.NewOrder(ctx, &NewOrderRequest{
		WarehouseID: 1, DistrictID: 1, CustomerID: 42, OrderLines: tooMany,
	})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	// nothing was written
	assert.Equal(t, 3001, f.state.districts[wdKey{1, 1}].NextOrderID)
	assert.Empty(t, f.state.orders)
}

func TestNewOrderUnknownItemAbortsWholeOrder(t *testing.T) {
	f := newFakeFactory()
	seedBasic(f)
	svc := newTestService(f)

	_, err := svc.NewOrder(context.Background(), &NewOrderRequest{
		WarehouseID: 1,
		DistrictID:  1,
		CustomerID:  42,
		OrderLines: []OrderLineRequest{
			{ItemID: 101, SupplyWarehouseID: 1, Quantity: 2},
			{ItemID: 999, SupplyWarehouseID: 1, Quantity: 1},
		},
	})
	assert.ErrorIs(t, err, models.ErrNotFound)

	// the whole transaction rolled back, including the first valid line
	// and the district counter increment
	assert.Equal(t, 3001, f.state.districts[wdKey{1, 1}].NextOrderID)
	assert.Empty(t, f.state.orders)
	assert.Empty(t, f.state.newOrders)
	assert.Empty(t, f.state.lines)
	assert.Equal(t, 50, f.state.stocks[stockKey{1, 101}].Quantity)
}

func TestNewOrderRemoteLineClearsAllLocal(t *testing.T) {
	f := newFakeFactory()
	seedBasic(f)
	f.state.warehouses[2] = models.Warehouse{ID: 2, Name: "W-Two", Tax: decimal.Zero, YTD: decimal.Zero}
	f.state.stocks[stockKey{2, 101}] = models.Stock{
		ItemID: 101, WarehouseID: 2, Quantity: 30, Dist01: "remote-info", YTD: decimal.Zero,
	}
	svc := newTestService(f)

	resp, err := svc.NewOrder(context.Background(), &NewOrderRequest{
		WarehouseID: 1,
		DistrictID:  1,
		CustomerID:  42,
		OrderLines: []OrderLineRequest{
			{ItemID: 101, SupplyWarehouseID: 2, Quantity: 3},
		},
	})
	require.NoError(t, err)

	o := f.state.orders[orderKey{1, 1, resp.OrderID}]
	require.NotNil(t, o.AllLocal)
	assert.Equal(t, 0, *o.AllLocal)
	assert.Equal(t, 1, f.state.stocks[stockKey{2, 101}].RemoteCnt)
}

func TestNewOrderPersistsQueueEntryAndLines(t *testing.T) {
	f := newFakeFactory()
	seedBasic(f)
	svc := newTestService(f)

	resp, err := svc.NewOrder(context.Background(), &NewOrderRequest{
		WarehouseID: 1,
		DistrictID:  1,
		CustomerID:  42,
		OrderLines: []OrderLineRequest{
			{ItemID: 101, SupplyWarehouseID: 1, Quantity: 2},
			{ItemID: 102, SupplyWarehouseID: 1, Quantity: 1},
		},
	})
	require.NoError(t, err)

	key := orderKey{1, 1, resp.OrderID}
	assert.True(t, f.state.newOrders[key])

	o := f.state.orders[key]
	assert.Equal(t, 42, o.CustomerID)
	assert.Nil(t, o.CarrierID)
	assert.Equal(t, 2, o.LineCount)

	lines := f.state.lines[key]
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[0].Number)
	assert.Equal(t, 2, lines[1].Number)
	assert.Equal(t, "dist-info-one", lines[0].DistInfo)
	assert.Nil(t, lines[0].DeliveryDate)
}
