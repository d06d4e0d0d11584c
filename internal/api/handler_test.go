package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tpcc-service/internal/models"
	"tpcc-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalogRepo struct {
	lastOrderQuery models.OrderQuery
	lastLimit      int
	orderTotal     int64
}

func (s *stubCatalogRepo) ListWarehouses(ctx context.Context, limit int) ([]models.Warehouse, error) {
	s.lastLimit = limit
	return []models.Warehouse{}, nil
}

func (s *stubCatalogRepo) ListDistricts(ctx context.Context, warehouseID int) ([]models.District, error) {
	return []models.District{{ID: 1, WarehouseID: warehouseID}}, nil
}

func (s *stubCatalogRepo) SearchCustomers(ctx context.Context, warehouseID, districtID int, search string, limit int) ([]models.Customer, error) {
	s.lastLimit = limit
	return []models.Customer{}, nil
}

func (s *stubCatalogRepo) SearchItems(ctx context.Context, search string, limit int) ([]models.Item, error) {
	s.lastLimit = limit
	return []models.Item{}, nil
}

func (s *stubCatalogRepo) ListOrders(ctx context.Context, q models.OrderQuery) ([]models.OrderSummary, int64, error) {
	s.lastOrderQuery = q
	return []models.OrderSummary{}, s.orderTotal, nil
}

func newTestRouter(repo *stubCatalogRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(&service.Service{}, service.NewCatalogService(repo, nil))
	handler.SetupRoutes(router)
	return router
}

func TestListOrdersZeroPerPage(t *testing.T) {
	repo := &stubCatalogRepo{orderTotal: 7}
	router := newTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders?per_page=0&page=0", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Page       int   `json:"page"`
		PerPage    int   `json:"per_page"`
		TotalCount int64 `json:"total_count"`
		TotalPages int64 `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 20, body.PerPage)
	assert.Equal(t, int64(7), body.TotalCount)
	assert.Equal(t, int64(1), body.TotalPages)
	assert.Equal(t, 20, repo.lastOrderQuery.PerPage)
}

func TestListOrdersOversizedPerPage(t *testing.T) {
	repo := &stubCatalogRepo{orderTotal: 45}
	router := newTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders?per_page=5000", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		PerPage    int   `json:"per_page"`
		TotalPages int64 `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 20, body.PerPage)
	assert.Equal(t, int64(3), body.TotalPages)
}

func TestListOrdersRejectsUnknownSort(t *testing.T) {
	router := newTestRouter(&stubCatalogRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders?sort_by=o_id;--", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
