package service

import (
	"context"
	"fmt"

	"tpcc-service/internal/models"
	"tpcc-service/internal/redisclient"
	"tpcc-service/internal/util"

	"go.uber.org/zap"
)

// Listing limits. Absent or non-positive request limits get the default;
// anything above the cap is cut down to it.
const (
	warehouseLimitCap    = 100
	customerLimitDefault = 10
	customerLimitCap     = 50
	itemLimitDefault     = 20
	itemLimitCap         = 100
)

// CatalogService serves the reference and reporting reads outside the
// transactional core. Warehouse and district listings are read through the
// cache; the rest always hit the store.
type CatalogService struct {
	repo   models.CatalogRepository
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo models.CatalogRepository, redis *redisclient.Client) *CatalogService {
	return &CatalogService{
		repo:   repo,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// ListWarehouses returns up to limit warehouses ordered by id.
func (s *CatalogService) ListWarehouses(ctx context.Context, limit int) ([]models.Warehouse, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListWarehouses")
	defer span.End()

	limit = clampLimit(limit, warehouseLimitCap, warehouseLimitCap)
	key := fmt.Sprintf("catalog:warehouses:%d", limit)
	var cached []models.Warehouse
	if s.cacheGet(ctx, "warehouse", key, &cached) {
		return cached, nil
	}

	warehouses, err := s.repo.ListWarehouses(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, warehouses)
	return warehouses, nil
}

// ListDistricts returns the districts of one warehouse ordered by id.
func (s *CatalogService) ListDistricts(ctx context.Context, warehouseID int) ([]models.District, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListDistricts")
	defer span.End()

	key := fmt.Sprintf("catalog:districts:%d", warehouseID)
	var cached []models.District
	if s.cacheGet(ctx, "district", key, &cached) {
		return cached, nil
	}

	districts, err := s.repo.ListDistricts(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if len(districts) == 0 {
		return nil, fmt.Errorf("%w: warehouse %d has no districts", models.ErrNotFound, warehouseID)
	}
	s.cacheSet(ctx, key, districts)
	return districts, nil
}

// SearchCustomers finds customers of a district by last or first name prefix.
func (s *CatalogService) SearchCustomers(ctx context.Context, warehouseID, districtID int, search string, limit int) ([]models.Customer, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.SearchCustomers")
	defer span.End()

	limit = clampLimit(limit, customerLimitDefault, customerLimitCap)
	return s.repo.SearchCustomers(ctx, warehouseID, districtID, search, limit)
}

// SearchItems finds catalog items by id or name fragment.
func (s *CatalogService) SearchItems(ctx context.Context, search string, limit int) ([]models.Item, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.SearchItems")
	defer span.End()

	limit = clampLimit(limit, itemLimitDefault, itemLimitCap)
	return s.repo.SearchItems(ctx, search, limit)
}

// ListOrders returns one page of the filtered order listing and the total
// match count.
func (s *CatalogService) ListOrders(ctx context.Context, q models.OrderQuery) ([]models.OrderSummary, int64, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListOrders")
	defer span.End()

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 || q.PerPage > 100 {
		q.PerPage = 20
	}
	if q.SortBy == "" {
		q.SortBy = models.SortEntryDate
	}

	return s.repo.ListOrders(ctx, q)
}

func clampLimit(limit, def, upper int) int {
	if limit < 1 {
		return def
	}
	if limit > upper {
		return upper
	}
	return limit
}

func (s *CatalogService) cacheGet(ctx context.Context, entity, key string, dest interface{}) bool {
	if s.redis == nil {
		return false
	}
	hit, err := s.redis.GetJSON(ctx, key, dest)
	if err != nil {
		s.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if hit {
		util.CacheHitsTotal.WithLabelValues(entity).Inc()
		return true
	}
	util.CacheMissesTotal.WithLabelValues(entity).Inc()
	return false
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.redis == nil {
		return
	}
	if err := s.redis.SetJSON(ctx, key, value); err != nil {
		s.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}
