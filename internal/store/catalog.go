package store

import (
	"context"
	"fmt"
	"strings"

	"tpcc-service/internal/models"
)

// Catalog reads run on the pool, outside the transactional core; they serve
// the reference/lookup endpoints only.

// ListWarehouses returns up to limit warehouses
func (s *Store) ListWarehouses(ctx context.Context, limit int) ([]models.Warehouse, error) {
	var warehouses []models.Warehouse
	err := s.db.SelectContext(ctx, &warehouses,
		"SELECT * FROM warehouse ORDER BY w_id LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("select warehouses: %w", err)
	}
	return warehouses, nil
}

// ListDistricts returns the districts of one warehouse ordered by id
func (s *Store) ListDistricts(ctx context.Context, warehouseID int) ([]models.District, error) {
	var districts []models.District
	err := s.db.SelectContext(ctx, &districts,
		"SELECT * FROM district WHERE d_w_id = $1 ORDER BY d_id ASC", warehouseID)
	if err != nil {
		return nil, fmt.Errorf("select districts: %w", err)
	}
	return districts, nil
}

// SearchCustomers searches a district's customers by first or last name;
// an empty search term returns the first customers by name.
func (s *Store) SearchCustomers(ctx context.Context, warehouseID, districtID int, search string, limit int) ([]models.Customer, error) {
	var customers []models.Customer
	var err error
	if search == "" {
		err = s.db.SelectContext(ctx, &customers, `
			SELECT * FROM customer
			WHERE c_w_id = $1 AND c_d_id = $2
			ORDER BY c_last, c_first
			LIMIT $3`,
			warehouseID, districtID, limit)
	} else {
		err = s.db.SelectContext(ctx, &customers, `
			SELECT * FROM customer
			WHERE c_w_id = $1 AND c_d_id = $2
			  AND (c_last ILIKE '%' || $3 || '%' OR c_first ILIKE '%' || $3 || '%')
			ORDER BY c_last, c_first
			LIMIT $4`,
			warehouseID, districtID, search, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	return customers, nil
}

// SearchItems searches the item catalog by name or exact id; exact id
// matches sort first.
func (s *Store) SearchItems(ctx context.Context, search string, limit int) ([]models.Item, error) {
	var items []models.Item
	var err error
	if search == "" {
		err = s.db.SelectContext(ctx, &items,
			"SELECT * FROM item ORDER BY i_name LIMIT $1", limit)
	} else {
		err = s.db.SelectContext(ctx, &items, `
			SELECT * FROM item
			WHERE i_name ILIKE '%' || $1 || '%' OR i_id::text = $1
			ORDER BY CASE WHEN i_id::text = $1 THEN 0 ELSE 1 END, i_name
			LIMIT $2`,
			search, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return items, nil
}

// sortColumn maps the closed sort enumeration onto column references at
// compile time; there is no path from request text into the ORDER BY clause.
func sortColumn(s models.OrderSort) string {
	switch s {
	case models.SortOrderID:
		return "o.o_id"
	case models.SortCustomerLast:
		return "c.c_last"
	case models.SortWarehouseID:
		return "o.o_w_id"
	case models.SortDistrictID:
		return "o.o_d_id"
	case models.SortCarrierID:
		return "o.o_carrier_id"
	default:
		return "o.o_entry_d"
	}
}

func orderFilters(q models.OrderQuery) (string, []interface{}) {
	var conds []string
	var args []interface{}

	add := func(expr string, v interface{}) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(expr, len(args)))
	}

	if q.WarehouseID != nil {
		add("o.o_w_id = $%d", *q.WarehouseID)
	}
	if q.DistrictID != nil {
		add("o.o_d_id = $%d", *q.DistrictID)
	}
	if q.CustomerID != nil {
		add("o.o_c_id = $%d", *q.CustomerID)
	}
	if q.OrderID != nil {
		add("o.o_id = $%d", *q.OrderID)
	}
	if q.FromDate != nil {
		add("o.o_entry_d >= $%d", *q.FromDate)
	}
	if q.ToDate != nil {
		add("o.o_entry_d <= $%d", *q.ToDate)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListOrders returns one page of the order listing plus the total match count
func (s *Store) ListOrders(ctx context.Context, q models.OrderQuery) ([]models.OrderSummary, int64, error) {
	const from = `
		FROM orders o
		LEFT JOIN customer c
		  ON o.o_w_id = c.c_w_id AND o.o_d_id = c.c_d_id AND o.o_c_id = c.c_id`

	where, args := orderFilters(q)

	var total int64
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*)"+from+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	direction := "ASC"
	if q.Descending {
		direction = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT o.o_id, o.o_w_id, o.o_d_id, o.o_c_id, o.o_entry_d, o.o_carrier_id,
		       o.o_ol_cnt, o.o_all_local,
		       COALESCE(c.c_first, '') AS c_first,
		       COALESCE(c.c_middle, '') AS c_middle,
		       COALESCE(c.c_last, '') AS c_last,
		       o.o_carrier_id IS NOT NULL AS is_delivered,
		       COALESCE(ol.total_amount, 0) AS total_amount,
		       COALESCE(ol.line_count, 0) AS line_count
		%s
		LEFT JOIN (
			SELECT ol_w_id, ol_d_id, ol_o_id,
			       SUM(ol_amount) AS total_amount,
			       COUNT(*) AS line_count
			FROM order_line
			GROUP BY ol_w_id, ol_d_id, ol_o_id
		) ol ON ol.ol_w_id = o.o_w_id AND ol.ol_d_id = o.o_d_id AND ol.ol_o_id = o.o_id
		%s
		ORDER BY %s %s, o.o_w_id, o.o_d_id, o.o_id
		LIMIT $%d OFFSET $%d`,
		from, where, sortColumn(q.SortBy), direction, len(args)+1, len(args)+2)

	offset := (q.Page - 1) * q.PerPage
	args = append(args, q.PerPage, offset)

	var orders []models.OrderSummary
	if err := s.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, 0, fmt.Errorf("select orders: %w", err)
	}
	return orders, total, nil
}
