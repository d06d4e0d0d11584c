package api

import (
	"net/http"
	"strconv"
	"time"

	"tpcc-service/internal/models"
	"tpcc-service/internal/service"
	"tpcc-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	txService      *service.Service
	catalogService *service.CatalogService
}

// NewHandler creates a new HTTP handler
func NewHandler(txService *service.Service, catalogService *service.CatalogService) *Handler {
	return &Handler{
		txService:      txService,
		catalogService: catalogService,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/", h.root)
	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/new-order", h.newOrder)
	router.POST("/payment", h.payment)
	router.POST("/delivery", h.delivery)
	router.POST("/delivery/deferred", h.deliveryDeferred)
	router.GET("/order-status", h.orderStatus)
	router.GET("/stock-level", h.stockLevel)

	router.GET("/warehouses", h.listWarehouses)
	router.GET("/districts", h.listDistricts)
	router.GET("/customers", h.searchCustomers)
	router.GET("/items", h.searchItems)
	router.GET("/orders", h.listOrders)
}

func (h *Handler) root(c *gin.Context) {
	c.String(http.StatusOK, "Hello, world!")
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// newOrder handles the order-entry transaction
func (h *Handler) newOrder(c *gin.Context) {
	var req service.NewOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.txService.NewOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to enter order")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// payment handles the payment transaction
func (h *Handler) payment(c *gin.Context) {
	var req service.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.txService.Payment(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to record payment")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// delivery runs the delivery transaction synchronously
func (h *Handler) delivery(c *gin.Context) {
	var req service.DeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.txService.Delivery(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to deliver")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// deliveryDeferred queues a delivery request for the background worker
func (h *Handler) deliveryDeferred(c *gin.Context) {
	var req service.DeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	eventID, err := h.txService.RequestDelivery(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to queue delivery")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":       "queued",
		"event_id":     eventID,
		"warehouse_id": req.WarehouseID,
		"district_id":  req.DistrictID,
	})
}

// orderStatus returns a customer's latest order
func (h *Handler) orderStatus(c *gin.Context) {
	warehouseID, ok1 := intQuery(c, "warehouse_id")
	districtID, ok2 := intQuery(c, "district_id")
	customerID, ok3 := intQuery(c, "customer_id")
	if !ok1 || !ok2 || !ok3 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "warehouse_id, district_id and customer_id are required integers",
		})
		return
	}

	resp, err := h.txService.OrderStatus(c.Request.Context(), warehouseID, districtID, customerID)
	if err != nil {
		respondError(c, err, "Failed to read order status")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// stockLevel returns the district's low-stock count
func (h *Handler) stockLevel(c *gin.Context) {
	warehouseID, ok1 := intQuery(c, "warehouse_id")
	districtID, ok2 := intQuery(c, "district_id")
	threshold, ok3 := intQuery(c, "threshold")
	if !ok1 || !ok2 || !ok3 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "warehouse_id, district_id and threshold are required integers",
		})
		return
	}

	resp, err := h.txService.StockLevel(c.Request.Context(), warehouseID, districtID, threshold)
	if err != nil {
		respondError(c, err, "Failed to read stock level")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// listWarehouses handles the warehouse listing
func (h *Handler) listWarehouses(c *gin.Context) {
	limit := intQueryDefault(c, "limit", 0)

	warehouses, err := h.catalogService.ListWarehouses(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err, "Failed to list warehouses")
		return
	}

	c.JSON(http.StatusOK, gin.H{"warehouses": warehouses})
}

// listDistricts handles the district listing of one warehouse
func (h *Handler) listDistricts(c *gin.Context) {
	warehouseID, ok := intQuery(c, "warehouse_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "warehouse_id is a required integer",
		})
		return
	}

	districts, err := h.catalogService.ListDistricts(c.Request.Context(), warehouseID)
	if err != nil {
		respondError(c, err, "Failed to list districts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"districts": districts})
}

// searchCustomers handles the customer search within a district
func (h *Handler) searchCustomers(c *gin.Context) {
	warehouseID, ok1 := intQuery(c, "warehouse_id")
	districtID, ok2 := intQuery(c, "district_id")
	if !ok1 || !ok2 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "warehouse_id and district_id are required integers",
		})
		return
	}
	search := c.Query("search")
	limit := intQueryDefault(c, "limit", 0)

	customers, err := h.catalogService.SearchCustomers(c.Request.Context(), warehouseID, districtID, search, limit)
	if err != nil {
		respondError(c, err, "Failed to search customers")
		return
	}

	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

// searchItems handles the item catalog search
func (h *Handler) searchItems(c *gin.Context) {
	search := c.Query("search")
	limit := intQueryDefault(c, "limit", 0)

	items, err := h.catalogService.SearchItems(c.Request.Context(), search, limit)
	if err != nil {
		respondError(c, err, "Failed to search items")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// listOrders handles the filtered/paginated order listing
func (h *Handler) listOrders(c *gin.Context) {
	q := models.OrderQuery{
		Page:    intQueryDefault(c, "page", 1),
		PerPage: intQueryDefault(c, "per_page", 20),
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 || q.PerPage > 100 {
		q.PerPage = 20
	}

	if v, ok := intQuery(c, "warehouse_id"); ok {
		q.WarehouseID = &v
	}
	if v, ok := intQuery(c, "district_id"); ok {
		q.DistrictID = &v
	}
	if v, ok := intQuery(c, "customer_id"); ok {
		q.CustomerID = &v
	}
	if v, ok := intQuery(c, "order_id"); ok {
		q.OrderID = &v
	}
	if raw := c.Query("from_date"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from_date must be an ISO date"})
			return
		}
		q.FromDate = &t
	}
	if raw := c.Query("to_date"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to_date must be an ISO date"})
			return
		}
		q.ToDate = &t
	}

	sortBy, ok := models.ParseOrderSort(c.Query("sort_by"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sort_by value"})
		return
	}
	q.SortBy = sortBy
	q.Descending = c.Query("sort_dir") == "desc"

	orders, total, err := h.catalogService.ListOrders(c.Request.Context(), q)
	if err != nil {
		respondError(c, err, "Failed to list orders")
		return
	}

	totalPages := total / int64(q.PerPage)
	if total%int64(q.PerPage) != 0 {
		totalPages++
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":      orders,
		"total_count": total,
		"page":        q.Page,
		"per_page":    q.PerPage,
		"total_pages": totalPages,
	})
}

// respondError maps business-error kinds onto HTTP statuses.
func respondError(c *gin.Context, err error, msg string) {
	status := http.StatusInternalServerError
	switch {
	case models.IsInvalidArgument(err):
		status = http.StatusBadRequest
	case models.IsNotFound(err):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{
		"error":   msg,
		"details": err.Error(),
	})
}

func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func intQueryDefault(c *gin.Context, name string, def int) int {
	v, ok := intQuery(c, name)
	if !ok {
		return def
	}
	return v
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
