package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Pedroffda/alinhavo-api/models"
	"github.com/Pedroffda/alinhavo-api/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreateOrderRequest represents the request body for creating an order.
// Exactly one of delivery_date (YYYY-MM-DD or RFC 3339) and delivery_days is expected.
type CreateOrderRequest struct {
	GarmentType  string                    `json:"garment_type"`
	Size         string                    `json:"size"`
	Color        string                    `json:"color"`
	Material     string                    `json:"material"`
	Style        string                    `json:"style"`
	Details      string                    `json:"details"`
	DeliveryDate *string                   `json:"delivery_date"`
	DeliveryDays *int                      `json:"delivery_days"`
	MaxBudget    *decimal.Decimal          `json:"max_budget"`
	Inspirations []services.InspirationRef `json:"inspirations"`
}

// CreateOrder handles POST /api/v1/orders - opens a new order for the caller
func CreateOrder(c *gin.Context) {
	clientID, ok := currentUser(c)
	if !ok {
		return
	}
	m, ok := marketplace(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	attrs := services.OrderAttributes{
		GarmentType:  req.GarmentType,
		Size:         req.Size,
		Color:        req.Color,
		Material:     req.Material,
		Style:        req.Style,
		Details:      req.Details,
		DeliveryDays: req.DeliveryDays,
		MaxBudget:    req.MaxBudget,
		Inspirations: req.Inspirations,
	}
	if req.DeliveryDate != nil {
		date, err := parseDeliveryDate(*req.DeliveryDate)
		if err != nil {
			respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", "delivery_date must be YYYY-MM-DD or an RFC 3339 timestamp")
			return
		}
		attrs.DeliveryDate = &date
	}

	if imageService := services.GetImageService(); imageService != nil {
		for _, ref := range req.Inspirations {
			if !imageService.OwnsImage(clientID, ref.Path) {
				respondFailure(c, http.StatusBadRequest, "INVALID_INSPIRATION", "Inspiration images must be uploaded by the order's client")
				return
			}
		}
	}

	order, err := m.Orders.CreateOrder(c.Request.Context(), clientID, attrs)
	if err != nil {
		respondError(c, err)
		return
	}

	attachImageURLs(c, order)
	respondData(c, http.StatusCreated, order)
}

// ListMyOrders handles GET /api/v1/orders - the caller's own orders, newest first
func ListMyOrders(c *gin.Context) {
	clientID, ok := currentUser(c)
	if !ok {
		return
	}
	m, ok := marketplace(c)
	if !ok {
		return
	}

	orders, ok := collectOrRespond(c, m.Orders.ListOrdersForClient(c.Request.Context(), clientID))
	if !ok {
		return
	}
	respondData(c, http.StatusOK, orders)
}

// ListOpenOrders handles GET /api/v1/orders/open - orders accepting proposals.
// Query: garment, sort (created|deadline|budget), dir (asc|desc), limit, offset.
func ListOpenOrders(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	m, ok := marketplace(c)
	if !ok {
		return
	}

	filter := services.OpenOrderFilter{
		GarmentType: c.Query("garment"),
		Sort:        services.SortKey(strings.ToLower(c.Query("sort"))),
		Limit:       defaultPageSize,
	}
	if !services.ValidSortKey(filter.Sort) {
		respondFailure(c, http.StatusBadRequest, "INVALID_SORT", "sort must be one of created, deadline, budget")
		return
	}

	switch strings.ToLower(c.Query("dir")) {
	case "":
	case "asc":
		ascending := true
		filter.Ascending = &ascending
	case "desc":
		ascending := false
		filter.Ascending = &ascending
	default:
		respondFailure(c, http.StatusBadRequest, "INVALID_SORT", "dir must be asc or desc")
		return
	}

	var err error
	if filter.Limit, err = queryInt(c, "limit", defaultPageSize, 1, maxPageSize); err != nil {
		respondFailure(c, http.StatusBadRequest, "INVALID_PAGE", "limit must be between 1 and 100")
		return
	}
	if filter.Offset, err = queryInt(c, "offset", 0, 0, -1); err != nil {
		respondFailure(c, http.StatusBadRequest, "INVALID_PAGE", "offset must not be negative")
		return
	}

	orders, ok := collectOrRespond(c, m.Orders.ListOpenOrders(c.Request.Context(), filter))
	if !ok {
		return
	}
	respondData(c, http.StatusOK, orders)
}

// GetOrder handles GET /api/v1/orders/:id. Open orders are visible to any
// signed-in user; once assigned only the client and the tailor see them.
func GetOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id", "Order")
	if !ok {
		return
	}
	m, ok := marketplace(c)
	if !ok {
		return
	}

	order, err := m.Orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	if order.Status != models.OrderOpen && !order.IsParty(userID) {
		respondFailure(c, http.StatusForbidden, "FORBIDDEN", "You do not have permission to view this order")
		return
	}

	attachImageURLs(c, order)
	respondData(c, http.StatusOK, order)
}

// CancelOrder handles POST /api/v1/orders/:id/cancel
func CancelOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id", "Order")
	if !ok {
		return
	}
	m, ok := marketplace(c)
	if !ok {
		return
	}

	order, err := m.Orders.CancelOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

func parseDeliveryDate(value string) (time.Time, error) {
	if date, err := time.Parse(time.DateOnly, value); err == nil {
		return date, nil
	}
	return time.Parse(time.RFC3339, value)
}

// queryInt reads an integer query parameter within [lo, hi]; hi < 0 means unbounded
func queryInt(c *gin.Context, name string, def, lo, hi int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if value < lo || (hi >= 0 && value > hi) {
		return 0, strconv.ErrRange
	}
	return value, nil
}

// attachImageURLs fills the download URL of each inspiration image
func attachImageURLs(c *gin.Context, order *models.Order) {
	imageService := services.GetImageService()
	if imageService == nil {
		return
	}
	for i := range order.Inspirations {
		url, err := imageService.GetImageURL(c.Request.Context(), order.Inspirations[i].StoragePath)
		if err == nil {
			order.Inspirations[i].URL = url
		}
	}
}
