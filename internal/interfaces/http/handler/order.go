package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	orderapp "github.com/brickdesk/backend/internal/application/order"
	"github.com/brickdesk/backend/internal/domain/order"
	"github.com/brickdesk/backend/internal/domain/platform"
)

// OrderHandler handles order query and manual status endpoints
type OrderHandler struct {
	BaseHandler
	service *orderapp.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(service *orderapp.Service) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes registers order endpoints on the API group
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.GET("/:id/history", h.History)
		orders.PUT("/:id/status", h.UpdateStatus)
	}
}

// UpdateOrderStatusRequest represents a manual status transition
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes" binding:"max=2000"`
	Force  bool   `json:"force"`
}

// OrderItemResponse represents one order line in API responses
type OrderItemResponse struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Condition string `json:"condition,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// AddressResponse represents a shipping address in API responses
type AddressResponse struct {
	Name        string `json:"name,omitempty"`
	AddressLine string `json:"address_line,omitempty"`
	City        string `json:"city,omitempty"`
	Region      string `json:"region,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                     string              `json:"id"`
	Platform               string              `json:"platform"`
	PlatformOrderID        string              `json:"platform_order_id"`
	PlatformStatus         string              `json:"platform_status"`
	InternalStatusOverride *string             `json:"internal_status_override,omitempty"`
	EffectiveStatus        string              `json:"effective_status"`
	BuyerName              string              `json:"buyer_name,omitempty"`
	GrandTotal             string              `json:"grand_total"`
	ShippingCost           string              `json:"shipping_cost"`
	Currency               string              `json:"currency,omitempty"`
	Items                  []OrderItemResponse `json:"items"`
	ShippingAddress        *AddressResponse    `json:"shipping_address,omitempty"`
	OrderedAt              string              `json:"ordered_at"`
	PlatformUpdatedAt      string              `json:"platform_updated_at"`
	CreatedAt              string              `json:"created_at"`
	UpdatedAt              string              `json:"updated_at"`
}

// StatusHistoryResponse represents one status transition in the
// append-only order history
type StatusHistoryResponse struct {
	ID         string `json:"id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	ChangedAt  string `json:"changed_at"`
	ChangedBy  string `json:"changed_by"`
	Notes      string `json:"notes,omitempty"`
}

// UpdateStatus applies an operator-initiated status transition.
// PUT /api/v1/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	status := order.Status(req.Status)
	if !status.IsValid() {
		h.BadRequest(c, "Unknown order status: "+req.Status)
		return
	}

	o, err := h.service.UpdateStatus(c.Request.Context(), userID, orderID, status, req.Notes, req.Force)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, toOrderResponse(o))
}

// Get returns one order with its full detail.
// GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	o, err := h.service.Get(c.Request.Context(), userID, orderID)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, toOrderResponse(o))
}

// History returns the append-only status history for an order.
// GET /api/v1/orders/:id/history
func (h *OrderHandler) History(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	entries, err := h.service.StatusHistory(c.Request.Context(), userID, orderID)
	if err != nil {
		h.DomainError(c, err)
		return
	}

	resp := make([]StatusHistoryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, StatusHistoryResponse{
			ID:         e.ID.String(),
			FromStatus: string(e.FromStatus),
			ToStatus:   string(e.ToStatus),
			ChangedAt:  e.ChangedAt.UTC().Format(time.RFC3339),
			ChangedBy:  string(e.ChangedBy),
			Notes:      e.Notes,
		})
	}
	h.Success(c, resp)
}

// List returns orders whose effective status matches the status query
// parameter, optionally filtered to one platform.
// GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	status := order.Status(c.Query("status"))
	if !status.IsValid() {
		h.BadRequest(c, "Unknown or missing order status")
		return
	}

	var code platform.Code
	if p := c.Query("platform"); p != "" {
		code = platform.Code(p)
		if !code.IsValid() {
			h.BadRequest(c, "Unknown platform: "+p)
			return
		}
	}

	orders, err := h.service.List(c.Request.Context(), userID, code, status)
	if err != nil {
		h.Internal(c, "Failed to list orders")
		return
	}

	resp := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, *toOrderResponse(&orders[i]))
	}
	h.Success(c, resp)
}

func toOrderResponse(o *order.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:                o.ID.String(),
		Platform:          string(o.Platform),
		PlatformOrderID:   o.PlatformOrderID,
		PlatformStatus:    string(o.PlatformStatus),
		EffectiveStatus:   string(o.EffectiveStatus()),
		BuyerName:         o.BuyerName,
		GrandTotal:        o.GrandTotal.String(),
		ShippingCost:      o.ShippingCost.String(),
		Currency:          o.Currency,
		Items:             make([]OrderItemResponse, 0, len(o.Items)),
		OrderedAt:         o.OrderedAt.UTC().Format(time.RFC3339),
		PlatformUpdatedAt: o.PlatformUpdatedAt.UTC().Format(time.RFC3339),
		CreatedAt:         o.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         o.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if o.InternalStatusOverride != nil {
		s := string(*o.InternalStatusOverride)
		resp.InternalStatusOverride = &s
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			SKU:       item.SKU,
			Name:      item.Name,
			Condition: item.Condition,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.String(),
		})
	}
	if a := o.ShippingAddress; a != nil {
		resp.ShippingAddress = &AddressResponse{
			Name:        a.Name,
			AddressLine: a.AddressLine,
			City:        a.City,
			Region:      a.Region,
			PostalCode:  a.PostalCode,
			CountryCode: a.CountryCode,
		}
	}
	return resp
}
