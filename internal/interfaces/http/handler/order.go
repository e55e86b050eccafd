package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appOrders "github.com/reparto/backend/internal/application/orders"
)

// OrderHandler handles the order lifecycle endpoints
type OrderHandler struct {
	BaseHandler
	orderService *appOrders.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *appOrders.Service) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appOrders.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), actor, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	var filter appOrders.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Advance handles POST /orders/:id/advance
func (h *OrderHandler) Advance(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req appOrders.AdvanceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.Advance(c.Request.Context(), actor, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// AddProduct handles POST /orders/:id/products
func (h *OrderHandler) AddProduct(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req appOrders.AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.AddProduct(c.Request.Context(), actor, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// RemoveProduct handles DELETE /orders/:id/products/:code
func (h *OrderHandler) RemoveProduct(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.RemoveProduct(c.Request.Context(), actor, orderID, c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateQuantity handles PUT /orders/:id/products/:code/quantity
func (h *OrderHandler) UpdateQuantity(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req appOrders.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.UpdateQuantity(c.Request.Context(), actor, orderID, c.Param("code"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdatePrice handles PUT /orders/:id/products/:code/price
func (h *OrderHandler) UpdatePrice(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req appOrders.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.UpdatePrice(c.Request.Context(), actor, orderID, c.Param("code"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ToggleCheck handles POST /orders/:id/products/:code/check
func (h *OrderHandler) ToggleCheck(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.ToggleCheck(c.Request.Context(), actor, orderID, c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateMetadata handles PATCH /orders/:id
func (h *OrderHandler) UpdateMetadata(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req appOrders.UpdateMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.UpdateMetadata(c.Request.Context(), actor, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Reconcile handles GET /orders/:id/reconciliation
func (h *OrderHandler) Reconcile(c *gin.Context) {
	orderID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	rec, err := h.orderService.Reconcile(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rec)
}

// Delete handles DELETE /orders/:id
func (h *OrderHandler) Delete(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	orderID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), actor, orderID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func parseID(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}
