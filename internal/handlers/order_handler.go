package handlers

import (
	"net/http"
	"strconv"
	"time"

	"canteen_preorder/internal/apperr"
	"canteen_preorder/internal/auth"
	"canteen_preorder/internal/models"
	"canteen_preorder/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

type placeOrderRequest struct {
	Items               []services.OrderLine `json:"items" binding:"required"`
	SpecialInstructions string               `json:"specialInstructions"`
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	order, err := h.orderService.PlaceOrder(c.Request.Context(), auth.IdentityFrom(c), req.Items, req.SpecialInstructions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	orders, err := h.orderService.GetMyOrders(c.Request.Context(), auth.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrderDetails(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), auth.IdentityFrom(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	if _, err := h.orderService.CancelOrder(c.Request.Context(), auth.IdentityFrom(c), orderID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully"})
}

func (h *OrderHandler) GetAdminOrders(c *gin.Context) {
	status := c.Query("status")

	var day *time.Time
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			respondError(c, apperr.Validationf("invalid date: %s", dateStr))
			return
		}
		day = &parsed
	}

	orders, err := h.orderService.GetAdminOrders(c.Request.Context(), auth.IdentityFrom(c), status, day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status             string     `json:"status" binding:"required"`
	EstimatedReadyTime *time.Time `json:"estimatedReadyTime"`
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), auth.IdentityFrom(c), orderID, models.OrderStatus(req.Status), req.EstimatedReadyTime)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func orderIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return 0, false
	}
	return uint(id), true
}
