package handlers

import (
	"net/http"

	"canteen_preorder/internal/auth"
	"canteen_preorder/internal/services"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService services.PaymentService
	orderService   services.OrderService
}

func NewPaymentHandler(paymentService services.PaymentService, orderService services.OrderService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, orderService: orderService}
}

type verifyPaymentRequest struct {
	GatewayOrderID string `json:"gateway_order_id" binding:"required"`
	PaymentID      string `json:"payment_id" binding:"required"`
	Signature      string `json:"signature" binding:"required"`
}

func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	order, err := h.paymentService.VerifyPayment(c.Request.Context(), req.GatewayOrderID, req.PaymentID, req.Signature)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), auth.IdentityFrom(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
		"transaction_id": order.TransactionID,
	})
}
