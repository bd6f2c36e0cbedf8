package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"

	"canteen_preorder/internal/apperr"
	"canteen_preorder/internal/models"
)

// PaymentService verifies signed payment confirmations coming back from the
// external gateway. Verification must pass before any order state moves.
type PaymentService interface {
	VerifyPayment(ctx context.Context, gatewayOrderRef, paymentRef, signature string) (*models.Order, error)
}

type paymentService struct {
	orders OrderService
	secret string
}

func NewPaymentService(orders OrderService, secret string) PaymentService {
	return &paymentService{orders: orders, secret: secret}
}

// VerifyPayment recomputes the HMAC-SHA256 the gateway signs over
// "<gateway_order_ref>|<payment_ref>" and compares it constant-time.
// Any mismatch fails closed; the order is not even looked up.
func (s *paymentService) VerifyPayment(ctx context.Context, gatewayOrderRef, paymentRef, signature string) (*models.Order, error) {
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(gatewayOrderRef + "|" + paymentRef))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		log.Printf("Payment signature mismatch for gateway order %s", gatewayOrderRef)
		return nil, apperr.ErrSignature
	}

	return s.orders.ConfirmPayment(ctx, gatewayOrderRef, paymentRef)
}
