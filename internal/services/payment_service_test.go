package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"canteen_preorder/internal/apperr"
	"canteen_preorder/internal/models"
)

const testSecret = "test_gateway_secret"

func sign(gatewayOrderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(gatewayOrderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

func newPaymentEnv(t *testing.T) (PaymentService, OrderService, *fakeOrderRepo) {
	t.Helper()
	repo := newFakeOrderRepo()
	orders := NewOrderService(repo, defaultCatalog(), &fakePublisher{}, &fakeGateway{}, nil, true, 30*time.Minute)
	return NewPaymentService(orders, testSecret), orders, repo
}

func TestVerifyPaymentAdvancesOrder(t *testing.T) {
	payments, orders, repo := newPaymentEnv(t)
	ctx := context.Background()

	order, err := orders.PlaceOrder(ctx, owner, []OrderLine{{ItemID: 1, Quantity: 2}}, "")
	if err != nil {
		t.Fatal(err)
	}

	verified, err := payments.VerifyPayment(ctx, order.PaymentID, "pay_001", sign(order.PaymentID, "pay_001"))
	if err != nil {
		t.Fatalf("VerifyPayment failed: %v", err)
	}
	if verified.Status != string(models.OrderPreparing) {
		t.Errorf("status = %s, want preparing", verified.Status)
	}
	if verified.TransactionID != "pay_001" {
		t.Errorf("transaction id = %s", verified.TransactionID)
	}

	got, _ := repo.GetByID(order.ID)
	if got.PaymentStatus != string(models.PaymentCompleted) {
		t.Errorf("persisted payment status = %s", got.PaymentStatus)
	}
}

func TestVerifyPaymentTamperedSignature(t *testing.T) {
	payments, orders, repo := newPaymentEnv(t)
	ctx := context.Background()

	order, err := orders.PlaceOrder(ctx, owner, []OrderLine{{ItemID: 1, Quantity: 1}}, "")
	if err != nil {
		t.Fatal(err)
	}

	// Signature over different payment ref
	_, err = payments.VerifyPayment(ctx, order.PaymentID, "pay_001", sign(order.PaymentID, "pay_evil"))
	if !errors.Is(err, apperr.ErrSignature) {
		t.Fatalf("err = %v, want ErrSignature", err)
	}

	// Garbage signature
	_, err = payments.VerifyPayment(ctx, order.PaymentID, "pay_001", "deadbeef")
	if !errors.Is(err, apperr.ErrSignature) {
		t.Fatalf("err = %v, want ErrSignature", err)
	}

	got, _ := repo.GetByID(order.ID)
	if got.Status != string(models.OrderPending) {
		t.Fatalf("tampered confirmation advanced order to %s", got.Status)
	}
	if got.TransactionID != "" {
		t.Fatalf("tampered confirmation recorded transaction %s", got.TransactionID)
	}
}

func TestVerifyPaymentUnknownOrderFailsClosedFirst(t *testing.T) {
	payments, _, _ := newPaymentEnv(t)
	ctx := context.Background()

	// Bad signature wins over unknown reference: verification runs first
	_, err := payments.VerifyPayment(ctx, "gw_missing", "pay_001", "bogus")
	if !errors.Is(err, apperr.ErrSignature) {
		t.Fatalf("err = %v, want ErrSignature", err)
	}

	// A correctly signed confirmation for an order we never issued must
	// surface, not silently no-op
	_, err = payments.VerifyPayment(ctx, "gw_missing", "pay_001", sign("gw_missing", "pay_001"))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestVerifyPaymentConflictsAfterCancellation(t *testing.T) {
	payments, orders, repo := newPaymentEnv(t)
	ctx := context.Background()

	order, err := orders.PlaceOrder(ctx, owner, []OrderLine{{ItemID: 1, Quantity: 1}}, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := orders.CancelOrder(ctx, owner, order.ID); err != nil {
		t.Fatal(err)
	}

	_, err = payments.VerifyPayment(ctx, order.PaymentID, "pay_001", sign(order.PaymentID, "pay_001"))
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	got, _ := repo.GetByID(order.ID)
	if got.Status != string(models.OrderCancelled) {
		t.Fatalf("confirmation overwrote terminal status: %s", got.Status)
	}
}
