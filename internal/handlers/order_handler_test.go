package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"canteen_preorder/internal/apperr"
	"canteen_preorder/internal/auth"
	"canteen_preorder/internal/models"
	"canteen_preorder/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testJWTSecret = "test_jwt_secret"

type fakeOrderService struct {
	placed *models.Order
}

func (f *fakeOrderService) PlaceOrder(ctx context.Context, requester models.Identity, lines []services.OrderLine, instructions string) (*models.Order, error) {
	if len(lines) == 0 || lines[0].ItemID == 404 {
		return nil, apperr.Validationf("menu item not found")
	}
	eta := time.Now().Add(30 * time.Minute)
	f.placed = &models.Order{
		ID:                 1,
		UserID:             requester.UserID,
		Status:             string(models.OrderPending),
		Amount:             100,
		EstimatedReadyTime: &eta,
	}
	return f.placed, nil
}

func (f *fakeOrderService) GetOrder(ctx context.Context, requester models.Identity, orderID uint) (*models.Order, error) {
	switch orderID {
	case 1:
		return &models.Order{ID: 1, UserID: requester.UserID, Status: "pending", Amount: 100}, nil
	case 7:
		return nil, apperr.ErrAuthorization
	default:
		return nil, apperr.ErrNotFound
	}
}

func (f *fakeOrderService) GetMyOrders(ctx context.Context, requester models.Identity) ([]models.Order, error) {
	return []models.Order{}, nil
}

func (f *fakeOrderService) GetAdminOrders(ctx context.Context, requester models.Identity, status string, day *time.Time) ([]models.Order, error) {
	if !requester.IsAdmin() {
		return nil, apperr.ErrAuthorization
	}
	return []models.Order{}, nil
}

func (f *fakeOrderService) CancelOrder(ctx context.Context, requester models.Identity, orderID uint) (*models.Order, error) {
	if orderID == 2 {
		return nil, apperr.Conflictf("cannot cancel order in status preparing")
	}
	return &models.Order{ID: orderID, Status: string(models.OrderCancelled)}, nil
}

func (f *fakeOrderService) UpdateStatus(ctx context.Context, requester models.Identity, orderID uint, status models.OrderStatus, estimatedReadyTime *time.Time) (*models.Order, error) {
	if !requester.IsAdmin() {
		return nil, apperr.ErrAuthorization
	}
	return &models.Order{ID: orderID, Status: string(status)}, nil
}

func (f *fakeOrderService) ConfirmPayment(ctx context.Context, gatewayOrderRef, transactionID string) (*models.Order, error) {
	return nil, apperr.ErrNotFound
}

func (f *fakeOrderService) CompleteIfReady(ctx context.Context, orderID uint) error {
	return nil
}

func signToken(t *testing.T, userID uint, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewOrderHandler(&fakeOrderService{})

	router := gin.New()
	api := router.Group("/api")
	api.Use(auth.Middleware(testJWTSecret))
	api.POST("/orders", handler.PlaceOrder)
	api.GET("/orders/:id", handler.GetOrderDetails)
	api.POST("/orders/:id/cancel", handler.CancelOrder)
	api.GET("/admin/orders", handler.GetAdminOrders)
	api.PUT("/admin/orders/:id/status", handler.UpdateStatus)
	return router
}

func doRequest(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPlaceOrderRequiresToken(t *testing.T) {
	router := newTestRouter()

	w := doRequest(router, http.MethodPost, "/api/orders", "", `{"items":[{"itemId":1,"quantity":2}]}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	w = doRequest(router, http.MethodPost, "/api/orders", "not.a.token", `{"items":[{"itemId":1,"quantity":2}]}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestPlaceOrderCreated(t *testing.T) {
	router := newTestRouter()
	token := signToken(t, 1, "user")

	w := doRequest(router, http.MethodPost, "/api/orders", token, `{"items":[{"itemId":1,"quantity":2}]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var order models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatal(err)
	}
	if order.Amount != 100 || order.Status != "pending" {
		t.Fatalf("order = %+v", order)
	}
	if order.UserID != 1 {
		t.Fatalf("order attributed to user %d, token said 1", order.UserID)
	}
}

func TestErrorKindsMapToStableStatusCodes(t *testing.T) {
	router := newTestRouter()
	userToken := signToken(t, 1, "user")
	adminToken := signToken(t, 9, "admin")

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		want   int
	}{
		{"validation", http.MethodPost, "/api/orders", userToken, `{"items":[{"itemId":404,"quantity":1}]}`, http.StatusBadRequest},
		{"not found", http.MethodGet, "/api/orders/99", userToken, "", http.StatusNotFound},
		{"authorization", http.MethodGet, "/api/orders/7", userToken, "", http.StatusForbidden},
		{"conflict", http.MethodPost, "/api/orders/2/cancel", userToken, "", http.StatusConflict},
		{"admin list forbidden", http.MethodGet, "/api/admin/orders", userToken, "", http.StatusForbidden},
		{"admin list ok", http.MethodGet, "/api/admin/orders", adminToken, "", http.StatusOK},
		{"admin update forbidden", http.MethodPut, "/api/admin/orders/1/status", userToken, `{"status":"preparing"}`, http.StatusForbidden},
		{"admin update ok", http.MethodPut, "/api/admin/orders/1/status", adminToken, `{"status":"preparing"}`, http.StatusOK},
		{"bad order id", http.MethodGet, "/api/orders/abc", userToken, "", http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(router, tc.method, tc.path, tc.token, tc.body)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}
