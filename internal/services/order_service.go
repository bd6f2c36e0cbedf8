package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"canteen_preorder/internal/apperr"
	"canteen_preorder/internal/models"
	"canteen_preorder/internal/repository"
)

// OrderLine is one requested line of a new order.
type OrderLine struct {
	ItemID   uint `json:"itemId"`
	Quantity int  `json:"quantity"`
}

// EventPublisher carries committed order events toward connected clients.
// Publishing is best-effort and must never fail a transition.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event *models.OrderEvent) error
}

// PaymentGateway creates an order at the external payment processor and
// returns its reference. Only used when payment is required by policy.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount float64, receipt string) (string, error)
}

// AutoCompleteScheduler arms the deferred ready->completed transition.
type AutoCompleteScheduler interface {
	Schedule(orderID uint)
}

type OrderService interface {
	PlaceOrder(ctx context.Context, requester models.Identity, lines []OrderLine, instructions string) (*models.Order, error)
	GetOrder(ctx context.Context, requester models.Identity, orderID uint) (*models.Order, error)
	GetMyOrders(ctx context.Context, requester models.Identity) ([]models.Order, error)
	GetAdminOrders(ctx context.Context, requester models.Identity, status string, day *time.Time) ([]models.Order, error)
	CancelOrder(ctx context.Context, requester models.Identity, orderID uint) (*models.Order, error)
	UpdateStatus(ctx context.Context, requester models.Identity, orderID uint, status models.OrderStatus, estimatedReadyTime *time.Time) (*models.Order, error)
	ConfirmPayment(ctx context.Context, gatewayOrderRef, transactionID string) (*models.Order, error)
	CompleteIfReady(ctx context.Context, orderID uint) error
}

// transitions is the closed set of legal status moves. Everything else,
// including any move out of a terminal status, is a conflict.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:   {models.OrderPreparing, models.OrderCancelled},
	models.OrderPreparing: {models.OrderReady},
	models.OrderReady:     {models.OrderCompleted},
}

func transitionAllowed(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type orderService struct {
	orderRepo       repository.OrderRepository
	catalog         Catalog
	events          EventPublisher
	gateway         PaymentGateway
	scheduler       AutoCompleteScheduler
	paymentRequired bool
	prepWindow      time.Duration
	locks           *keyedMutex
}

func NewOrderService(orderRepo repository.OrderRepository, catalog Catalog, events EventPublisher, gateway PaymentGateway, scheduler AutoCompleteScheduler, paymentRequired bool, prepWindow time.Duration) OrderService {
	return &orderService{
		orderRepo:       orderRepo,
		catalog:         catalog,
		events:          events,
		gateway:         gateway,
		scheduler:       scheduler,
		paymentRequired: paymentRequired,
		prepWindow:      prepWindow,
		locks:           newKeyedMutex(),
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, requester models.Identity, lines []OrderLine, instructions string) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, apperr.Validationf("order must contain at least one item")
	}

	// Resolve the whole catalog set before persisting anything: one bad
	// line abandons the entire placement.
	var amount float64
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, apperr.Validationf("quantity must be at least 1 for item %d", line.ItemID)
		}
		menuItem, err := s.catalog.GetItem(ctx, line.ItemID)
		if err != nil {
			// Only a missing catalog row is the client's fault; a storage
			// failure stays a generic service failure.
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.Validationf("menu item not found: %d", line.ItemID)
			}
			return nil, fmt.Errorf("failed to look up menu item %d: %w", line.ItemID, err)
		}
		if !menuItem.Available {
			return nil, apperr.Validationf("menu item not available: %s", menuItem.Name)
		}

		lineTotal := menuItem.Price * float64(line.Quantity)
		amount += lineTotal
		items = append(items, models.OrderItem{
			MenuItemID: menuItem.ID,
			ItemName:   menuItem.Name,
			Quantity:   line.Quantity,
			UnitPrice:  menuItem.Price,
			TotalPrice: lineTotal,
		})
	}

	estimatedReady := time.Now().Add(s.prepWindow)
	order := &models.Order{
		UserID:              requester.UserID,
		Items:               items,
		Status:              string(models.OrderPending),
		Amount:              amount,
		PaymentStatus:       string(models.PaymentNotRequired),
		SpecialInstructions: instructions,
		EstimatedReadyTime:  &estimatedReady,
	}

	if s.paymentRequired && s.gateway != nil {
		receipt := fmt.Sprintf("receipt_order_%d", time.Now().UnixNano())
		gatewayRef, err := s.gateway.CreateOrder(ctx, amount, receipt)
		if err != nil {
			return nil, fmt.Errorf("failed to create gateway order: %w", err)
		}
		order.PaymentID = gatewayRef
		order.PaymentStatus = string(models.PaymentPending)
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.publish(ctx, models.EventNewOrder, order)
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, requester models.Identity, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requester.UserID && !requester.IsAdmin() {
		return nil, apperr.ErrAuthorization
	}
	return order, nil
}

func (s *orderService) GetMyOrders(ctx context.Context, requester models.Identity) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(requester.UserID)
}

func (s *orderService) GetAdminOrders(ctx context.Context, requester models.Identity, status string, day *time.Time) ([]models.Order, error) {
	if !requester.IsAdmin() {
		return nil, apperr.ErrAuthorization
	}
	if status != "" && !models.OrderStatus(status).Valid() {
		return nil, apperr.Validationf("unknown status: %s", status)
	}
	return s.orderRepo.GetByFilter(status, day)
}

func (s *orderService) CancelOrder(ctx context.Context, requester models.Identity, orderID uint) (*models.Order, error) {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requester.UserID && !requester.IsAdmin() {
		return nil, apperr.ErrAuthorization
	}
	if order.Status != string(models.OrderPending) {
		return nil, apperr.Conflictf("cannot cancel order in status %s", order.Status)
	}

	order.Status = string(models.OrderCancelled)
	if err := s.orderRepo.Update(order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.publish(ctx, models.EventCancelled, order)
	return order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, requester models.Identity, orderID uint, status models.OrderStatus, estimatedReadyTime *time.Time) (*models.Order, error) {
	if !requester.IsAdmin() {
		return nil, apperr.ErrAuthorization
	}
	if !status.Valid() {
		return nil, apperr.Validationf("unknown status: %s", status)
	}

	unlock := s.locks.Lock(orderID)
	defer unlock()

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	current := models.OrderStatus(order.Status)
	if current.IsTerminal() {
		return nil, apperr.Conflictf("order already %s", order.Status)
	}
	if !transitionAllowed(current, status) {
		return nil, apperr.Conflictf("cannot move order from %s to %s", order.Status, status)
	}

	order.Status = string(status)
	if estimatedReadyTime != nil {
		order.EstimatedReadyTime = estimatedReadyTime
	}
	if status == models.OrderReady {
		now := time.Now()
		order.ReadyAt = &now
	}
	if err := s.orderRepo.Update(order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	eventName := models.EventStatusUpdated
	if status == models.OrderCancelled {
		eventName = models.EventCancelled
	}
	s.publish(ctx, eventName, order)

	if status == models.OrderReady && s.scheduler != nil {
		s.scheduler.Schedule(order.ID)
	}
	return order, nil
}

// ConfirmPayment advances an order whose payment was verified upstream.
// The caller has already checked the gateway signature.
func (s *orderService) ConfirmPayment(ctx context.Context, gatewayOrderRef, transactionID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByPaymentID(gatewayOrderRef)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(order.ID)
	defer unlock()

	// Re-read under the lock; a concurrent transition may have landed.
	order, err = s.orderRepo.GetByID(order.ID)
	if err != nil {
		return nil, err
	}
	if order.Status != string(models.OrderPending) {
		return nil, apperr.Conflictf("cannot confirm payment for order in status %s", order.Status)
	}

	order.Status = string(models.OrderPreparing)
	order.PaymentStatus = string(models.PaymentCompleted)
	order.TransactionID = transactionID
	if err := s.orderRepo.Update(order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.publish(ctx, models.EventStatusUpdated, order)
	return order, nil
}

// CompleteIfReady is the auto-completion trigger. It is a deliberate no-op
// when the order has already left ready; the timer never overwrites a
// terminal status.
func (s *orderService) CompleteIfReady(ctx context.Context, orderID uint) error {
	unlock := s.locks.Lock(orderID)
	defer unlock()

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order.Status != string(models.OrderReady) {
		return nil
	}

	order.Status = string(models.OrderCompleted)
	if err := s.orderRepo.Update(order); err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	s.publish(ctx, models.EventStatusUpdated, order)
	return nil
}

// publish emits an event after the corresponding write is durable. Failures
// are logged and swallowed: the store remains the source of truth and
// clients can always re-query.
func (s *orderService) publish(ctx context.Context, name string, order *models.Order) {
	if s.events == nil {
		return
	}
	event := &models.OrderEvent{
		Name:               name,
		OrderID:            order.ID,
		UserID:             order.UserID,
		Status:             order.Status,
		EstimatedReadyTime: order.EstimatedReadyTime,
	}
	if err := s.events.PublishOrderEvent(ctx, event); err != nil {
		log.Printf("Failed to publish %s for order %d: %v", name, order.ID, err)
	}
}
