package models

import (
	"time"
)

type Order struct {
	ID                  uint        `json:"id" gorm:"primaryKey"`
	UserID              uint        `json:"user_id" gorm:"not null;index:idx_orders_user_created"`
	Items               []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	Status              string      `json:"status" gorm:"default:'pending';index:idx_orders_status_created"`
	Amount              float64     `json:"amount" gorm:"not null"`
	PaymentID           string      `json:"payment_id,omitempty" gorm:"index"`
	TransactionID       string      `json:"transaction_id,omitempty"`
	PaymentStatus       string      `json:"payment_status" gorm:"default:'not_required'"`
	SpecialInstructions string      `json:"special_instructions" gorm:"type:text"`
	EstimatedReadyTime  *time.Time  `json:"estimated_ready_time,omitempty"`
	ReadyAt             *time.Time  `json:"ready_at,omitempty"`
	CreatedAt           time.Time   `json:"created_at" gorm:"index:idx_orders_user_created;index:idx_orders_status_created"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// IsTerminal reports whether no transition may leave the status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPreparing, OrderReady, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentNotRequired PaymentStatus = "not_required"
	PaymentPending     PaymentStatus = "pending"
	PaymentCompleted   PaymentStatus = "completed"
	PaymentFailed      PaymentStatus = "failed"
)

// Event names carried on the real-time channel.
const (
	EventNewOrder      = "new-order"
	EventStatusUpdated = "order-status-updated"
	EventCancelled     = "order-cancelled"
)

// OrderEvent is the payload pushed to subscribers on order creation and on
// every accepted transition. The owner always receives it; new-order and
// order-cancelled additionally go to the admin broadcast channel.
type OrderEvent struct {
	Name               string     `json:"event"`
	OrderID            uint       `json:"orderId"`
	UserID             uint       `json:"userId"`
	Status             string     `json:"status"`
	EstimatedReadyTime *time.Time `json:"estimatedReadyTime,omitempty"`
}
