package repository

import (
	"time"

	"canteen_preorder/internal/models"

	"gorm.io/gorm"
)

type DailyOrderStat struct {
	Date      string `json:"date"`
	Count     int64  `json:"count"`
	Completed int64  `json:"completed"`
	Cancelled int64  `json:"cancelled"`
}

type StatusSummary struct {
	Status        string  `json:"status"`
	Count         int64   `json:"count"`
	TotalAmount   float64 `json:"total_amount"`
	AverageAmount float64 `json:"average_amount"`
}

type DailyRevenue struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

type TopItem struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	TotalQty int64   `json:"total_qty"`
	Revenue  float64 `json:"revenue"`
}

type PeakHour struct {
	Hour       int   `json:"hour"`
	OrderCount int64 `json:"order_count"`
}

type TodayStats struct {
	TotalOrders       int64   `json:"total_orders"`
	PendingOrders     int64   `json:"pending_orders"`
	PreparingOrders   int64   `json:"preparing_orders"`
	CompletedOrders   int64   `json:"completed_orders"`
	TotalRevenue      float64 `json:"total_revenue"`
	AverageOrderValue float64 `json:"average_order_value"`
}

type AnalyticsRepository interface {
	DailyOrders() ([]DailyOrderStat, error)
	DailyRevenue() ([]DailyRevenue, error)
	TopItems(limit int) ([]TopItem, error)
	StatusSummary() ([]StatusSummary, error)
	PeakHours(limit int) ([]PeakHour, error)
	TodayStats(startOfDay time.Time) (*TodayStats, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) DailyOrders() ([]DailyOrderStat, error) {
	var stats []DailyOrderStat
	err := r.db.Model(&models.Order{}).
		Select(`to_char(created_at, 'YYYY-MM-DD') AS date,
			count(*) AS count,
			count(*) FILTER (WHERE status = 'completed') AS completed,
			count(*) FILTER (WHERE status = 'cancelled') AS cancelled`).
		Group("to_char(created_at, 'YYYY-MM-DD')").
		Order("date").
		Scan(&stats).Error
	return stats, err
}

func (r *analyticsRepository) DailyRevenue() ([]DailyRevenue, error) {
	var revenue []DailyRevenue
	err := r.db.Model(&models.Order{}).
		Select(`to_char(created_at, 'YYYY-MM-DD') AS date, sum(amount) AS total`).
		Where("status IN ?", []string{"completed", "ready"}).
		Group("to_char(created_at, 'YYYY-MM-DD')").
		Order("date").
		Scan(&revenue).Error
	return revenue, err
}

func (r *analyticsRepository) TopItems(limit int) ([]TopItem, error) {
	var items []TopItem
	err := r.db.Model(&models.OrderItem{}).
		Select(`order_items.item_name AS name,
			menu_items.category AS category,
			sum(order_items.quantity) AS total_qty,
			sum(order_items.total_price) AS revenue`).
		Joins("JOIN menu_items ON menu_items.id = order_items.menu_item_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status IN ?", []string{"completed", "ready"}).
		Group("order_items.item_name, menu_items.category").
		Order("total_qty DESC").
		Limit(limit).
		Scan(&items).Error
	return items, err
}

func (r *analyticsRepository) StatusSummary() ([]StatusSummary, error) {
	var summary []StatusSummary
	err := r.db.Model(&models.Order{}).
		Select(`status, count(*) AS count, sum(amount) AS total_amount, avg(amount) AS average_amount`).
		Group("status").
		Scan(&summary).Error
	return summary, err
}

func (r *analyticsRepository) PeakHours(limit int) ([]PeakHour, error) {
	var hours []PeakHour
	err := r.db.Model(&models.Order{}).
		Select(`extract(hour FROM created_at)::int AS hour, count(*) AS order_count`).
		Group("extract(hour FROM created_at)").
		Order("order_count DESC").
		Limit(limit).
		Scan(&hours).Error
	return hours, err
}

func (r *analyticsRepository) TodayStats(startOfDay time.Time) (*TodayStats, error) {
	var stats TodayStats
	err := r.db.Model(&models.Order{}).
		Select(`count(*) AS total_orders,
			count(*) FILTER (WHERE status = 'pending') AS pending_orders,
			count(*) FILTER (WHERE status = 'preparing') AS preparing_orders,
			count(*) FILTER (WHERE status = 'completed') AS completed_orders,
			coalesce(sum(amount), 0) AS total_revenue,
			coalesce(avg(amount), 0) AS average_order_value`).
		Where("created_at >= ?", startOfDay).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
