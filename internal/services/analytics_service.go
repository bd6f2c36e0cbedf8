package services

import (
	"context"
	"time"

	"canteen_preorder/internal/apperr"
	"canteen_preorder/internal/models"
	"canteen_preorder/internal/repository"
)

type Dashboard struct {
	DailyOrders        []repository.DailyOrderStat `json:"dailyOrders"`
	DailyRevenue       []repository.DailyRevenue   `json:"dailyRevenue"`
	TopItems           []repository.TopItem        `json:"topItems"`
	OrderStatusSummary []repository.StatusSummary  `json:"orderStatusSummary"`
	PeakHours          []repository.PeakHour       `json:"peakHours"`
	LastUpdated        time.Time                   `json:"lastUpdated"`
}

type RealtimeStats struct {
	repository.TodayStats
	LastUpdated time.Time `json:"lastUpdated"`
}

type AnalyticsService interface {
	GetDashboard(ctx context.Context, requester models.Identity) (*Dashboard, error)
	GetRealtimeStats(ctx context.Context, requester models.Identity) (*RealtimeStats, error)
}

type analyticsService struct {
	analyticsRepo repository.AnalyticsRepository
}

func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository) AnalyticsService {
	return &analyticsService{analyticsRepo: analyticsRepo}
}

func (s *analyticsService) GetDashboard(ctx context.Context, requester models.Identity) (*Dashboard, error) {
	if !requester.IsAdmin() {
		return nil, apperr.ErrAuthorization
	}

	dailyOrders, err := s.analyticsRepo.DailyOrders()
	if err != nil {
		return nil, err
	}
	dailyRevenue, err := s.analyticsRepo.DailyRevenue()
	if err != nil {
		return nil, err
	}
	topItems, err := s.analyticsRepo.TopItems(5)
	if err != nil {
		return nil, err
	}
	statusSummary, err := s.analyticsRepo.StatusSummary()
	if err != nil {
		return nil, err
	}
	peakHours, err := s.analyticsRepo.PeakHours(5)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		DailyOrders:        dailyOrders,
		DailyRevenue:       dailyRevenue,
		TopItems:           topItems,
		OrderStatusSummary: statusSummary,
		PeakHours:          peakHours,
		LastUpdated:        time.Now(),
	}, nil
}

func (s *analyticsService) GetRealtimeStats(ctx context.Context, requester models.Identity) (*RealtimeStats, error) {
	if !requester.IsAdmin() {
		return nil, apperr.ErrAuthorization
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	stats, err := s.analyticsRepo.TodayStats(startOfDay)
	if err != nil {
		return nil, err
	}

	return &RealtimeStats{TodayStats: *stats, LastUpdated: now}, nil
}
