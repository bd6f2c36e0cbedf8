package services

import (
	"context"
	"time"

	"canteen_preorder/internal/models"
	"canteen_preorder/internal/redis"
	"canteen_preorder/internal/repository"
)

// Catalog is the read-only lookup the order lifecycle depends on.
type Catalog interface {
	GetItem(ctx context.Context, id uint) (*models.MenuItem, error)
}

type CatalogService interface {
	Catalog
	ListAvailable(ctx context.Context) ([]models.MenuItem, error)
}

type catalogService struct {
	menuRepo repository.MenuRepository
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewCatalogService returns a catalog backed by the menu table with an
// optional Redis read-through cache. cache may be nil.
func NewCatalogService(menuRepo repository.MenuRepository, cache *redis.Client, cacheTTL time.Duration) CatalogService {
	return &catalogService{menuRepo: menuRepo, cache: cache, cacheTTL: cacheTTL}
}

func (s *catalogService) GetItem(ctx context.Context, id uint) (*models.MenuItem, error) {
	if s.cache != nil {
		if item, err := s.cache.GetMenuItem(ctx, id); err == nil {
			return item, nil
		}
	}

	item, err := s.menuRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		// Cache failures never fail the lookup
		_ = s.cache.SetMenuItem(ctx, item, s.cacheTTL)
	}
	return item, nil
}

func (s *catalogService) ListAvailable(ctx context.Context) ([]models.MenuItem, error) {
	return s.menuRepo.GetAvailable()
}
