package service

import (
	"context"
	"fmt"
	"time"

	"github.com/greenhollow/stockade/internal/domain"
	"github.com/greenhollow/stockade/internal/store"
	"github.com/greenhollow/stockade/pkg/idx"
)

// CatalogService manages the product catalog behind the authenticated
// surface. Unknown ids surface store.ErrNotFound unchanged.
type CatalogService struct {
	Store store.Store
}

func (s *CatalogService) Create(ctx context.Context, name string, price float64) (domain.Product, error) {
	now := time.Now().UTC()
	p := domain.Product{
		ID:        idx.New().String(),
		Name:      name,
		Price:     price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Products().Create(ctx, p); err != nil {
		return domain.Product{}, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (domain.Product, error) {
	return s.Store.Products().GetByID(ctx, id)
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	return s.Store.Products().List(ctx)
}

func (s *CatalogService) Update(ctx context.Context, id, name string, price float64) (domain.Product, error) {
	existing, err := s.Store.Products().GetByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	existing.Name = name
	existing.Price = price
	existing.UpdatedAt = time.Now().UTC()

	if err := s.Store.Products().Update(ctx, existing); err != nil {
		return domain.Product{}, err
	}
	return existing, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	return s.Store.Products().Delete(ctx, id)
}
