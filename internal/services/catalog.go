package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gitshopapp/storefront/internal/db"
	"github.com/gitshopapp/storefront/internal/models"
)

type CatalogService struct {
	catalog CatalogStore
	logger  *slog.Logger
}

func NewCatalogService(catalog CatalogStore, logger *slog.Logger) *CatalogService {
	return &CatalogService{catalog: catalog, logger: logger}
}

type CatalogListing struct {
	Products   []*models.Product `json:"products"`
	Categories []string          `json:"categories"`
	Category   string            `json:"category,omitempty"`
}

// List returns every product, or those whose primary or any secondary
// category is named category, together with all category names.
func (s *CatalogService) List(ctx context.Context, category string) (*CatalogListing, error) {
	category = strings.TrimSpace(category)

	products, err := s.catalog.ListProducts(ctx, category, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return &CatalogListing{Products: products, Categories: names, Category: category}, nil
}

func (s *CatalogService) Detail(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.catalog.GetProductBySlug(ctx, slug)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return product, nil
}
