package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gitshopapp/storefront/internal/db"
	"github.com/gitshopapp/storefront/internal/models"
)

// SeedStore is the catalog persistence the seeder writes through.
type SeedStore interface {
	EnsureCategory(ctx context.Context, name string) (models.Category, error)
	EnsureColour(ctx context.Context, name string) (models.Variation, error)
	EnsureSize(ctx context.Context, name string) (models.Variation, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
}

// SeedResult counts what a seed run wrote.
type SeedResult struct {
	Created int
	Updated int
}

type Seeder struct {
	store     SeedStore
	validator *Validator
	logger    *slog.Logger
}

func NewSeeder(store SeedStore, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{store: store, validator: NewValidator(), logger: logger}
}

// Seed validates config and upserts every product by slug.
func (s *Seeder) Seed(ctx context.Context, config *SeedConfig) (SeedResult, error) {
	var result SeedResult
	if err := s.validator.Validate(config); err != nil {
		return result, fmt.Errorf("invalid catalog: %w", err)
	}

	categories := make(map[string]models.Category, len(config.Categories))
	for _, name := range config.Categories {
		category, err := s.store.EnsureCategory(ctx, name)
		if err != nil {
			return result, err
		}
		categories[name] = category
	}
	colours := make(map[string]models.Variation, len(config.Colours))
	for _, name := range config.Colours {
		colour, err := s.store.EnsureColour(ctx, name)
		if err != nil {
			return result, err
		}
		colours[name] = colour
	}
	sizes := make(map[string]models.Variation, len(config.Sizes))
	for _, name := range config.Sizes {
		size, err := s.store.EnsureSize(ctx, name)
		if err != nil {
			return result, err
		}
		sizes[name] = size
	}

	for _, cfg := range config.Products {
		product, err := buildProduct(cfg, categories, colours, sizes)
		if err != nil {
			return result, err
		}

		existing, err := s.store.GetProductBySlug(ctx, product.Slug)
		switch {
		case errors.Is(err, db.ErrNotFound):
			if err := s.store.CreateProduct(ctx, product); err != nil {
				return result, fmt.Errorf("failed to create product %s: %w", product.Slug, err)
			}
			result.Created++
		case err != nil:
			return result, fmt.Errorf("failed to load product %s: %w", product.Slug, err)
		default:
			product.ID = existing.ID
			if err := s.store.UpdateProduct(ctx, product); err != nil {
				return result, fmt.Errorf("failed to update product %s: %w", product.Slug, err)
			}
			result.Updated++
		}
		s.logger.Info("seeded product", "slug", product.Slug, "id", product.ID)
	}

	return result, nil
}

func buildProduct(cfg ProductConfig, categories map[string]models.Category, colours, sizes map[string]models.Variation) (*models.Product, error) {
	price, err := ParsePriceCents(cfg.Price)
	if err != nil {
		return nil, err
	}
	slug := cfg.Slug
	if slug == "" {
		slug = SeedSlug(cfg.Title)
	}

	product := &models.Product{
		Title:               cfg.Title,
		Slug:                slug,
		Image:               cfg.Image,
		Description:         cfg.Description,
		PriceCents:          price,
		Stock:               cfg.Stock,
		Active:              cfg.Active,
		SecondaryCategories: []models.Category{},
		Colours:             []models.Variation{},
		Sizes:               []models.Variation{},
	}
	if cfg.Category != "" {
		category := categories[cfg.Category]
		product.PrimaryCategory = &category
	}
	for _, name := range cfg.SecondaryCategories {
		product.SecondaryCategories = append(product.SecondaryCategories, categories[name])
	}
	for _, name := range cfg.Colours {
		product.Colours = append(product.Colours, colours[name])
	}
	for _, name := range cfg.Sizes {
		product.Sizes = append(product.Sizes, sizes[name])
	}
	return product, nil
}
