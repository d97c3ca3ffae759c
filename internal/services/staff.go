package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gitshopapp/storefront/internal/catalog"
	"github.com/gitshopapp/storefront/internal/db"
	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/models"
)

const StaffPageSize = 20

type StaffService struct {
	orders  OrderStore
	catalog CatalogStore
	logger  *slog.Logger
}

func NewStaffService(orders OrderStore, catalog CatalogStore, logger *slog.Logger) *StaffService {
	return &StaffService{orders: orders, catalog: catalog, logger: logger}
}

func (s *StaffService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

type Page struct {
	Number     int  `json:"number"`
	PerPage    int  `json:"per_page"`
	TotalCount int  `json:"total_count"`
	NumPages   int  `json:"num_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_previous"`
}

func newPage(number, total int) Page {
	if number < 1 {
		number = 1
	}
	pages := (total + StaffPageSize - 1) / StaffPageSize
	if pages < 1 {
		pages = 1
	}
	return Page{
		Number:     number,
		PerPage:    StaffPageSize,
		TotalCount: total,
		NumPages:   pages,
		HasNext:    number < pages,
		HasPrev:    number > 1,
	}
}

func (p Page) offset() int {
	return (p.Number - 1) * p.PerPage
}

type StaffOrders struct {
	Orders []*models.Order `json:"orders"`
	Page   Page            `json:"page"`
}

type StaffProducts struct {
	Products []*models.Product `json:"products"`
	Page     Page              `json:"page"`
}

func requireStaff(shopper models.Shopper) error {
	if !shopper.Authenticated() {
		return ErrLoginRequired
	}
	if !shopper.Staff {
		return ErrForbidden
	}
	return nil
}

// Orders lists placed orders, most recently ordered first.
func (s *StaffService) Orders(ctx context.Context, shopper models.Shopper, page int) (*StaffOrders, error) {
	if err := requireStaff(shopper); err != nil {
		return nil, err
	}

	total, err := s.orders.CountOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	p := newPage(page, total)
	orders, err := s.orders.ListOrdered(ctx, p.PerPage, p.offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return &StaffOrders{Orders: orders, Page: p}, nil
}

func (s *StaffService) Products(ctx context.Context, shopper models.Shopper, page int) (*StaffProducts, error) {
	if err := requireStaff(shopper); err != nil {
		return nil, err
	}

	total, err := s.catalog.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	p := newPage(page, total)
	products, err := s.catalog.ListProducts(ctx, "", p.PerPage, p.offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return &StaffProducts{Products: products, Page: p}, nil
}

type ProductInput struct {
	Title               string   `form:"title" json:"title" validate:"required,max=150"`
	Slug                string   `form:"slug" json:"slug"`
	Image               string   `form:"image" json:"image" validate:"required"`
	Description         string   `form:"description" json:"description" validate:"required"`
	Price               string   `form:"price" json:"price" validate:"required"`
	Stock               int      `form:"stock" json:"stock" validate:"gte=0"`
	Active              bool     `form:"active" json:"active"`
	PrimaryCategory     string   `form:"primary_category" json:"primary_category"`
	SecondaryCategories []string `form:"secondary_categories" json:"secondary_categories"`
	Colours             []string `form:"available_colours" json:"available_colours"`
	Sizes               []string `form:"available_sizes" json:"available_sizes"`
}

func (s *StaffService) CreateProduct(ctx context.Context, shopper models.Shopper, input ProductInput) (*models.Product, error) {
	if err := requireStaff(shopper); err != nil {
		return nil, err
	}

	product := &models.Product{}
	if err := s.applyInput(ctx, product, input); err != nil {
		return nil, err
	}
	if err := s.catalog.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.loggerFromContext(ctx).Info("product created", "product_id", product.ID, "slug", product.Slug, "user_id", shopper.UserID)
	return product, nil
}

func (s *StaffService) UpdateProduct(ctx context.Context, shopper models.Shopper, productID int64, input ProductInput) (*models.Product, error) {
	if err := requireStaff(shopper); err != nil {
		return nil, err
	}

	product, err := s.catalog.GetProductByID(ctx, productID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	if err := s.applyInput(ctx, product, input); err != nil {
		return nil, err
	}
	if err := s.catalog.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.loggerFromContext(ctx).Info("product updated", "product_id", product.ID, "slug", product.Slug, "user_id", shopper.UserID)
	return product, nil
}

func (s *StaffService) DeleteProduct(ctx context.Context, shopper models.Shopper, productID int64) error {
	if err := requireStaff(shopper); err != nil {
		return err
	}

	err := s.catalog.DeleteProduct(ctx, productID)
	if errors.Is(err, db.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.loggerFromContext(ctx).Info("product deleted", "product_id", productID, "user_id", shopper.UserID)
	return nil
}

// applyInput validates input and copies it onto product. The slug is the
// submitted one or derived from the title, suffixed until no other product
// uses it.
func (s *StaffService) applyInput(ctx context.Context, product *models.Product, input ProductInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Slug = strings.TrimSpace(input.Slug)

	fields := map[string]string{}
	var validationErr *ValidationError
	if err := validateStruct(input); err != nil {
		if !errors.As(err, &validationErr) {
			return err
		}
		for field, msg := range validationErr.Fields {
			fields[field] = msg
		}
	}

	priceCents, err := catalog.ParsePriceCents(input.Price)
	if err != nil && fields["price"] == "" {
		fields["price"] = "Enter a valid price."
	}
	if input.Slug != "" && !catalog.ValidSlug(input.Slug) {
		fields["slug"] = "Enter a valid slug consisting of lowercase letters, numbers or hyphens."
	}
	if err := newValidationError(fields); err != nil {
		return err
	}

	base := input.Slug
	if base == "" {
		base = catalog.Slugify(input.Title)
	}
	slug, err := catalog.UniqueSlug(ctx, base, func(ctx context.Context, slug string) (bool, error) {
		return s.catalog.SlugExists(ctx, slug, product.ID)
	})
	if err != nil {
		return err
	}

	product.Title = input.Title
	product.Slug = slug
	product.Image = strings.TrimSpace(input.Image)
	product.Description = input.Description
	product.PriceCents = priceCents
	product.Stock = input.Stock
	product.Active = input.Active

	product.PrimaryCategory = nil
	if name := strings.TrimSpace(input.PrimaryCategory); name != "" {
		category, err := s.catalog.EnsureCategory(ctx, name)
		if err != nil {
			return err
		}
		product.PrimaryCategory = &category
	}

	product.SecondaryCategories = []models.Category{}
	for _, name := range nonEmpty(input.SecondaryCategories) {
		category, err := s.catalog.EnsureCategory(ctx, name)
		if err != nil {
			return err
		}
		product.SecondaryCategories = append(product.SecondaryCategories, category)
	}

	product.Colours = []models.Variation{}
	for _, name := range nonEmpty(input.Colours) {
		colour, err := s.catalog.EnsureColour(ctx, name)
		if err != nil {
			return err
		}
		product.Colours = append(product.Colours, colour)
	}

	product.Sizes = []models.Variation{}
	for _, name := range nonEmpty(input.Sizes) {
		size, err := s.catalog.EnsureSize(ctx, name)
		if err != nil {
			return err
		}
		product.Sizes = append(product.Sizes, size)
	}
	return nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
