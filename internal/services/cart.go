package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gitshopapp/storefront/internal/db"
	"github.com/gitshopapp/storefront/internal/logging"
	"github.com/gitshopapp/storefront/internal/models"
)

type CartService struct {
	orders  OrderStore
	catalog CatalogStore
	logger  *slog.Logger
}

func NewCartService(orders OrderStore, catalog CatalogStore, logger *slog.Logger) *CartService {
	return &CartService{orders: orders, catalog: catalog, logger: logger}
}

func (s *CartService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// ActiveOrder returns the unordered order bound to the session. A missing,
// unknown or already ordered binding is replaced by a new order. An
// authenticated shopper is attached to an ownerless order.
func (s *CartService) ActiveOrder(ctx context.Context, session CartSession, shopper models.Shopper) (*models.Order, error) {
	var order *models.Order

	if orderID := session.OrderID(); orderID != 0 {
		open, err := s.orders.GetOpen(ctx, orderID)
		switch {
		case err == nil:
			order = open
		case errors.Is(err, db.ErrNotFound):
			s.loggerFromContext(ctx).Info("session order is stale, starting a new cart", "order_id", orderID)
		default:
			return nil, fmt.Errorf("failed to load session order: %w", err)
		}
	}

	if order == nil {
		order = &models.Order{UserID: shopper.UserID, Items: []*models.OrderItem{}}
		if err := s.orders.Create(ctx, order); err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		if err := session.BindOrder(ctx, order.ID); err != nil {
			return nil, fmt.Errorf("failed to bind order to session: %w", err)
		}
	}

	if shopper.Authenticated() && !order.HasOwner() {
		if err := s.orders.AttachUser(ctx, order.ID, shopper.UserID); err != nil {
			return nil, fmt.Errorf("failed to attach user to order: %w", err)
		}
		order.UserID = shopper.UserID
	}

	return order, nil
}

// Summary returns the active order with its lines loaded.
func (s *CartService) Summary(ctx context.Context, session CartSession, shopper models.Shopper) (*models.Order, error) {
	order, err := s.ActiveOrder(ctx, session, shopper)
	if err != nil {
		return nil, err
	}
	if err := s.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *CartService) loadItems(ctx context.Context, order *models.Order) error {
	items, err := s.orders.ListItems(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	order.Items = items
	return nil
}

// Product returns the product the add-to-cart form is for.
func (s *CartService) Product(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.catalog.GetProductBySlug(ctx, slug)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return product, nil
}

type AddItemInput struct {
	Slug     string `form:"-"`
	Quantity int    `form:"quantity" validate:"gte=1"`
	ColourID int64  `form:"colour" validate:"required"`
	SizeID   int64  `form:"size" validate:"required"`
}

// AddItem puts quantity units of a product variant in the cart. A line with
// the same product, colour and size is incremented instead of duplicated.
// A quantity above the product's stock is rejected before anything is
// written.
func (s *CartService) AddItem(ctx context.Context, session CartSession, shopper models.Shopper, input AddItemInput) (*models.OrderItem, error) {
	product, err := s.Product(ctx, input.Slug)
	if err != nil {
		return nil, err
	}

	if err := validateStruct(input); err != nil {
		return nil, err
	}
	fields := map[string]string{}
	if !product.OffersColour(input.ColourID) {
		fields["colour"] = "Select a valid colour."
	}
	if !product.OffersSize(input.SizeID) {
		fields["size"] = "Select a valid size."
	}
	if err := newValidationError(fields); err != nil {
		return nil, err
	}
	if input.Quantity > product.Stock {
		return nil, &ValidationError{
			Fields: map[string]string{"quantity": fmt.Sprintf("The maximum stock available is %d", product.Stock)},
			Err:    ErrInsufficientStock,
		}
	}

	order, err := s.ActiveOrder(ctx, session, shopper)
	if err != nil {
		return nil, err
	}

	existing, err := s.orders.FindItem(ctx, order.ID, product.ID, input.ColourID, input.SizeID)
	switch {
	case err == nil:
		existing.Quantity += input.Quantity
		if err := s.orders.UpdateItemQuantity(ctx, existing.ID, existing.Quantity); err != nil {
			return nil, fmt.Errorf("failed to update order item: %w", err)
		}
		return existing, nil
	case !errors.Is(err, db.ErrNotFound):
		return nil, fmt.Errorf("failed to look up order item: %w", err)
	}

	item := &models.OrderItem{
		OrderID:   order.ID,
		ProductID: product.ID,
		Quantity:  input.Quantity,
		ColourID:  input.ColourID,
		SizeID:    input.SizeID,
		Product:   product,
	}
	if err := s.orders.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create order item: %w", err)
	}
	return item, nil
}

// IncreaseQuantity adds one unit to a line of the active order.
func (s *CartService) IncreaseQuantity(ctx context.Context, session CartSession, shopper models.Shopper, itemID int64) error {
	item, err := s.ownedItem(ctx, session, shopper, itemID)
	if err != nil {
		return err
	}
	if err := s.orders.UpdateItemQuantity(ctx, item.ID, item.Quantity+1); err != nil {
		return fmt.Errorf("failed to increase quantity: %w", err)
	}
	return nil
}

// DecreaseQuantity removes one unit from a line, deleting the line when it
// would drop to zero.
func (s *CartService) DecreaseQuantity(ctx context.Context, session CartSession, shopper models.Shopper, itemID int64) error {
	item, err := s.ownedItem(ctx, session, shopper, itemID)
	if err != nil {
		return err
	}
	if item.Quantity <= 1 {
		if err := s.orders.DeleteItem(ctx, item.ID); err != nil {
			return fmt.Errorf("failed to remove order item: %w", err)
		}
		return nil
	}
	if err := s.orders.UpdateItemQuantity(ctx, item.ID, item.Quantity-1); err != nil {
		return fmt.Errorf("failed to decrease quantity: %w", err)
	}
	return nil
}

// RemoveItem deletes a line of the active order.
func (s *CartService) RemoveItem(ctx context.Context, session CartSession, shopper models.Shopper, itemID int64) error {
	item, err := s.ownedItem(ctx, session, shopper, itemID)
	if err != nil {
		return err
	}
	if err := s.orders.DeleteItem(ctx, item.ID); err != nil {
		return fmt.Errorf("failed to remove order item: %w", err)
	}
	return nil
}

// ownedItem loads a line and checks it sits on the caller's active order.
// Lines of other orders are reported as not found.
func (s *CartService) ownedItem(ctx context.Context, session CartSession, shopper models.Shopper, itemID int64) (*models.OrderItem, error) {
	item, err := s.orders.GetItem(ctx, itemID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrOrderItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order item: %w", err)
	}

	order, err := s.ActiveOrder(ctx, session, shopper)
	if err != nil {
		return nil, err
	}
	if item.OrderID != order.ID {
		s.loggerFromContext(ctx).Warn("rejected mutation of foreign order item", "item_id", itemID, "order_id", order.ID)
		return nil, ErrOrderItemNotFound
	}
	return item, nil
}
