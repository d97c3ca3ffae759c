package services

import (
	"context"
	"time"

	"github.com/gitshopapp/storefront/internal/models"
)

// OrderStore persists orders and their line items.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	GetOpen(ctx context.Context, id int64) (*models.Order, error)
	AttachUser(ctx context.Context, orderID, userID int64) error
	SetAddresses(ctx context.Context, orderID, billingAddressID, shippingAddressID int64) error
	MarkOrdered(ctx context.Context, orderID int64, orderedAt time.Time) error
	ListOrdered(ctx context.Context, limit, offset int) ([]*models.Order, error)
	CountOrdered(ctx context.Context) (int, error)

	ListItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error)
	GetItem(ctx context.Context, itemID int64) (*models.OrderItem, error)
	FindItem(ctx context.Context, orderID, productID, colourID, sizeID int64) (*models.OrderItem, error)
	CreateItem(ctx context.Context, item *models.OrderItem) error
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, itemID int64) error
}

type CatalogStore interface {
	ListProducts(ctx context.Context, category string, limit, offset int) ([]*models.Product, error)
	CountProducts(ctx context.Context) (int, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	EnsureCategory(ctx context.Context, name string) (models.Category, error)
	EnsureColour(ctx context.Context, name string) (models.Variation, error)
	EnsureSize(ctx context.Context, name string) (models.Variation, error)
}

type AddressStore interface {
	Create(ctx context.Context, address *models.Address) error
	GetByID(ctx context.Context, id int64) (*models.Address, error)
	ListForUser(ctx context.Context, userID int64, addressType models.AddressType) ([]*models.Address, error)
}

type PaymentStore interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
	PaymentReferenceUsed(ctx context.Context, method, reference string) (bool, error)
	ListPayments(ctx context.Context, orderID int64) ([]*models.Payment, error)
	UpsertStripePayment(ctx context.Context, orderID int64) (*models.StripePayment, error)
	UpdateStripePayment(ctx context.Context, payment *models.StripePayment) error
	GetStripePaymentByIntentID(ctx context.Context, intentID string) (*models.StripePayment, error)
	ListStripePayments(ctx context.Context, orderID int64) ([]*models.StripePayment, error)
	MarkStripePaymentSuccessful(ctx context.Context, id int64) error
}

type CustomerStore interface {
	GetOrCreate(ctx context.Context, userID int64, email string) (*models.Customer, error)
	SetStripeCustomerID(ctx context.Context, userID int64, stripeCustomerID string) error
}

// CartSession is the per-request handle on the session's active order id.
type CartSession interface {
	OrderID() int64
	BindOrder(ctx context.Context, orderID int64) error
}
