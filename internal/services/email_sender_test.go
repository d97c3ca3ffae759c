package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitshopapp/storefront/internal/email"
	"github.com/gitshopapp/storefront/internal/models"
)

type capturingProvider struct {
	sent []*email.Email
}

func (p *capturingProvider) SendEmail(_ context.Context, e *email.Email) error {
	p.sent = append(p.sent, e)
	return nil
}

func TestEmailOrderNotifier(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	catalog := newFakeCatalogStore(testProduct())
	orders := newFakeOrderStore(catalog)
	addresses := newFakeAddressStore(&models.Address{ID: 3, UserID: 7, AddressLine1: "1 Main St", City: "Springfield", AddressType: models.AddressShipping})
	customers := newFakeCustomerStore()
	_, err := customers.GetOrCreate(ctx, 7, "shopper@example.com")
	require.NoError(t, err)

	renderer, err := email.NewRenderer()
	require.NoError(t, err)
	provider := &capturingProvider{}
	notifier := NewEmailOrderNotifier(provider, renderer, orders, addresses, customers, ShopDetails{Name: "Storefront", URL: "https://shop.example.com/"})

	order := &models.Order{UserID: 7}
	require.NoError(t, orders.Create(ctx, order))
	require.NoError(t, orders.CreateItem(ctx, &models.OrderItem{OrderID: order.ID, ProductID: 1, Quantity: 2, ColourID: 10, SizeID: 20, Colour: models.Variation{Name: "Red"}, Size: models.Variation{Name: "M"}}))
	order.ShippingAddressID = 3
	order.OrderedDate = time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

	require.NoError(t, notifier.OrderPlaced(ctx, order, PaymentMethodStripe))
	require.Len(t, provider.sent, 1)

	sent := provider.sent[0]
	assert.Equal(t, "shopper@example.com", sent.To)
	assert.Contains(t, sent.Subject, "ORDER-1")
	assert.True(t, strings.Contains(sent.Text, "Linen Shirt (Red, M) x2 - 5.00"), sent.Text)
	assert.Contains(t, sent.Text, "Springfield")
	assert.Contains(t, sent.Text, "March 9, 2024")
}

func TestEmailOrderNotifierSkipsAnonymousOrders(t *testing.T) {
	t.Parallel()

	renderer, err := email.NewRenderer()
	require.NoError(t, err)
	provider := &capturingProvider{}
	notifier := NewEmailOrderNotifier(provider, renderer, newFakeOrderStore(nil), newFakeAddressStore(), newFakeCustomerStore(), ShopDetails{})

	require.NoError(t, notifier.OrderPlaced(context.Background(), &models.Order{ID: 1}, PaymentMethodStripe))
	require.NoError(t, notifier.OrderPlaced(context.Background(), &models.Order{ID: 2, UserID: 9}, PaymentMethodStripe))
	assert.Empty(t, provider.sent)
}
