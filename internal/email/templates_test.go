package email

import (
	"context"
	"strings"
	"testing"
)

type recordingProvider struct {
	sent []*Email
}

func (r *recordingProvider) SendEmail(_ context.Context, email *Email) error {
	r.sent = append(r.sent, email)
	return nil
}

func TestRenderOrderConfirmation(t *testing.T) {
	t.Parallel()

	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	email, err := renderer.RenderOrderConfirmation(context.Background(), &OrderInfo{
		OrderNumber:   "ORDER-7",
		CustomerEmail: "buyer@example.com",
		ShopName:      "Storefront",
		ShopURL:       "https://shop.example.com",
		PaymentMethod: "Stripe",
		Items: []OrderItem{
			{Name: "Shirt <b>", Colour: "Red", Size: "M", Quantity: 3, TotalPrice: "7.50"},
		},
		Subtotal: "7.50",
		Total:    "7.50",
	})
	if err != nil {
		t.Fatalf("RenderOrderConfirmation() error = %v", err)
	}

	if email.To != "buyer@example.com" || email.Subject != "Order Confirmed - ORDER-7 - Storefront" {
		t.Fatalf("unexpected envelope %+v", email)
	}
	if !strings.Contains(email.Text, "- Shirt <b> (Red, M) x3 - 7.50") {
		t.Fatalf("unexpected text body:\n%s", email.Text)
	}
	if !strings.Contains(email.HTML, "Shirt &lt;b&gt;") {
		t.Fatalf("expected escaped HTML body:\n%s", email.HTML)
	}
}

func TestSendOrderConfirmation(t *testing.T) {
	t.Parallel()

	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	provider := &recordingProvider{}

	err = SendOrderConfirmation(context.Background(), provider, renderer, &OrderInfo{OrderNumber: "ORDER-1", CustomerEmail: "a@example.com"})
	if err != nil {
		t.Fatalf("SendOrderConfirmation() error = %v", err)
	}
	if len(provider.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(provider.sent))
	}
	if err := SendOrderConfirmation(context.Background(), nil, renderer, &OrderInfo{}); err != nil {
		t.Fatalf("nil provider should be a no-op, got %v", err)
	}
}

func TestNewProviderSelection(t *testing.T) {
	t.Parallel()

	p, err := NewProvider(Config{}, nil)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if _, ok := p.(*NoopProvider); !ok {
		t.Fatalf("expected NoopProvider, got %T", p)
	}
	if _, err := NewProvider(Config{APIKey: "re_123"}, nil); err == nil {
		t.Fatalf("expected error when sender is missing")
	}
	p, err = NewProvider(Config{APIKey: "re_123", From: "shop@example.com"}, nil)
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	if _, ok := p.(*ResendProvider); !ok {
		t.Fatalf("expected ResendProvider, got %T", p)
	}
}
