package email

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// OrderInfo is the data rendered into order emails.
type OrderInfo struct {
	OrderNumber     string
	CustomerEmail   string
	ShopName        string
	ShopURL         string
	OrderDate       string
	PaymentMethod   string
	ShippingAddress string
	Items           []OrderItem
	Subtotal        string
	Total           string
}

type OrderItem struct {
	Name       string
	Colour     string
	Size       string
	Quantity   int
	TotalPrice string
}

// Renderer renders the built-in order emails.
type Renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func NewRenderer() (*Renderer, error) {
	html, err := htmltemplate.New("order_confirmation").Parse(orderConfirmationHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML template: %w", err)
	}
	text, err := texttemplate.New("order_confirmation").Parse(orderConfirmationText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse text template: %w", err)
	}
	return &Renderer{html: html, text: text}, nil
}

// RenderOrderConfirmation renders the email sent once an order is paid.
func (r *Renderer) RenderOrderConfirmation(_ context.Context, data *OrderInfo) (*Email, error) {
	if data == nil {
		return nil, fmt.Errorf("order info is required")
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := r.html.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render HTML template: %w", err)
	}
	if err := r.text.Execute(&textBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render text template: %w", err)
	}

	return &Email{
		To:      data.CustomerEmail,
		Subject: fmt.Sprintf("Order Confirmed - %s - %s", data.OrderNumber, data.ShopName),
		Text:    textBuf.String(),
		HTML:    htmlBuf.String(),
	}, nil
}

// SendOrderConfirmation renders and sends the confirmation email.
func SendOrderConfirmation(ctx context.Context, p Provider, renderer *Renderer, orderInfo *OrderInfo) error {
	if p == nil {
		return nil
	}

	email, err := renderer.RenderOrderConfirmation(ctx, orderInfo)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	return p.SendEmail(ctx, email)
}

const orderConfirmationText = `Thank you for your order!

Order Number: {{.OrderNumber}}
Order Date: {{.OrderDate}}
Paid with: {{.PaymentMethod}}

Items:
{{range .Items}}
- {{.Name}} ({{.Colour}}, {{.Size}}) x{{.Quantity}} - {{.TotalPrice}}
{{end}}

Subtotal: {{.Subtotal}}
Total: {{.Total}}
{{if .ShippingAddress}}
Shipping to: {{.ShippingAddress}}
{{end}}
Thank you for shopping with {{.ShopName}}!
{{.ShopURL}}
`

const orderConfirmationHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Order Confirmation</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #2563eb; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
    .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
    .items-table { width: 100%; border-collapse: collapse; margin: 15px 0; }
    .items-table th { text-align: left; padding: 10px; background: #f3f4f6; border-bottom: 2px solid #e5e7eb; }
    .items-table td { padding: 10px; border-bottom: 1px solid #e5e7eb; }
    .total { font-size: 18px; font-weight: bold; text-align: right; padding: 15px 0; }
    .footer { text-align: center; padding: 20px; color: #6b7280; font-size: 14px; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Order Confirmed!</h1>
    <p>{{.OrderNumber}} &middot; {{.OrderDate}}</p>
  </div>
  <div class="content">
    <table class="items-table">
      <thead>
        <tr>
          <th>Item</th>
          <th>Qty</th>
          <th>Price</th>
        </tr>
      </thead>
      <tbody>
        {{range .Items}}
        <tr>
          <td>{{.Name}}<br><small>{{.Colour}} / {{.Size}}</small></td>
          <td>{{.Quantity}}</td>
          <td>{{.TotalPrice}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>

    <div class="total">
      <p>Subtotal: {{.Subtotal}}</p>
      <p>Total: {{.Total}}</p>
    </div>
    {{if .ShippingAddress}}<p><strong>Shipping to:</strong> {{.ShippingAddress}}</p>{{end}}
    <p>Paid with {{.PaymentMethod}}.</p>
  </div>
  <div class="footer">
    <p>Thank you for shopping with <a href="{{.ShopURL}}">{{.ShopName}}</a></p>
  </div>
</body>
</html>
`
