package services

import (
	"strings"
	"time"

	"github.com/gitshopapp/storefront/internal/email"
	"github.com/gitshopapp/storefront/internal/models"
)

// ShopDetails names the storefront in customer emails.
type ShopDetails struct {
	Name string
	URL  string
}

// BuildOrderInfo builds the OrderInfo payload for email templates. The order
// must have its items loaded.
func BuildOrderInfo(shop ShopDetails, order *models.Order, customerEmail, paymentMethod string) *email.OrderInfo {
	info := &email.OrderInfo{
		CustomerEmail: strings.TrimSpace(customerEmail),
		ShopName:      shop.Name,
		ShopURL:       strings.TrimRight(shop.URL, "/"),
		PaymentMethod: paymentMethod,
		Items:         []email.OrderItem{},
		Subtotal:      models.FormatCents(0),
		Total:         models.FormatCents(0),
	}
	if order == nil {
		info.OrderDate = time.Now().Format("January 2, 2006")
		return info
	}

	orderDate := order.OrderedDate
	if orderDate.IsZero() {
		orderDate = time.Now()
	}
	info.OrderNumber = order.ReferenceNumber()
	info.OrderDate = orderDate.Format("January 2, 2006")
	info.ShippingAddress = order.ShippingAddress.String()
	info.Subtotal = order.Subtotal()
	info.Total = order.Total()

	for _, item := range order.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Title
		}
		info.Items = append(info.Items, email.OrderItem{
			Name:       name,
			Colour:     item.Colour.Name,
			Size:       item.Size.Name,
			Quantity:   item.Quantity,
			TotalPrice: item.TotalItemPrice(),
		})
	}
	return info
}
