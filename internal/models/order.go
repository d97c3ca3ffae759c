package models

import (
	"fmt"
	"time"
)

// Order is a shopper's cart until Ordered is set by a payment confirmation.
// UserID, BillingAddressID and ShippingAddressID are zero when unset.
type Order struct {
	ID                int64        `json:"id"`
	UserID            int64        `json:"user_id,omitempty"`
	Ordered           bool         `json:"ordered"`
	StartDate         time.Time    `json:"start_date"`
	OrderedDate       time.Time    `json:"ordered_date"`
	BillingAddressID  int64        `json:"billing_address_id,omitempty"`
	ShippingAddressID int64        `json:"shipping_address_id,omitempty"`
	BillingAddress    *Address     `json:"billing_address,omitempty"`
	ShippingAddress   *Address     `json:"shipping_address,omitempty"`
	Items             []*OrderItem `json:"items"`
}

func (o *Order) HasOwner() bool {
	return o != nil && o.UserID != 0
}

func (o *Order) ReferenceNumber() string {
	return fmt.Sprintf("ORDER-%d", o.ID)
}

// RawSubtotal sums quantity x unit price over the loaded items, in cents.
func (o *Order) RawSubtotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.RawTotalItemPrice()
	}
	return total
}

func (o *Order) Subtotal() string {
	return FormatCents(o.RawSubtotal())
}

// RawTotal is the amount charged. Tax, delivery and discounts are not
// modelled so it equals the subtotal.
func (o *Order) RawTotal() int64 {
	return o.RawSubtotal()
}

func (o *Order) Total() string {
	return FormatCents(o.RawTotal())
}

// ItemCount is the number of lines in the cart.
func (o *Order) ItemCount() int {
	return len(o.Items)
}

type OrderItem struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	ColourID  int64     `json:"colour_id"`
	SizeID    int64     `json:"size_id"`
	Product   *Product  `json:"product,omitempty"`
	Colour    Variation `json:"colour"`
	Size      Variation `json:"size"`
}

func (i *OrderItem) RawTotalItemPrice() int64 {
	if i == nil || i.Product == nil {
		return 0
	}
	return int64(i.Quantity) * i.Product.PriceCents
}

func (i *OrderItem) TotalItemPrice() string {
	return FormatCents(i.RawTotalItemPrice())
}

func (i *OrderItem) String() string {
	title := ""
	if i.Product != nil {
		title = i.Product.Title
	}
	return fmt.Sprintf("%d x %s", i.Quantity, title)
}
