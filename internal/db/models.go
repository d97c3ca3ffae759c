package db

import "github.com/gitshopapp/storefront/internal/models"

type Product = models.Product
type Category = models.Category
type Variation = models.Variation
type Order = models.Order
type OrderItem = models.OrderItem
type Address = models.Address
type AddressType = models.AddressType
type Payment = models.Payment
type StripePayment = models.StripePayment
type Customer = models.Customer

const (
	AddressBilling  = models.AddressBilling
	AddressShipping = models.AddressShipping
)
