package models

import "fmt"

type AddressType string

const (
	AddressBilling  AddressType = "B"
	AddressShipping AddressType = "S"
)

func (t AddressType) Valid() bool {
	return t == AddressBilling || t == AddressShipping
}

func (t AddressType) Label() string {
	switch t {
	case AddressBilling:
		return "Billing"
	case AddressShipping:
		return "Shipping"
	default:
		return ""
	}
}

type Address struct {
	ID           int64       `json:"id"`
	UserID       int64       `json:"user_id"`
	AddressLine1 string      `json:"address_line_1"`
	AddressLine2 string      `json:"address_line_2"`
	City         string      `json:"city"`
	ZipCode      string      `json:"zip_code"`
	AddressType  AddressType `json:"address_type"`
	Default      bool        `json:"default"`
}

func (a *Address) String() string {
	if a == nil {
		return ""
	}
	return fmt.Sprintf("%s, %s, %s, %s", a.AddressLine1, a.AddressLine2, a.City, a.ZipCode)
}
