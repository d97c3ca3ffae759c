package models

import "time"

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Variation is a colour or size option a product can be ordered in.
type Variation struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID                  int64       `json:"id"`
	Title               string      `json:"title"`
	Slug                string      `json:"slug"`
	Image               string      `json:"image"`
	Description         string      `json:"description"`
	PriceCents          int64       `json:"price_cents"`
	Stock               int         `json:"stock"`
	Active              bool        `json:"active"`
	PrimaryCategory     *Category   `json:"primary_category,omitempty"`
	SecondaryCategories []Category  `json:"secondary_categories"`
	Colours             []Variation `json:"available_colours"`
	Sizes               []Variation `json:"available_sizes"`
	CreatedAt           time.Time   `json:"created"`
	UpdatedAt           time.Time   `json:"updated"`
}

func (p *Product) InStock() bool {
	return p != nil && p.Stock > 0
}

func (p *Product) DisplayPrice() string {
	if p == nil {
		return FormatCents(0)
	}
	return FormatCents(p.PriceCents)
}

func (p *Product) OffersColour(colourID int64) bool {
	return hasVariation(p.Colours, colourID)
}

func (p *Product) OffersSize(sizeID int64) bool {
	return hasVariation(p.Sizes, sizeID)
}

func hasVariation(variations []Variation, id int64) bool {
	for _, v := range variations {
		if v.ID == id {
			return true
		}
	}
	return false
}
