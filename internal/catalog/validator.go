package catalog

import (
	"fmt"
	"slices"
	"strings"
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Validate(config *SeedConfig) error {
	if len(config.Products) == 0 {
		return fmt.Errorf("at least one product is required")
	}

	for _, list := range []struct {
		name   string
		values []string
	}{
		{name: "category", values: config.Categories},
		{name: "colour", values: config.Colours},
		{name: "size", values: config.Sizes},
	} {
		if err := validateNames(list.name, list.values); err != nil {
			return err
		}
	}

	slugs := make(map[string]bool)
	for i, product := range config.Products {
		if err := v.validateProduct(config, &product); err != nil {
			return fmt.Errorf("product %d validation failed: %w", i, err)
		}

		slug := product.Slug
		if slug == "" {
			slug = SeedSlug(product.Title)
		}
		if slugs[slug] {
			return fmt.Errorf("duplicate slug: %s", slug)
		}
		slugs[slug] = true
	}

	return nil
}

func (v *Validator) validateProduct(config *SeedConfig, product *ProductConfig) error {
	if strings.TrimSpace(product.Title) == "" {
		return fmt.Errorf("product title is required")
	}

	if product.Slug != "" && !ValidSlug(product.Slug) {
		return fmt.Errorf("product slug %q is not valid", product.Slug)
	}
	if ReservedSlug(product.Slug) {
		return fmt.Errorf("product slug %q is reserved", product.Slug)
	}
	if product.Slug == "" && Slugify(product.Title) == "" {
		return fmt.Errorf("product title %q does not produce a slug", product.Title)
	}

	if _, err := ParsePriceCents(product.Price); err != nil {
		return err
	}

	if product.Stock < 0 {
		return fmt.Errorf("product stock must be zero or positive")
	}

	if product.Active && (len(product.Colours) == 0 || len(product.Sizes) == 0) {
		return fmt.Errorf("active products need at least one colour and one size")
	}

	references := []struct {
		kind     string
		declared []string
		used     []string
	}{
		{kind: "category", declared: config.Categories, used: append(nonEmpty(product.Category), product.SecondaryCategories...)},
		{kind: "colour", declared: config.Colours, used: product.Colours},
		{kind: "size", declared: config.Sizes, used: product.Sizes},
	}
	for _, ref := range references {
		for _, name := range ref.used {
			if !slices.Contains(ref.declared, name) {
				return fmt.Errorf("unknown %s %q", ref.kind, name)
			}
		}
	}

	return nil
}

func validateNames(kind string, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%s name is required", kind)
		}
		if seen[name] {
			return fmt.Errorf("duplicate %s: %s", kind, name)
		}
		seen[name] = true
	}
	return nil
}

func nonEmpty(value string) []string {
	if value == "" {
		return nil
	}
	return []string{value}
}
