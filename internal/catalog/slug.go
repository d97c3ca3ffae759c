package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// reservedSlugs are the top-level path segments the router serves before the
// product routes at /{slug}/.
var reservedSlugs = map[string]bool{
	"auth":              true,
	"checkout":          true,
	"confirm-order":     true,
	"decrease-quantity": true,
	"health":            true,
	"increase-quantity": true,
	"orders":            true,
	"payment":           true,
	"remove-from-cart":  true,
	"shop":              true,
	"staff":             true,
	"thank-you":         true,
	"webhooks":          true,
}

// ReservedSlug reports whether slug would be shadowed by a storefront route.
func ReservedSlug(slug string) bool {
	return reservedSlugs[slug]
}

// SeedSlug derives the slug of a seeded product. A title that collides with a
// route segment gets the -2 suffix.
func SeedSlug(title string) string {
	slug := Slugify(title)
	if ReservedSlug(slug) {
		return slug + "-2"
	}
	return slug
}

// ValidSlug reports whether slug is lowercase words joined by single hyphens.
func ValidSlug(slug string) bool {
	return slugPattern.MatchString(slug)
}

// Slugify lowercases title, drops accents and joins alphanumeric runs with
// hyphens: "Blue T-Shirt (XL)" -> "blue-t-shirt-xl".
func Slugify(title string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range norm.NFKD.String(title) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}

// SlugExistsFunc reports whether slug is taken by another product.
type SlugExistsFunc func(ctx context.Context, slug string) (bool, error)

// UniqueSlug returns base, or base-2, base-3 and so on, whichever is free
// first. Reserved slugs are never free.
func UniqueSlug(ctx context.Context, base string, exists SlugExistsFunc) (string, error) {
	if base == "" {
		base = "product"
	}
	candidate := base
	for n := 2; ; n++ {
		taken := ReservedSlug(candidate)
		if !taken {
			var err error
			taken, err = exists(ctx, candidate)
			if err != nil {
				return "", fmt.Errorf("failed to check slug %q: %w", candidate, err)
			}
		}
		if !taken {
			return candidate, nil
		}
		if n > 1000 {
			return "", fmt.Errorf("no free slug for %q", base)
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
