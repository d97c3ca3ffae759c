package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePriceCents converts a decimal price such as "19.99" or "20" into
// cents. More than two decimals or a negative value is rejected.
func ParsePriceCents(price string) (int64, error) {
	price = strings.TrimSpace(price)
	if price == "" {
		return 0, fmt.Errorf("price is required")
	}

	whole, fraction, hasFraction := strings.Cut(price, ".")
	if whole == "" {
		whole = "0"
	}
	if hasFraction && (fraction == "" || len(fraction) > 2) {
		return 0, fmt.Errorf("price %q must have one or two decimals", price)
	}
	for len(fraction) < 2 {
		fraction += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 || strings.HasPrefix(whole, "+") {
		return 0, fmt.Errorf("invalid price %q", price)
	}
	cents, err := strconv.ParseInt(fraction, 10, 64)
	if err != nil || strings.ContainsAny(fraction, "+-") {
		return 0, fmt.Errorf("invalid price %q", price)
	}

	return units*100 + cents, nil
}
