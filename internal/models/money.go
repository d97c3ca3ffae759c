package models

import "fmt"

// FormatCents renders an integer minor-unit amount as a two decimal string,
// e.g. 1050 -> "10.50".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// CentsToAmount converts cents to the float representation used by payment
// records.
func CentsToAmount(cents int64) float64 {
	return float64(cents) / 100
}
