package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var numericPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// ParsePrice converts a display price ("₹1,100.00", "500", "$ 20.5") into a
// decimal. Unlike a float parse it fails loudly on anything that is not a
// plain number once currency symbols and separators are stripped.
func ParsePrice(priceStr string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(priceStr)
	for _, sym := range []string{"₹", "$", "Rs.", "Rs", "INR", ","} {
		clean = strings.ReplaceAll(clean, sym, "")
	}
	clean = strings.TrimSpace(clean)

	if !numericPattern.MatchString(clean) {
		return decimal.Zero, fmt.Errorf("invalid price %q", priceStr)
	}
	return decimal.NewFromString(clean)
}

// FormatINR renders an amount the way the storefront shows it.
func FormatINR(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}
