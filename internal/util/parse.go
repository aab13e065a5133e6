package util

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var priceNumberRegex = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// ParsePrice extracts the first number from a display price such as
// "₹19,999.00" or "Rs. 1,299". Thousands separators are dropped.
func ParsePrice(s string) (float64, error) {
	m := priceNumberRegex.FindString(s)
	if m == "" {
		return 0, fmt.Errorf("no number in price %q", s)
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	f, _ := d.Round(2).Float64()
	return f, nil
}
