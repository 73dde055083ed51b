// Package currencyutils parses and formats the monetary amounts of
// transaction lines.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyMarks = regexp.MustCompile(`CHF|EUR|USD|GBP|[€$£¥\s]`)

// ParseAmount parses an amount cell into a decimal value. A blank cell is zero.
// It accepts formats like "1,234.56", "1.234,56", "1'234.56" and "CHF 12.50".
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	standardized := StandardizeAmount(amountStr)
	if standardized == "" {
		return decimal.Zero, nil
	}

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", amountStr, err)
	}
	return amount, nil
}

// StandardizeAmount rewrites an amount into the plain "-1234.56" form
// understood by decimal.NewFromString.
func StandardizeAmount(amountStr string) string {
	amountStr = currencyMarks.ReplaceAllString(amountStr, "")
	amountStr = strings.ReplaceAll(amountStr, "'", "")

	lastComma := strings.LastIndex(amountStr, ",")
	lastDot := strings.LastIndex(amountStr, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastDot < lastComma {
			// 1.234,56
			amountStr = strings.ReplaceAll(amountStr, ".", "")
			amountStr = strings.ReplaceAll(amountStr, ",", ".")
		} else {
			// 1,234.56
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	case lastComma >= 0:
		// One or two trailing digits mark a decimal comma, otherwise a thousands separator.
		if len(amountStr)-lastComma-1 <= 2 {
			amountStr = amountStr[:lastComma] + "." + amountStr[lastComma+1:]
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		} else {
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	}
	return amountStr
}

// FormatAmount renders an amount with at least two decimals and no thousands
// separators, as written to result files. Extra decimals are kept as is.
func FormatAmount(amount decimal.Decimal) string {
	places := -amount.Exponent()
	if places < 2 {
		places = 2
	}
	return amount.StringFixed(places)
}
