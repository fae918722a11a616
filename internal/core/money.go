// Package core holds the domain model, the money utilities, the sparse budget
// grid and the pure aggregation and ledger-mutation rules. Nothing in this
// package performs I/O; persistence and transport live in their own packages.
package core

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Currency describes a display currency. Values are stored in one numeric
// unit throughout the system; the currency only affects formatting.
type Currency struct {
	Code   string
	Label  string
	Symbol string
	// group is the thousands separator for the currency's locale.
	group byte
}

// DefaultCurrencyCode is the fallback when an unknown code is requested.
const DefaultCurrencyCode = "IDR"

// Currencies maps supported display-currency codes to their configuration.
var Currencies = map[string]Currency{
	"IDR": {Code: "IDR", Label: "Rupiah (IDR)", Symbol: "Rp", group: '.'},
	"USD": {Code: "USD", Label: "US Dollar (USD)", Symbol: "$", group: ','},
	"AUD": {Code: "AUD", Label: "Australian Dollar (AUD)", Symbol: "A$", group: ','},
	"SGD": {Code: "SGD", Label: "Singapore Dollar (SGD)", Symbol: "S$", group: ','},
	"JPY": {Code: "JPY", Label: "Japanese Yen (JPY)", Symbol: "¥", group: ','},
	"CNY": {Code: "CNY", Label: "Chinese Yuan (CNY)", Symbol: "¥", group: ','},
}

// CurrencyFor resolves a code, falling back to IDR for anything unknown.
func CurrencyFor(code string) Currency {
	if c, ok := Currencies[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return c
	}
	return Currencies[DefaultCurrencyCode]
}

// ParseAmount extracts a non-negative integer amount from free-form input by
// stripping every non-digit rune. Empty or unparseable input yields 0; it
// never fails and never returns a negative or fractional value.
func ParseAmount(s string) int64 {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return 0
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		// Overflow from pathological input; treat as unparseable.
		return 0
	}
	return v
}

// ParseQuantity parses a non-negative decimal used for asset quantities and
// unit prices. Invalid or negative input yields zero.
func ParseQuantity(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// FormatAmount renders an integer amount with the currency's symbol and
// thousands grouping, zero decimal places. Unknown codes format as IDR.
func FormatAmount(v int64, code string) string {
	c := CurrencyFor(code)

	neg := v < 0
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(c.Symbol)
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte(c.group)
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte(c.group)
		}
	}
	return b.String()
}
