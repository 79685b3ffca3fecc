package utils

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders money, percentages and plain numbers for display.
// Thousands separators follow the formatter's locale.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter creates a Formatter for a BCP 47 locale such as "en" or "es-CO".
// Unknown locales fall back to English.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.English
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

var defaultFormatter = NewFormatter("en")

// DefaultFormatter returns the English formatter
func DefaultFormatter() *Formatter {
	return defaultFormatter
}

// FormatCurrency formats an amount like "$12,500.00".
// Negative amounts are rendered as "-$12,500.00".
func (f *Formatter) FormatCurrency(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	if rounded.IsNegative() {
		return "-$" + f.printer.Sprintf("%.2f", rounded.Abs().InexactFloat64())
	}
	return "$" + f.printer.Sprintf("%.2f", rounded.InexactFloat64())
}

// FormatPercentage formats a percentage with one decimal, like "65.0%"
func (f *Formatter) FormatPercentage(percentage decimal.Decimal) string {
	return f.printer.Sprintf("%.1f", percentage.Round(1).InexactFloat64()) + "%"
}

// FormatNumber formats whole numbers with thousands separators and
// fractional numbers with two decimals
func (f *Formatter) FormatNumber(number decimal.Decimal) string {
	if number.Equal(number.Truncate(0)) {
		return f.printer.Sprintf("%d", number.IntPart())
	}
	return f.printer.Sprintf("%.2f", number.Round(2).InexactFloat64())
}

// FormatCount formats a piece count with thousands separators
func (f *Formatter) FormatCount(count int) string {
	return f.printer.Sprintf("%d", count)
}
