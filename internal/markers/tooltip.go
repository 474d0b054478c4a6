package markers

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders prices and metrics for tooltips.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

// NewFormatter creates a formatter for a locale and currency symbol.
func NewFormatter(tag language.Tag, symbol string) *Formatter {
	return &Formatter{
		printer: message.NewPrinter(tag),
		symbol:  symbol,
	}
}

// DefaultFormatter formats won amounts with Korean digit grouping.
func DefaultFormatter() *Formatter {
	return NewFormatter(language.Korean, "₩")
}

// Price formats a price with thousands separators, e.g. ₩12,300.
func (f *Formatter) Price(v int64) string {
	return f.symbol + f.printer.Sprintf("%d", v)
}

// Distance formats kilometres with two decimals.
func (f *Formatter) Distance(km float64) string {
	return f.printer.Sprintf("%.2fkm", km)
}

// Score formats an efficiency score.
func (f *Formatter) Score(score float64) string {
	return f.printer.Sprintf("%.1f", score)
}
