package formula

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultFeeTolerance is the accepted distance from the expected fee.
var DefaultFeeTolerance = decimal.RequireFromString("0.01")

// FeeBand is the inclusive range [fee-tolerance, fee+tolerance] rendered into
// conditional formatting formulas.
type FeeBand struct {
	Low    decimal.Decimal
	High   decimal.Decimal
	Locale Locale
}

// NewFeeBand builds the band around fee.
func NewFeeBand(fee, tolerance decimal.Decimal, locale Locale) FeeBand {
	return FeeBand{
		Low:    fee.Sub(tolerance),
		High:   fee.Add(tolerance),
		Locale: locale,
	}
}

// InRangeFormula is true when cell lies within the band.
func (b FeeBand) InRangeFormula(cell string) string {
	return fmt.Sprintf("=AND(%s>=%s%s %s<=%s)",
		cell, b.low(), b.Locale.ArgumentSeparator, cell, b.high())
}

// OutOfRangeFormula is true when cell lies outside the band.
func (b FeeBand) OutOfRangeFormula(cell string) string {
	return fmt.Sprintf("=OR(%s<%s%s %s>%s)",
		cell, b.low(), b.Locale.ArgumentSeparator, cell, b.high())
}

// Contains mirrors InRangeFormula for a known value.
func (b FeeBand) Contains(v decimal.Decimal) bool {
	return v.GreaterThanOrEqual(b.Low) && v.LessThanOrEqual(b.High)
}

func (b FeeBand) low() string  { return b.Locale.FormatDecimal(b.Low, 2) }
func (b FeeBand) high() string { return b.Locale.FormatDecimal(b.High, 2) }
