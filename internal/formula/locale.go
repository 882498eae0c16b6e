package formula

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Locale describes how the target spreadsheet parses numbers and formulas.
type Locale struct {
	DecimalSeparator  string
	ArgumentSeparator string
}

var (
	// LocaleComma is the es-CL style locale: 9,99 and ';' between arguments.
	LocaleComma = Locale{DecimalSeparator: ",", ArgumentSeparator: ";"}
	// LocalePeriod is the en-US style locale: 9.99 and ',' between arguments.
	LocalePeriod = Locale{DecimalSeparator: ".", ArgumentSeparator: ","}
)

// ParseLocale maps a decimal separator ("," or ".") to its locale.
func ParseLocale(decimalSeparator string) (Locale, error) {
	switch decimalSeparator {
	case ",", "":
		return LocaleComma, nil
	case ".":
		return LocalePeriod, nil
	default:
		return Locale{}, fmt.Errorf("unsupported decimal separator %q", decimalSeparator)
	}
}

// FormatDecimal renders d with a fixed number of places and the locale's separator.
func (l Locale) FormatDecimal(d decimal.Decimal, places int32) string {
	s := d.StringFixed(places)
	if l.DecimalSeparator == "" || l.DecimalSeparator == "." {
		return s
	}
	return strings.Replace(s, ".", l.DecimalSeparator, 1)
}

// Translate rewrites the ';' argument separators of a template outside
// string literals.
func (l Locale) Translate(formula string) string {
	if l.ArgumentSeparator == "" || l.ArgumentSeparator == ";" {
		return formula
	}

	var b strings.Builder
	b.Grow(len(formula))
	inString := false
	for _, ch := range formula {
		switch {
		case ch == '"':
			inString = !inString
			b.WriteRune(ch)
		case ch == ';' && !inString:
			b.WriteString(l.ArgumentSeparator)
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}
