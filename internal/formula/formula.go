// Package formula holds the fixed spreadsheet formula templates written into
// generated tabs. Templates are never evaluated here: they are expanded for
// a row number and written verbatim for the spreadsheet engine.
package formula

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RowPlaceholder marks where the 1-based sheet row number goes.
const RowPlaceholder = "@@"

var (
	// ErrUnknownVariant is returned for a template set name that is not registered.
	ErrUnknownVariant = errors.New("unknown template set")
	// ErrUnboundVariable is returned when a set is bound without all its variables.
	ErrUnboundVariable = errors.New("unbound template variable")
)

// Variant names a template set.
type Variant string

// Provider tab variants, oldest first, plus the fixed builder sets.
const (
	VariantBasic    Variant = "basic"
	VariantFallback Variant = "fallback"
	VariantPOS      Variant = "pos"
	VariantLedger   Variant = "ledger"
	VariantMatrix   Variant = "matrix"
)

// DefaultProviderVariant is used for provider tabs unless configured otherwise.
const DefaultProviderVariant = VariantPOS

// Column is one derived column: its header label and formula template.
type Column struct {
	Name     string
	Template string
}

// Set is a closed, named configuration of formula columns.
type Set struct {
	Variant Variant
	Columns []Column
	// FirstColumn is the sheet column letter of the first derived column.
	FirstColumn string
	// FeeColumn is the derived column compared against the provider fee, if any.
	FeeColumn string
	// GroupColumn is the zero-based data column used to partition rows; -1 if unused.
	GroupColumn int
	// SeedHeader and Seed form the A1:A2 block whose spill sizes the rest.
	SeedHeader string
	Seed       string
	// Vars are the @NAME@ tokens that must be bound before expansion.
	Vars   []string
	Locale Locale
}

// Names returns the derived column labels in order.
func (s Set) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// FirstColumnIndex returns the zero-based index of FirstColumn.
func (s Set) FirstColumnIndex() int {
	idx := 0
	for _, ch := range s.FirstColumn {
		idx = idx*26 + int(ch-'A'+1)
	}
	return idx - 1
}

// Expand instantiates every template for the given 1-based row. The result
// depends only on the set and the row.
func (s Set) Expand(row int) []string {
	r := strconv.Itoa(row)
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = s.Locale.Translate(strings.ReplaceAll(c.Template, RowPlaceholder, r))
	}
	return out
}

// SeedFormula returns the seed formula in the set's locale.
func (s Set) SeedFormula() string {
	return s.Locale.Translate(s.Seed)
}

// Bind substitutes the set's @NAME@ variables. Values are embedded inside
// formula string literals, so double quotes are escaped.
func (s Set) Bind(vars map[string]string) (Set, error) {
	replacements := make([]string, 0, 2*len(s.Vars))
	for _, name := range s.Vars {
		v, ok := vars[name]
		if !ok {
			return Set{}, fmt.Errorf("%s: %w %q", s.Variant, ErrUnboundVariable, name)
		}
		replacements = append(replacements, "@"+name+"@", strings.ReplaceAll(v, `"`, `""`))
	}
	r := strings.NewReplacer(replacements...)

	bound := s
	bound.Vars = nil
	bound.Seed = r.Replace(s.Seed)
	bound.Columns = make([]Column, len(s.Columns))
	for i, c := range s.Columns {
		bound.Columns[i] = Column{Name: c.Name, Template: r.Replace(c.Template)}
	}
	return bound, nil
}

// In returns a copy of the set that renders for the given locale.
func (s Set) In(locale Locale) Set {
	s.Locale = locale
	return s
}

// Lookup returns a fresh copy of the named set.
func Lookup(v Variant) (Set, error) {
	build, ok := registry[v]
	if !ok {
		return Set{}, fmt.Errorf("%w %q", ErrUnknownVariant, v)
	}
	set := build()
	set.Variant = v
	set.Locale = LocaleComma
	return set, nil
}

// ProviderVariants lists the sets usable for provider tabs.
func ProviderVariants() []Variant {
	var out []Variant
	for v, build := range registry {
		if build().FeeColumn != "" {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
