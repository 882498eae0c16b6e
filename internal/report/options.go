// Package report builds the cross-reference tabs of a reconciliation
// spreadsheet from the staged Citas and DTEs data.
package report

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Veraticus/crosscheck/internal/common"
	"github.com/Veraticus/crosscheck/internal/formula"
	"github.com/Veraticus/crosscheck/internal/warehouse"
	"github.com/shopspring/decimal"
)

// Options selects what a run builds.
type Options struct {
	// Fee is the expected provider fee ratio, e.g. 0.7. Required by the
	// matrix, ledgers and provider tabs.
	Fee          decimal.NullDecimal
	// FeeTolerance defaults to formula.DefaultFeeTolerance when unset; an
	// explicit zero demands an exact fee.
	FeeTolerance decimal.NullDecimal
	// Load, when set, refreshes the staging tabs from the warehouse first.
	Load    *warehouse.Params
	Queries []warehouse.Query
	// Ruts are "RUT/Location" pairs, one ledger tab each.
	Ruts      []string
	StartFrom string
	Variant   formula.Variant
	Locale    formula.Locale
	// Cross builds the reconciliation matrix.
	Cross bool
	// ProviderTabs builds one tab per provider (the BHE report).
	ProviderTabs bool
	// RegenerateIssuers rebuilds the Emisores tab from DTEs.
	RegenerateIssuers bool
}

// needsFee reports whether any requested stage compares against the fee.
func (o Options) needsFee() bool {
	return o.Cross || len(o.Ruts) > 0 || o.ProviderTabs
}

// Validate checks the options before anything touches the spreadsheet.
func (o *Options) Validate() error {
	if o.needsFee() && !o.Fee.Valid {
		return fmt.Errorf("%w: the provider fee (-f/--fee) is required for the cross, company or BHE reports", common.ErrPrecondition)
	}
	if o.Fee.Valid && !o.Fee.Decimal.IsPositive() {
		return fmt.Errorf("%w: fee must be positive, got %s", common.ErrInvalidConfig, o.Fee.Decimal)
	}

	if !o.FeeTolerance.Valid {
		o.FeeTolerance = decimal.NewNullDecimal(formula.DefaultFeeTolerance)
	}
	if o.FeeTolerance.Decimal.IsNegative() {
		return fmt.Errorf("%w: fee tolerance cannot be negative", common.ErrInvalidConfig)
	}

	if o.Variant == "" {
		o.Variant = formula.DefaultProviderVariant
	}
	if o.ProviderTabs && !slices.Contains(formula.ProviderVariants(), o.Variant) {
		return fmt.Errorf("%w: %q is not a provider tab variant", formula.ErrUnknownVariant, o.Variant)
	}

	if o.Locale == (formula.Locale{}) {
		o.Locale = formula.LocaleComma
	}

	if o.Load != nil {
		if err := o.Load.Validate(); err != nil {
			return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
		}
		if o.Queries == nil {
			o.Queries = warehouse.Queries()
		}
	}

	return nil
}

// ParsePair splits a "RUT/Location" argument.
func ParsePair(pair string) (rut, location string, err error) {
	parts := strings.Split(pair, "/")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("%w: %q is not RUT/Location", common.ErrInvalidConfig, pair)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
