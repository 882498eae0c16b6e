package report

import (
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/crosscheck/internal/common"
	"github.com/Veraticus/crosscheck/internal/formula"
	"github.com/Veraticus/crosscheck/internal/warehouse"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fee(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func TestOptions_Validate(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{
			name: "catalog only needs nothing",
			opts: Options{},
		},
		{
			name: "issuer list needs no fee",
			opts: Options{RegenerateIssuers: true},
		},
		{
			name:    "cross without fee",
			opts:    Options{Cross: true},
			wantErr: common.ErrPrecondition,
		},
		{
			name:    "ledgers without fee",
			opts:    Options{Ruts: []string{"1-9/Centro"}},
			wantErr: common.ErrPrecondition,
		},
		{
			name:    "provider tabs without fee",
			opts:    Options{ProviderTabs: true},
			wantErr: common.ErrPrecondition,
		},
		{
			name: "provider tabs with fee",
			opts: Options{ProviderTabs: true, Fee: fee("10")},
		},
		{
			name:    "zero fee",
			opts:    Options{Cross: true, Fee: fee("0")},
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "ledger variant is not a provider variant",
			opts:    Options{ProviderTabs: true, Fee: fee("10"), Variant: formula.VariantLedger},
			wantErr: formula.ErrUnknownVariant,
		},
		{
			name:    "reversed load window",
			opts:    Options{Load: &warehouse.Params{CompanyID: 3, From: from, To: from.AddDate(0, 0, -1)}},
			wantErr: common.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), err.Error())
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestOptions_ValidateDefaults(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	opts := Options{Load: &warehouse.Params{CompanyID: 3, From: from, To: from.AddDate(0, 1, 0)}}
	require.NoError(t, opts.Validate())

	assert.Equal(t, formula.DefaultProviderVariant, opts.Variant)
	assert.Equal(t, formula.LocaleComma, opts.Locale)
	require.True(t, opts.FeeTolerance.Valid)
	assert.True(t, formula.DefaultFeeTolerance.Equal(opts.FeeTolerance.Decimal))
	assert.Len(t, opts.Queries, 5)
}

func TestOptions_ValidateKeepsExplicitTolerance(t *testing.T) {
	tests := []struct {
		name      string
		tolerance decimal.NullDecimal
		want      string
		wantErr   bool
	}{
		{name: "zero is exact", tolerance: decimal.NewNullDecimal(decimal.Zero), want: "0"},
		{name: "explicit", tolerance: decimal.NewNullDecimal(decimal.RequireFromString("0.05")), want: "0.05"},
		{name: "unset", want: "0.01"},
		{name: "negative", tolerance: decimal.NewNullDecimal(decimal.RequireFromString("-0.01")), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Cross: true, Fee: fee("0.7"), FeeTolerance: tt.tolerance}
			err := opts.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(opts.FeeTolerance.Decimal))
		})
	}
}

func TestParsePair(t *testing.T) {
	tests := []struct {
		input    string
		rut      string
		location string
		wantErr  bool
	}{
		{input: "76.123.456-7/Centro", rut: "76.123.456-7", location: "Centro"},
		{input: " 1-9 / Las Condes ", rut: "1-9", location: "Las Condes"},
		{input: "76.123.456-7", wantErr: true},
		{input: "a/b/c", wantErr: true},
		{input: "/Centro", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rut, location, err := ParsePair(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rut, rut)
			assert.Equal(t, tt.location, location)
		})
	}
}

func TestRunSummary(t *testing.T) {
	s := NewRunSummary()
	assert.NotEmpty(t, s.RunID)

	s.succeed(StageCatalog, CatalogTab, 3)
	s.skip(StageProviders, "provA", "before start-from provider")
	s.fail(StageLedger, "bad", errors.New("boom"))

	assert.Equal(t, map[Status]int{StatusSuccess: 1, StatusSkipped: 1, StatusFailed: 1}, s.Counts())
	require.Len(t, s.Failed(), 1)
	assert.Equal(t, "boom", s.Failed()[0].Reason)
	assert.Len(t, s.Stage(StageProviders), 1)
	assert.NotEqual(t, s.RunID, NewRunSummary().RunID)
}
