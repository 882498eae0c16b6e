package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/crosscheck/internal/cli"
	"github.com/Veraticus/crosscheck/internal/common"
	"github.com/Veraticus/crosscheck/internal/config"
	"github.com/Veraticus/crosscheck/internal/formula"
	"github.com/Veraticus/crosscheck/internal/report"
	"github.com/Veraticus/crosscheck/internal/sheets"
	"github.com/Veraticus/crosscheck/internal/warehouse"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// dateLayout is the yyyyMMdd form of --date-from and --date-to.
const dateLayout = "20060102"

type reportFlags struct {
	url        string
	fee        string
	tolerance  string
	cross      bool
	regenerate bool
	ruts       []string
	bhe        bool
	startFrom  string
	variant    string
	companyID  int64
	dateFrom   string
	dateTo     string
}

func reportCmd() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build reconciliation tabs in a spreadsheet",
		Long: `Build the reconciliation tabs of a spreadsheet.

The Citas and DTEs tabs must already hold the staged data, or be loaded
from the warehouse in the same run with --company-id, --date-from and
--date-to. Each requested report is written as formulas:

  Catalogo            always, grouped DTE subtotals
  Cruce               with --cross
  <Location>-<RUT>    one per --ruts-empresa pair
  <provider>          one per provider with --report-bhe

The matrix, ledgers and provider tabs compare against the provider fee,
so -f/--fee is required for them.`,
		Example: `  crosscheck report -u https://docs.google.com/spreadsheets/d/<id>/edit -f 0.7 --cross
  crosscheck report -u <url> -f 0,7 --ruts-empresa 76123456-7/Santiago
  crosscheck report -u <url> -f 0.7 -b --start-from "Juan Pérez" --variant pos
  crosscheck report -u <url> --company-id 42 --date-from 20240101 --date-to 20240201 -r`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ruts, err := collectRuts(cmd, flags.ruts, args)
			if err != nil {
				return err
			}
			flags.ruts = ruts
			return runReport(cmd, flags)
		},
	}

	bindReportFlags(cmd, &flags)
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func bindReportFlags(cmd *cobra.Command, flags *reportFlags) {
	cmd.Flags().StringVarP(&flags.url, "url", "u", "", "spreadsheet URL or id (required)")
	cmd.Flags().StringVarP(&flags.fee, "fee", "f", "", "expected provider fee ratio, e.g. 0.7")
	cmd.Flags().StringVar(&flags.tolerance, "fee-tolerance", "", "accepted deviation around the fee (default from config, 0.01)")
	cmd.Flags().BoolVarP(&flags.cross, "cross", "c", false, "build the booking/document cross matrix")
	cmd.Flags().BoolVarP(&flags.regenerate, "regenerate-list", "r", false, "rebuild the Emisores tab from DTEs")
	cmd.Flags().StringArrayVar(&flags.ruts, "ruts-empresa", nil, "RUT/Location pair, one ledger tab each; repeat the flag or list more pairs after it")
	cmd.Flags().BoolVarP(&flags.bhe, "report-bhe", "b", false, "build one tab per provider")
	cmd.Flags().StringVarP(&flags.startFrom, "start-from", "s", "", "resume provider tabs from this provider")
	cmd.Flags().StringVar(&flags.variant, "variant", "", "provider tab formula set (basic, fallback, pos)")
	cmd.Flags().Int64Var(&flags.companyID, "company-id", 0, "load staging tabs from the warehouse for this company")
	cmd.Flags().StringVar(&flags.dateFrom, "date-from", "", "warehouse window start, yyyyMMdd (inclusive)")
	cmd.Flags().StringVar(&flags.dateTo, "date-to", "", "warehouse window end, yyyyMMdd (exclusive)")
}

// collectRuts takes positional arguments as further RUT/Location pairs, so
// `--ruts-empresa a b c` lists three. Values are never split on commas.
func collectRuts(cmd *cobra.Command, ruts, args []string) ([]string, error) {
	if len(args) == 0 {
		return ruts, nil
	}
	if !cmd.Flags().Changed("ruts-empresa") {
		return nil, fmt.Errorf("%w: unexpected arguments %q", common.ErrInvalidConfig, args)
	}
	return append(ruts, args...), nil
}

func runReport(cmd *cobra.Command, flags reportFlags) error {
	settings, err := config.LoadReportSettings()
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	opts, err := buildOptions(flags, settings)
	if err != nil {
		return err
	}
	// Fail on bad options before any credentials or network are touched.
	if err := opts.Validate(); err != nil {
		return err
	}

	spreadsheetID, err := sheets.ParseSpreadsheetID(flags.url)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := handler.HandleInterrupts(cmd.Context())
	logger := slog.Default().With("spreadsheet", spreadsheetID)

	sheetsConfig, err := config.LoadSheetsConfig()
	if err != nil {
		return common.NewUserError(
			"Google Sheets credentials are not configured; run `crosscheck auth sheets` or set sheets.service_account_path",
			fmt.Errorf("%w: %w", common.ErrMissingConfig, err))
	}
	sheetsConfig.SpreadsheetID = spreadsheetID

	client, err := sheets.NewClient(ctx, *sheetsConfig, logger)
	if err != nil {
		return err
	}

	runnerOpts := []report.Option{report.WithProgress(os.Stderr)}
	if opts.Load != nil {
		loader, closeFn, err := openLoader(ctx, client, &opts, logger)
		if err != nil {
			return err
		}
		defer closeFn()
		runnerOpts = append(runnerOpts, report.WithLoader(loader))
	}

	runner := report.NewRunner(client, logger, runnerOpts...)
	summary, runErr := runner.Run(ctx, opts)
	if summary != nil {
		fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSummary(summary))
	}

	if handler.WasInterrupted() {
		return fmt.Errorf("report interrupted")
	}
	if runErr != nil {
		return runErr
	}
	if failed := summary.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d tab(s) failed", len(failed))
	}
	return nil
}

// openLoader connects the databases the staging queries need.
func openLoader(ctx context.Context, api sheets.API, opts *report.Options, logger *slog.Logger) (*warehouse.Loader, func(), error) {
	whConfig, err := config.LoadWarehouseConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	queries, err := warehouse.WithOverrides(warehouse.Queries(), whConfig.QueryFiles)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	if err := whConfig.Validate(queries); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrMissingConfig, err)
	}
	opts.Queries = queries

	queriers, err := warehouse.OpenAll(ctx, whConfig, queries)
	if err != nil {
		return nil, nil, err
	}

	loader := warehouse.NewLoader(api, sheets.NewTabManager(api, logger), queriers, logger)
	return loader, func() { warehouse.CloseAll(queriers) }, nil
}

// buildOptions maps flags and file settings onto report options. Flags win.
func buildOptions(flags reportFlags, settings config.ReportSettings) (report.Options, error) {
	opts := report.Options{
		FeeTolerance:      decimal.NewNullDecimal(settings.FeeTolerance),
		Variant:           settings.Variant,
		Locale:            settings.Locale,
		Ruts:              flags.ruts,
		StartFrom:         strings.TrimSpace(flags.startFrom),
		Cross:             flags.cross,
		ProviderTabs:      flags.bhe,
		RegenerateIssuers: flags.regenerate,
	}

	if flags.fee != "" {
		fee, err := parseDecimal(flags.fee)
		if err != nil {
			return opts, fmt.Errorf("%w: invalid fee %q", common.ErrInvalidConfig, flags.fee)
		}
		opts.Fee = decimal.NewNullDecimal(fee)
	}
	if flags.tolerance != "" {
		tol, err := parseDecimal(flags.tolerance)
		if err != nil {
			return opts, fmt.Errorf("%w: invalid fee tolerance %q", common.ErrInvalidConfig, flags.tolerance)
		}
		opts.FeeTolerance = decimal.NewNullDecimal(tol)
	}
	if flags.variant != "" {
		opts.Variant = formula.Variant(strings.ToLower(flags.variant))
	}

	load, err := loadParams(flags)
	if err != nil {
		return opts, err
	}
	opts.Load = load

	return opts, nil
}

// loadParams returns nil when no warehouse load was asked for.
func loadParams(flags reportFlags) (*warehouse.Params, error) {
	if flags.companyID == 0 && flags.dateFrom == "" && flags.dateTo == "" {
		return nil, nil
	}
	if flags.companyID == 0 || flags.dateFrom == "" || flags.dateTo == "" {
		return nil, fmt.Errorf("%w: --company-id, --date-from and --date-to go together", common.ErrInvalidConfig)
	}

	from, err := time.Parse(dateLayout, flags.dateFrom)
	if err != nil {
		return nil, fmt.Errorf("%w: --date-from %q is not yyyyMMdd", common.ErrInvalidConfig, flags.dateFrom)
	}
	to, err := time.Parse(dateLayout, flags.dateTo)
	if err != nil {
		return nil, fmt.Errorf("%w: --date-to %q is not yyyyMMdd", common.ErrInvalidConfig, flags.dateTo)
	}

	return &warehouse.Params{From: from, To: to, CompanyID: flags.companyID}, nil
}

// parseDecimal accepts either decimal separator.
func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
}
