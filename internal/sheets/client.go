package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Veraticus/crosscheck/internal/common"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client implements API against one spreadsheet.
type Client struct {
	service       *sheets.Service
	logger        *slog.Logger
	spreadsheetID string
	config        Config
}

var _ API = (*Client)(nil)

// NewClient creates a Google Sheets client for config.SpreadsheetID.
func NewClient(ctx context.Context, config Config, logger *slog.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if config.SpreadsheetID == "" {
		return nil, fmt.Errorf("%w: spreadsheet id", common.ErrMissingConfig)
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		service:       service,
		logger:        logger,
		spreadsheetID: config.SpreadsheetID,
		config:        config,
	}, nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.AuthMethod() == AuthServiceAccount {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// ListTabs returns every tab title and id.
func (c *Client) ListTabs(ctx context.Context) ([]Tab, error) {
	var spreadsheet *sheets.Spreadsheet
	err := c.call(ctx, "list tabs", func() error {
		var err error
		spreadsheet, err = c.service.Spreadsheets.Get(c.spreadsheetID).
			Fields("sheets.properties(sheetId,title)").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	tabs := make([]Tab, 0, len(spreadsheet.Sheets))
	for _, s := range spreadsheet.Sheets {
		if s.Properties == nil {
			continue
		}
		tabs = append(tabs, Tab{Title: s.Properties.Title, ID: s.Properties.SheetId})
	}
	return tabs, nil
}

// AddTab creates a tab and returns its id.
func (c *Client) AddTab(ctx context.Context, title string) (int64, error) {
	var resp *sheets.BatchUpdateSpreadsheetResponse
	err := c.call(ctx, "add tab "+title, func() error {
		var err error
		resp, err = c.service.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: title},
				},
			}},
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return 0, err
	}

	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, fmt.Errorf("%w: add tab %s: empty reply", common.ErrRemoteCall, title)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

// FreezeRows freezes the first rows of a tab.
func (c *Client) FreezeRows(ctx context.Context, sheetID, rows int64) error {
	return c.batchUpdate(ctx, "freeze rows", []*sheets.Request{{
		UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId: sheetID,
				GridProperties: &sheets.GridProperties{
					FrozenRowCount: rows,
				},
			},
			Fields: "gridProperties.frozenRowCount",
		},
	}})
}

// Clear removes values (not formatting) from a range.
func (c *Client) Clear(ctx context.Context, a1 string) error {
	return c.call(ctx, "clear "+a1, func() error {
		_, err := c.service.Spreadsheets.Values.Clear(c.spreadsheetID, a1, &sheets.ClearValuesRequest{}).
			Context(ctx).
			Do()
		return err
	})
}

// Write writes values starting at anchor, in batches of Config.BatchSize rows.
func (c *Client) Write(ctx context.Context, anchor Cell, values [][]any, mode InputMode) error {
	for i := 0; i < len(values); i += c.config.BatchSize {
		end := min(i+c.config.BatchSize, len(values))

		rng := anchor.Offset(i).A1()
		batch := &sheets.ValueRange{Values: values[i:end]}
		err := c.call(ctx, "write "+rng, func() error {
			_, err := c.service.Spreadsheets.Values.Update(c.spreadsheetID, rng, batch).
				ValueInputOption(string(mode)).
				Context(ctx).
				Do()
			return err
		})
		if err != nil {
			return err
		}

		c.logger.Debug("wrote batch", "range", rng, "rows", end-i)
	}
	return nil
}

// Read returns the values of a range. Trailing empty rows and cells are
// omitted by the API.
func (c *Client) Read(ctx context.Context, a1 string) ([][]any, error) {
	var resp *sheets.ValueRange
	err := c.call(ctx, "read "+a1, func() error {
		var err error
		resp, err = c.service.Spreadsheets.Values.Get(c.spreadsheetID, a1).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// FormatPercent applies a percent number format to a range.
func (c *Client) FormatPercent(ctx context.Context, rng GridRange, decimals int) error {
	return c.batchUpdate(ctx, "format percent", []*sheets.Request{{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: gridRange(rng),
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					NumberFormat: &sheets.NumberFormat{
						Type:    "PERCENT",
						Pattern: PercentPattern(decimals),
					},
				},
			},
			Fields: "userEnteredFormat.numberFormat",
		},
	}})
}

// AddConditionalRules adds custom-formula background rules in one batch.
func (c *Client) AddConditionalRules(ctx context.Context, rules []ConditionalRule) error {
	requests := make([]*sheets.Request, 0, len(rules))
	for _, r := range rules {
		requests = append(requests, &sheets.Request{
			AddConditionalFormatRule: &sheets.AddConditionalFormatRuleRequest{
				Index: r.Index,
				Rule: &sheets.ConditionalFormatRule{
					Ranges: []*sheets.GridRange{gridRange(r.Range)},
					BooleanRule: &sheets.BooleanRule{
						Condition: &sheets.BooleanCondition{
							Type:   "CUSTOM_FORMULA",
							Values: []*sheets.ConditionValue{{UserEnteredValue: r.Formula}},
						},
						Format: &sheets.CellFormat{
							BackgroundColor: &sheets.Color{
								Red:   r.Background.Red,
								Green: r.Background.Green,
								Blue:  r.Background.Blue,
							},
						},
					},
				},
			},
		})
	}
	return c.batchUpdate(ctx, "add conditional rules", requests)
}

func (c *Client) batchUpdate(ctx context.Context, op string, requests []*sheets.Request) error {
	return c.call(ctx, op, func() error {
		_, err := c.service.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: requests,
		}).Context(ctx).Do()
		return err
	})
}

// call runs one API round-trip with retries on rate limits and server errors.
func (c *Client) call(ctx context.Context, op string, fn func() error) error {
	retryOpts := common.RetryOptions{
		MaxAttempts:  c.config.RetryAttempts,
		InitialDelay: c.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	err := common.WithRetry(ctx, func() error {
		return classify(fn())
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", common.ErrRemoteCall, op, err)
	}
	return nil
}

// classify marks API errors that are not worth retrying.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= http.StatusInternalServerError:
		return err
	default:
		return &common.RetryableError{Err: err, Retryable: false}
	}
}

func gridRange(r GridRange) *sheets.GridRange {
	return &sheets.GridRange{
		SheetId:          r.SheetID,
		StartRowIndex:    r.StartRow,
		EndRowIndex:      r.EndRow,
		StartColumnIndex: r.StartColumn,
		EndColumnIndex:   r.EndColumn,
	}
}
