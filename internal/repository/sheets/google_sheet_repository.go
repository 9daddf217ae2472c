package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/packline/internal/config"
)

// RowUpdate replaces the cells of one A1 range.
type RowUpdate struct {
	Range  string
	Values []interface{}
}

// Repository is the spreadsheet surface the report export needs.
type Repository interface {
	// AppendRows appends rows below the last filled row of sheetRange.
	AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
	// UpdateRows overwrites each range in a single batch call.
	UpdateRows(ctx context.Context, updates []RowUpdate) error
	// ReadRows returns the cells of sheetRange as trimmed strings.
	ReadRows(ctx context.Context, sheetRange string) ([][]string, error)
}

var errEmptyRange = errors.New("sheet range must not be empty")

// Values are written RAW so date keys stay text and read back unchanged.
const valueInputOption = "RAW"

// GoogleSheetRepository implements Repository with the Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleSheetRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("init sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendRows sends all rows in a single append call.
func (r *GoogleSheetRepository) AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	if sheetRange == "" {
		return errEmptyRange
	}
	if len(rows) == 0 {
		return nil
	}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	resp, err := call.Do()
	if err != nil {
		return fmt.Errorf("append %d rows into %s: %w", len(rows), sheetRange, err)
	}

	updated := ""
	if resp.Updates != nil {
		updated = resp.Updates.UpdatedRange
	}
	r.logger.Debug("rows appended to sheet", zap.String("range", sheetRange), zap.Int("rows", len(rows)), zap.String("updated_range", updated))
	return nil
}

// UpdateRows rewrites existing rows in place.
func (r *GoogleSheetRepository) UpdateRows(ctx context.Context, updates []RowUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	data := make([]*sheetsapi.ValueRange, 0, len(updates))
	for _, u := range updates {
		if u.Range == "" {
			return errEmptyRange
		}
		data = append(data, &sheetsapi.ValueRange{Range: u.Range, Values: [][]interface{}{u.Values}})
	}

	resp, err := r.service.Spreadsheets.Values.BatchUpdate(r.spreadsheetID, &sheetsapi.BatchUpdateValuesRequest{
		ValueInputOption: valueInputOption,
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %d rows: %w", len(updates), err)
	}

	r.logger.Debug("rows updated in sheet", zap.Int("rows", len(updates)), zap.Int64("cells", resp.TotalUpdatedCells))
	return nil
}

// ReadRows fetches sheetRange. Blank rows yield empty slices so row
// positions are preserved.
func (r *GoogleSheetRepository) ReadRows(ctx context.Context, sheetRange string) ([][]string, error) {
	if sheetRange == "" {
		return nil, errEmptyRange
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetRange).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", sheetRange, err)
	}

	return cellStrings(resp.Values), nil
}

func cellStrings(rows [][]interface{}) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			out[i][j] = strings.TrimSpace(fmt.Sprint(cell))
		}
	}
	return out
}
