package sheets

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/packline/internal/domain/models"
)

// header is written once, when the tab is empty.
var header = []interface{}{
	"Date", "Production (kg)", "Packaging required", "Packaging used", "Waste (kg)", "Alert", "Cumulative stock (kg)",
}

// Exporter keeps one spreadsheet row per reconciled date.
type Exporter struct {
	repo   Repository
	tab    string
	logger *zap.Logger
}

// NewExporter wires an exporter writing to the given tab.
func NewExporter(repo Repository, tab string, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tab == "" {
		tab = "Reconciliation"
	}
	return &Exporter{repo: repo, tab: tab, logger: logger}
}

// ExportReport brings the sheet in line with the report: new dates are
// appended, rows whose figures changed since the last export are rewritten in
// place, unchanged rows are left alone. It returns how many date rows were
// written. Rows are: date, production kg, packaging required, packaging used,
// waste kg, alert kind, cumulative stock kg.
func (e *Exporter) ExportReport(ctx context.Context, report models.ReconciliationReport) (int, error) {
	existing, err := e.repo.ReadRows(ctx, e.tab+"!A:G")
	if err != nil {
		return 0, fmt.Errorf("load exported rows: %w", err)
	}

	// First occurrence wins if a date was ever written twice.
	rowOf := make(map[string]int, len(existing))
	for i, row := range existing {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		if _, ok := rowOf[row[0]]; !ok {
			rowOf[row[0]] = i
		}
	}

	alertKinds := lo.SliceToMap(report.Alerts, func(a models.Alert) (string, string) {
		return a.Date, string(a.Kind)
	})

	var (
		updates  []RowUpdate
		appended [][]interface{}
	)
	for _, day := range report.Days {
		values := rowValues(day, alertKinds[day.Date], report.Stock.Balances[day.Date])

		idx, ok := rowOf[day.Date]
		if !ok {
			appended = append(appended, values)
			continue
		}
		if sameRow(existing[idx], values) {
			continue
		}
		updates = append(updates, RowUpdate{
			Range:  fmt.Sprintf("%s!A%d:G%d", e.tab, idx+1, idx+1),
			Values: values,
		})
	}

	if len(updates) == 0 && len(appended) == 0 {
		e.logger.Debug("sheet already up to date", zap.Int("days", len(report.Days)))
		return 0, nil
	}

	if err := e.repo.UpdateRows(ctx, updates); err != nil {
		return 0, fmt.Errorf("refresh %d day(s): %w", len(updates), err)
	}

	newRows := appended
	if len(existing) == 0 && len(appended) > 0 {
		newRows = append([][]interface{}{header}, appended...)
	}
	if err := e.repo.AppendRows(ctx, e.tab+"!A:G", newRows); err != nil {
		return len(updates), fmt.Errorf("export %d day(s): %w", len(appended), err)
	}

	e.logger.Info("report exported to sheet",
		zap.Int("appended", len(appended)),
		zap.Int("updated", len(updates)),
		zap.Int("unchanged", len(report.Days)-len(appended)-len(updates)))
	return len(updates) + len(appended), nil
}

func rowValues(day models.WasteEntry, alertKind string, balance decimal.Decimal) []interface{} {
	return []interface{}{
		day.Date,
		day.TotalProductionKg.String(),
		day.PackagingRequired.String(),
		day.PackagingUsed,
		day.WasteKg.StringFixed(3),
		alertKind,
		balance.StringFixed(3),
	}
}

// sameRow compares a stored row with fresh values. Numeric cells are equal
// when their decimal values are, so "2.5" matches "2.500".
func sameRow(cells []string, values []interface{}) bool {
	for i, v := range values {
		want := fmt.Sprint(v)
		got := ""
		if i < len(cells) {
			got = cells[i]
		}
		if got == want {
			continue
		}
		a, errA := decimal.NewFromString(got)
		b, errB := decimal.NewFromString(want)
		if errA != nil || errB != nil || !a.Equal(b) {
			return false
		}
	}
	return true
}
