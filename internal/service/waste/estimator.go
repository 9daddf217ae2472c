package waste

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/packline/internal/domain/models"
)

var (
	// UnitsPerKg is the number of packaging units one kilogram of product needs.
	UnitsPerKg = decimal.NewFromInt(20)
	// KgPerUnit converts one packaging unit into kilograms of packaging material.
	KgPerUnit = decimal.RequireFromString("0.005")
)

// DailyTotalsSource exposes kilograms produced per date key.
type DailyTotalsSource interface {
	DailyTotals() map[string]decimal.Decimal
}

// Estimator infers packaging waste from the gap between expected and recorded
// packaging consumption. It is not safe for concurrent use.
type Estimator struct {
	outputs map[string]models.MachineOutput
	last    models.WasteReport
	logger  *zap.Logger
}

// NewEstimator returns an estimator with no machine output recorded.
func NewEstimator(logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{
		outputs: make(map[string]models.MachineOutput),
		logger:  logger,
	}
}

// RecordMachineOutput stores both machine counters for a date, replacing any
// earlier registration for the same date.
func (e *Estimator) RecordMachineOutput(date string, counterA, counterB int64) error {
	if err := models.ValidateDateKey("date", date); err != nil {
		return err
	}
	if counterA < 0 {
		return models.NewValidationError("counter_a", "must not be negative")
	}
	if counterB < 0 {
		return models.NewValidationError("counter_b", "must not be negative")
	}
	if counterA > math.MaxInt64-counterB {
		return models.NewValidationError("counter_b", "sum of counters overflows")
	}

	if prev, ok := e.outputs[date]; ok {
		e.logger.Info("machine output overwritten",
			zap.String("date", date),
			zap.Int64("previous_units", prev.Units()))
	}
	e.outputs[date] = models.MachineOutput{Date: date, CounterA: counterA, CounterB: counterB}
	return nil
}

// MachineOutput returns the registration for a date, if any.
func (e *Estimator) MachineOutput(date string) (models.MachineOutput, bool) {
	out, ok := e.outputs[date]
	return out, ok
}

// Estimate reconciles every produced date against recorded packaging usage.
// The previous report is discarded; repeated calls over unchanged state
// produce identical reports.
func (e *Estimator) Estimate(totals DailyTotalsSource) models.WasteReport {
	report := Reconcile(totals.DailyTotals(), e.outputs)
	e.last = report

	e.logger.Debug("waste estimated",
		zap.Int("days", len(report.Entries)),
		zap.Int("alerts", len(report.Alerts)))

	return cloneReport(report)
}

// LastReport returns the result of the most recent Estimate call.
func (e *Estimator) LastReport() models.WasteReport {
	return cloneReport(e.last)
}

// Reconcile is the pure computation behind Estimate.
func Reconcile(production map[string]decimal.Decimal, outputs map[string]models.MachineOutput) models.WasteReport {
	dates := lo.Keys(production)
	sort.Strings(dates)

	report := models.WasteReport{
		Entries: make([]models.WasteEntry, 0, len(dates)),
		Alerts:  make([]models.Alert, 0),
	}

	for _, date := range dates {
		productionKg := production[date]
		required := productionKg.Mul(UnitsPerKg)

		var used int64
		if out, ok := outputs[date]; ok {
			used = out.Units()
		}
		usedUnits := decimal.NewFromInt(used)

		wasteKg := decimal.Max(usedUnits.Sub(required).Mul(KgPerUnit), decimal.Zero)

		switch {
		case wasteKg.IsPositive():
			report.Alerts = append(report.Alerts, models.Alert{
				Date:      date,
				Kind:      models.AlertWaste,
				Kilograms: wasteKg,
				Message:   fmt.Sprintf("%s: %s kg of film/carton wasted", date, wasteKg.StringFixed(2)),
			})
		case usedUnits.LessThan(required):
			missingKg := required.Sub(usedUnits).Mul(KgPerUnit)
			report.Alerts = append(report.Alerts, models.Alert{
				Date:      date,
				Kind:      models.AlertShortage,
				Kilograms: missingKg,
				Message:   fmt.Sprintf("%s: %s kg of film missing", date, missingKg.StringFixed(2)),
			})
		}

		report.Entries = append(report.Entries, models.WasteEntry{
			Date:              date,
			TotalProductionKg: productionKg,
			PackagingRequired: required,
			PackagingUsed:     used,
			WasteKg:           wasteKg,
		})
	}

	return report
}

func cloneReport(r models.WasteReport) models.WasteReport {
	out := models.WasteReport{
		Entries: make([]models.WasteEntry, len(r.Entries)),
		Alerts:  make([]models.Alert, len(r.Alerts)),
	}
	copy(out.Entries, r.Entries)
	copy(out.Alerts, r.Alerts)
	return out
}
