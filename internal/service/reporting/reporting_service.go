package reporting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/packline/internal/domain/models"
	"github.com/mamadbah2/packline/internal/service/waste"
)

// Ledger records batches and exposes daily production.
type Ledger interface {
	waste.DailyTotalsSource
	Record(batch models.ProductionBatch) (models.ProductionBatch, error)
	Batches() []models.ProductionBatch
}

// Estimator reconciles production against packaging consumption.
type Estimator interface {
	RecordMachineOutput(date string, counterA, counterB int64) error
	Estimate(totals waste.DailyTotalsSource) models.WasteReport
}

// StockAccount keeps the cumulative stock per date.
type StockAccount interface {
	SetInitialBaseline(value decimal.Decimal) error
	Apply(date string, productionKg, wasteKg decimal.Decimal) (decimal.Decimal, error)
	BalanceAt(date string) decimal.Decimal
	Reset()
	Snapshot() models.StockSnapshot
}

// Service is the single entry point into the ledger, the estimator and the
// stock account. One mutex guards all three so a report is always computed
// from one consistent state.
type Service struct {
	mu        sync.Mutex
	ledger    Ledger
	estimator Estimator
	stock     StockAccount
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires the reconciliation pipeline.
func NewService(ledger Ledger, estimator Estimator, stock StockAccount, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledger:    ledger,
		estimator: estimator,
		stock:     stock,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordBatch stores a production batch.
func (s *Service) RecordBatch(_ context.Context, batch models.ProductionBatch) (models.ProductionBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.ledger.Record(batch)
	if err != nil {
		return models.ProductionBatch{}, fmt.Errorf("record batch: %w", err)
	}
	return stored, nil
}

// Batches lists every recorded batch.
func (s *Service) Batches(_ context.Context) []models.ProductionBatch {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.Batches()
}

// SetInitialStock sets the stock baseline used by the next report.
func (s *Service) SetInitialStock(_ context.Context, value decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.stock.SetInitialBaseline(value); err != nil {
		return fmt.Errorf("set initial stock: %w", err)
	}
	return nil
}

// RegisterMachineOutput stores the packaging counters of one date.
func (s *Service) RegisterMachineOutput(_ context.Context, date string, counterA, counterB int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.estimator.RecordMachineOutput(date, counterA, counterB); err != nil {
		return fmt.Errorf("register machine output: %w", err)
	}
	return nil
}

// StockAt returns the stored balance of a date, or the baseline.
func (s *Service) StockAt(_ context.Context, date string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stock.BalanceAt(date)
}

// Report estimates waste for every produced date and rebuilds the stock
// balances from the baseline in ascending date order.
func (s *Service) Report(_ context.Context) (models.ReconciliationReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasteReport := s.estimator.Estimate(s.ledger)

	s.stock.Reset()
	for _, entry := range wasteReport.Entries {
		if _, err := s.stock.Apply(entry.Date, entry.TotalProductionKg, entry.WasteKg); err != nil {
			return models.ReconciliationReport{}, fmt.Errorf("apply stock for %s: %w", entry.Date, err)
		}
	}

	report := models.ReconciliationReport{
		GeneratedAt: s.now().UTC(),
		Days:        wasteReport.Entries,
		Alerts:      wasteReport.Alerts,
		Stock:       s.stock.Snapshot(),
	}

	s.logger.Info("reconciliation report generated",
		zap.Int("days", len(report.Days)),
		zap.Int("alerts", len(report.Alerts)),
		zap.String("current_stock_kg", report.Stock.Current.String()))

	return report, nil
}
