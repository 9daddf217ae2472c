package production

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/packline/internal/domain/models"
)

// Ledger records production batches and aggregates them per date key.
// It is not safe for concurrent use; callers serialize access.
type Ledger struct {
	batches []models.ProductionBatch
	totals  map[string]decimal.Decimal
	logger  *zap.Logger
	now     func() time.Time
}

// NewLedger returns an empty ledger.
func NewLedger(logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		totals: make(map[string]decimal.Decimal),
		logger: logger,
		now:    time.Now,
	}
}

// Record appends a batch under its date key and returns the stored copy.
// Batches sharing a date and product are kept apart; only DailyTotals combines them.
func (l *Ledger) Record(batch models.ProductionBatch) (models.ProductionBatch, error) {
	if batch.QuantityKg.IsNegative() {
		return models.ProductionBatch{}, models.NewValidationError("quantity_kg", "must not be negative")
	}
	if err := models.ValidateDateKey("date", batch.Date); err != nil {
		return models.ProductionBatch{}, err
	}

	batch.ID = uuid.NewString()
	batch.RecordedAt = l.now().UTC()
	batch.Product.Ingredients = append([]string(nil), batch.Product.Ingredients...)

	l.batches = append(l.batches, batch)
	l.totals[batch.Date] = l.totals[batch.Date].Add(batch.QuantityKg)

	l.logger.Debug("batch recorded",
		zap.String("batch_id", batch.ID),
		zap.String("date", batch.Date),
		zap.String("product", batch.Product.Name),
		zap.String("quantity_kg", batch.QuantityKg.String()))

	return batch, nil
}

// DailyTotals returns the kilograms produced per date key. The map is a copy
// and its iteration order carries no meaning.
func (l *Ledger) DailyTotals() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(l.totals))
	for date, total := range l.totals {
		out[date] = total
	}
	return out
}

// Batches returns every recorded batch ordered by date key, then by insertion.
func (l *Ledger) Batches() []models.ProductionBatch {
	out := make([]models.ProductionBatch, len(l.batches))
	copy(out, l.batches)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}
