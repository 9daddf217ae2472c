package stock

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/packline/internal/domain/models"
)

// Account keeps the cumulative kilograms on hand per date key.
// It is not safe for concurrent use; callers serialize access.
type Account struct {
	baseline decimal.Decimal
	balances map[string]decimal.Decimal
	logger   *zap.Logger
}

// NewAccount returns an account with a zero baseline.
func NewAccount(logger *zap.Logger) *Account {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Account{
		balances: make(map[string]decimal.Decimal),
		logger:   logger,
	}
}

// SetInitialBaseline sets the stock assumed present before any tracked date.
// Balances that are already stored keep their value.
func (a *Account) SetInitialBaseline(value decimal.Decimal) error {
	if value.IsNegative() {
		return models.NewValidationError("initial_stock_kg", "must not be negative")
	}
	if len(a.balances) > 0 {
		a.logger.Warn("baseline changed after balances were computed",
			zap.Int("stored_dates", len(a.balances)),
			zap.String("baseline", value.String()))
	}
	a.baseline = value
	return nil
}

// Baseline returns the initial stock level.
func (a *Account) Baseline() decimal.Decimal {
	return a.baseline
}

// Apply adds the net production of a date on top of the previous balance and
// stores the result. The previous balance is the one stored under the greatest
// date key seen so far, whatever order dates are applied in; callers that
// apply dates out of order get balances built on a later date.
func (a *Account) Apply(date string, productionKg, wasteKg decimal.Decimal) (decimal.Decimal, error) {
	if err := models.ValidateDateKey("date", date); err != nil {
		return decimal.Zero, err
	}

	net := decimal.Max(productionKg.Sub(wasteKg), decimal.Zero)

	previous := a.baseline
	if latest, ok := a.latestDate(); ok {
		previous = a.balances[latest]
		if date < latest {
			a.logger.Warn("stock applied out of date order",
				zap.String("date", date),
				zap.String("latest", latest))
		}
	}

	balance := previous.Add(net)
	a.balances[date] = balance
	return balance, nil
}

// BalanceAt returns the stored balance for a date, or the baseline when the
// date was never applied.
func (a *Account) BalanceAt(date string) decimal.Decimal {
	if balance, ok := a.balances[date]; ok {
		return balance
	}
	return a.baseline
}

// Total sums every stored balance. Each balance already carries all earlier
// production, so this counts older dates more than once.
func (a *Account) Total() decimal.Decimal {
	return lo.Reduce(lo.Values(a.balances), func(acc decimal.Decimal, v decimal.Decimal, _ int) decimal.Decimal {
		return acc.Add(v)
	}, decimal.Zero)
}

// Current returns the balance of the latest stored date, or the baseline.
func (a *Account) Current() decimal.Decimal {
	if latest, ok := a.latestDate(); ok {
		return a.balances[latest]
	}
	return a.baseline
}

// Reset drops every stored balance and keeps the baseline.
func (a *Account) Reset() {
	a.balances = make(map[string]decimal.Decimal)
}

// Snapshot copies the account state.
func (a *Account) Snapshot() models.StockSnapshot {
	balances := make(map[string]decimal.Decimal, len(a.balances))
	for date, balance := range a.balances {
		balances[date] = balance
	}
	return models.StockSnapshot{
		InitialStock:  a.baseline,
		Balances:      balances,
		Current:       a.Current(),
		CumulativeSum: a.Total(),
	}
}

func (a *Account) latestDate() (string, bool) {
	if len(a.balances) == 0 {
		return "", false
	}
	return lo.Max(lo.Keys(a.balances)), true
}
