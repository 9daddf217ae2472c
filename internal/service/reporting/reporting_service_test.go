package reporting

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/packline/internal/domain/models"
	"github.com/mamadbah2/packline/internal/service/production"
	"github.com/mamadbah2/packline/internal/service/stock"
	"github.com/mamadbah2/packline/internal/service/waste"
)

func kg(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, kg(want).Equal(got), "want %s, got %s", want, got)
}

func newTestService() *Service {
	svc := NewService(production.NewLedger(nil), waste.NewEstimator(nil), stock.NewAccount(nil), nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC) }
	return svc
}

func spaghettiBatch(qty, date string) models.ProductionBatch {
	return models.ProductionBatch{
		Product: models.Product{
			Name:        "Spaghetti",
			Category:    "Pasta",
			UnitPrice:   kg("2.5"),
			Ingredients: []string{"Durum semolina", "Water"},
		},
		QuantityKg: kg(qty),
		Date:       date,
	}
}

func seedFebruary(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()

	for _, in := range []struct {
		qty, date string
		a, b      int64
	}{
		{"1140", "2025-02-26", 11800, 1000},
		{"1480", "2025-02-27", 14800, 15300},
		{"1340", "2025-02-28", 13000, 16000},
	} {
		_, err := svc.RecordBatch(ctx, spaghettiBatch(in.qty, in.date))
		require.NoError(t, err)
		require.NoError(t, svc.RegisterMachineOutput(ctx, in.date, in.a, in.b))
	}
}

func TestReportFebruaryRun(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	seedFebruary(t, svc)

	report, err := svc.Report(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Days, 3)
	assertDecimal(t, "0", report.Days[0].WasteKg)
	assertDecimal(t, "2.5", report.Days[1].WasteKg)
	assertDecimal(t, "11", report.Days[2].WasteKg)

	require.Len(t, report.Alerts, 3)
	assert.Equal(t, models.AlertShortage, report.Alerts[0].Kind)
	assertDecimal(t, "50", report.Alerts[0].Kilograms)
	assert.Equal(t, models.AlertWaste, report.Alerts[1].Kind)
	assert.Equal(t, models.AlertWaste, report.Alerts[2].Kind)

	assertDecimal(t, "0", report.Stock.InitialStock)
	assertDecimal(t, "1140", report.Stock.Balances["2025-02-26"])
	assertDecimal(t, "2617.5", report.Stock.Balances["2025-02-27"])
	assertDecimal(t, "3946.5", report.Stock.Balances["2025-02-28"])
	assertDecimal(t, "3946.5", report.Stock.Current)
	assertDecimal(t, "7704", report.Stock.CumulativeSum)
	assert.Equal(t, time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC), report.GeneratedAt)
}

func TestReportIsRepeatable(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	seedFebruary(t, svc)
	ctx := context.Background()

	first, err := svc.Report(ctx)
	require.NoError(t, err)
	second, err := svc.Report(ctx)
	require.NoError(t, err)

	assert.Equal(t, RenderText(first), RenderText(second))
	assertDecimal(t, "3946.5", second.Stock.Current)
}

func TestReportUsesBaselineOnRecompute(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()
	_, err := svc.RecordBatch(ctx, spaghettiBatch("1140", "2025-02-26"))
	require.NoError(t, err)

	before, err := svc.Report(ctx)
	require.NoError(t, err)
	assertDecimal(t, "1140", before.Stock.Balances["2025-02-26"])

	require.NoError(t, svc.SetInitialStock(ctx, kg("100")))
	assertDecimal(t, "1140", svc.StockAt(ctx, "2025-02-26")) // baseline does not rewrite stored balances
	assertDecimal(t, "100", svc.StockAt(ctx, "2025-01-01"))

	after, err := svc.Report(ctx)
	require.NoError(t, err)
	assertDecimal(t, "1240", after.Stock.Balances["2025-02-26"])
}

func TestReportEmptyLedger(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	require.NoError(t, svc.SetInitialStock(context.Background(), kg("42")))

	report, err := svc.Report(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.Days)
	assert.Empty(t, report.Alerts)
	assert.Empty(t, report.Stock.Balances)
	assertDecimal(t, "42", report.Stock.Current)
	assert.Contains(t, RenderText(report), "No anomaly detected.")
}

func TestServiceWrapsValidationErrors(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	_, err := svc.RecordBatch(ctx, spaghettiBatch("-3", "2025-02-26"))
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.ErrorContains(t, err, "record batch")

	err = svc.RegisterMachineOutput(ctx, "2025-02-26", -1, 0)
	assert.ErrorIs(t, err, models.ErrValidation)

	err = svc.SetInitialStock(ctx, kg("-1"))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestServiceConcurrentUse(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			date := fmt.Sprintf("2025-04-%02d", day%10+1)
			batch := spaghettiBatch("10", date)
			batch.Product.Name = gofakeit.ProductName()
			_, err := svc.RecordBatch(ctx, batch)
			assert.NoError(t, err)
			assert.NoError(t, svc.RegisterMachineOutput(ctx, date, 200, 200))
			_, err = svc.Report(ctx)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	report, err := svc.Report(ctx)
	require.NoError(t, err)
	require.Len(t, report.Days, 10)
	assert.Len(t, svc.Batches(ctx), 20)
	assertDecimal(t, "200", report.Stock.Current)
}

func TestRenderText(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()
	_, err := svc.RecordBatch(ctx, spaghettiBatch("1480", "2025-02-27"))
	require.NoError(t, err)
	require.NoError(t, svc.RegisterMachineOutput(ctx, "2025-02-27", 14800, 15300))

	report, err := svc.Report(ctx)
	require.NoError(t, err)

	text := RenderText(report)
	assert.Contains(t, text, "2025-02-27:\n")
	assert.Contains(t, text, "    - Production: 1480 kg\n")
	assert.Contains(t, text, "    - Packaging required: 29600 units\n")
	assert.Contains(t, text, "    - Packaging used: 30100 units\n")
	assert.Contains(t, text, "    - Packaging wasted: 2.50 kg\n")
	assert.Contains(t, text, "Alerts\n2025-02-27: 2.50 kg of film/carton wasted\n")
	assert.Contains(t, text, "2025-02-27 : 1477.50 kg\n")
	assert.Contains(t, text, "Current stock: 1477.50 kg\n")
}
