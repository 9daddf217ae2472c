package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/packline/internal/domain/models"
)

type stubService struct {
	recorded   []models.ProductionBatch
	baseline   *decimal.Decimal
	outputs    [][2]int64
	report     models.ReconciliationReport
	reportErr  error
	serviceErr error
}

func (s *stubService) RecordBatch(_ context.Context, batch models.ProductionBatch) (models.ProductionBatch, error) {
	if s.serviceErr != nil {
		return models.ProductionBatch{}, s.serviceErr
	}
	batch.ID = "batch-1"
	s.recorded = append(s.recorded, batch)
	return batch, nil
}

func (s *stubService) Batches(context.Context) []models.ProductionBatch { return s.recorded }

func (s *stubService) SetInitialStock(_ context.Context, value decimal.Decimal) error {
	if s.serviceErr != nil {
		return s.serviceErr
	}
	s.baseline = &value
	return nil
}

func (s *stubService) RegisterMachineOutput(_ context.Context, _ string, a, b int64) error {
	if s.serviceErr != nil {
		return s.serviceErr
	}
	s.outputs = append(s.outputs, [2]int64{a, b})
	return nil
}

func (s *stubService) StockAt(context.Context, string) decimal.Decimal {
	return decimal.NewFromInt(17)
}

func (s *stubService) Report(context.Context) (models.ReconciliationReport, error) {
	return s.report, s.reportErr
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newEngine(svc TrackingService) *gin.Engine {
	h := NewTrackingHandler(svc, nil)

	r := gin.New()
	r.POST("/batches", h.RecordBatch)
	r.PUT("/stock/baseline", h.SetBaseline)
	r.GET("/stock/:date", h.StockAt)
	r.POST("/machine-output", h.RegisterMachineOutput)
	r.GET("/report", h.Report)
	r.GET("/report/text", h.ReportText)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRecordBatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantStored int
		wantError  string
		wantField  string
	}{
		{
			name:       "created",
			body:       `{"product":{"name":"Spaghetti","category":"Pasta","price":2.5,"ingredients":["Durum semolina","Water"]},"quantity_kg":1140,"date":"2025-02-26"}`,
			wantStatus: http.StatusCreated,
			wantStored: 1,
		},
		{
			name:       "malformed json",
			body:       `{"product":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid payload",
		},
		{
			name:       "missing product name",
			body:       `{"product":{"category":"Pasta"},"quantity_kg":10,"date":"2025-02-26"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "validation failed: product.name is required",
			wantField:  "product.name",
		},
		{
			name:       "negative price",
			body:       `{"product":{"name":"Penne","price":-1},"quantity_kg":10,"date":"2025-02-26"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "validation failed: product.price must be at least 0",
			wantField:  "product.price",
		},
		{
			name:       "missing quantity",
			body:       `{"product":{"name":"Spaghetti"},"date":"2025-02-26"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "validation failed: quantity_kg is required",
			wantField:  "quantity_kg",
		},
		{
			name:       "null quantity",
			body:       `{"product":{"name":"Spaghetti"},"quantity_kg":null,"date":"2025-02-26"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "validation failed: quantity_kg is required",
			wantField:  "quantity_kg",
		},
		{
			name:       "zero quantity accepted",
			body:       `{"product":{"name":"Spaghetti"},"quantity_kg":0,"date":"2025-02-26"}`,
			wantStatus: http.StatusCreated,
			wantStored: 1,
		},
		{
			name:       "domain validation error",
			body:       `{"product":{"name":"Penne"},"quantity_kg":-10,"date":"2025-02-26"}`,
			serviceErr: models.NewValidationError("quantity_kg", "must not be negative"),
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "validation failed: quantity_kg must not be negative",
			wantField:  "quantity_kg",
		},
		{
			name:       "unexpected error",
			body:       `{"product":{"name":"Penne"},"quantity_kg":10,"date":"2025-02-26"}`,
			serviceErr: errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal error",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &stubService{serviceErr: tt.serviceErr}
			w := do(newEngine(svc), http.MethodPost, "/batches", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Len(t, svc.recorded, tt.wantStored)
			if tt.wantError != "" {
				body := decodeBody(t, w)
				assert.Equal(t, tt.wantError, body["error"])
				if tt.wantField != "" {
					assert.Equal(t, tt.wantField, body["field"])
				}
			}
		})
	}
}

func TestRecordBatchMapsPayload(t *testing.T) {
	t.Parallel()

	svc := &stubService{}
	w := do(newEngine(svc), http.MethodPost, "/batches",
		`{"product":{"name":"Spaghetti","category":"Pasta","price":"2.5","ingredients":["Durum semolina"]},"quantity_kg":"12.75","date":"2025-02-26"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, svc.recorded, 1)
	got := svc.recorded[0]
	assert.Equal(t, "Spaghetti", got.Product.Name)
	assert.Equal(t, "Pasta", got.Product.Category)
	assert.Equal(t, "2.5", got.Product.UnitPrice.String())
	assert.Equal(t, []string{"Durum semolina"}, got.Product.Ingredients)
	assert.Equal(t, "12.75", got.QuantityKg.String())
	assert.Equal(t, "2025-02-26", got.Date)
	assert.Equal(t, "batch-1", decodeBody(t, w)["id"])
}

func TestMissingCounterNamesField(t *testing.T) {
	t.Parallel()

	w := do(newEngine(&stubService{}), http.MethodPost, "/machine-output", `{"date":"2025-02-26","counter_a":1}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "validation failed: counter_b is required", body["error"])
	assert.Equal(t, "counter_b", body["field"])
	assert.NotContains(t, body, "fields")
}

func TestRegisterMachineOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{name: "stored", body: `{"date":"2025-02-26","counter_a":11800,"counter_b":1000}`, wantStatus: http.StatusNoContent},
		{name: "zero counters", body: `{"date":"2025-02-26","counter_a":0,"counter_b":0}`, wantStatus: http.StatusNoContent},
		{name: "non numeric counter", body: `{"date":"2025-02-26","counter_a":"many","counter_b":1}`, wantStatus: http.StatusBadRequest},
		{name: "fractional counter", body: `{"date":"2025-02-26","counter_a":1.5,"counter_b":1}`, wantStatus: http.StatusBadRequest},
		{name: "missing counter", body: `{"date":"2025-02-26","counter_a":1}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "missing date", body: `{"counter_a":1,"counter_b":1}`, wantStatus: http.StatusUnprocessableEntity},
		{
			name:       "negative counter",
			body:       `{"date":"2025-02-26","counter_a":-1,"counter_b":1}`,
			serviceErr: models.NewValidationError("counter_a", "must not be negative"),
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &stubService{serviceErr: tt.serviceErr}
			w := do(newEngine(svc), http.MethodPost, "/machine-output", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Len(t, svc.outputs, 1)
			} else {
				assert.Empty(t, svc.outputs)
			}
		})
	}
}

func TestSetBaseline(t *testing.T) {
	t.Parallel()

	t.Run("stored", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{}
		w := do(newEngine(svc), http.MethodPut, "/stock/baseline", `{"initial_stock_kg":250.5}`)

		assert.Equal(t, http.StatusNoContent, w.Code)
		require.NotNil(t, svc.baseline)
		assert.Equal(t, "250.5", svc.baseline.String())
	})

	t.Run("missing value", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{}
		w := do(newEngine(svc), http.MethodPut, "/stock/baseline", `{}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "initial_stock_kg", body["field"])
		assert.Equal(t, "validation failed: initial_stock_kg is required", body["error"])
		assert.Nil(t, svc.baseline)
	})

	t.Run("rejected by service", func(t *testing.T) {
		t.Parallel()

		svc := &stubService{serviceErr: models.NewValidationError("initial_stock_kg", "must not be negative")}
		w := do(newEngine(svc), http.MethodPut, "/stock/baseline", `{"initial_stock_kg":-1}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestStockAt(t *testing.T) {
	t.Parallel()

	r := newEngine(&stubService{})

	w := do(r, http.MethodGet, "/stock/2025-02-26", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "2025-02-26", body["date"])
	assert.Equal(t, "17", body["balance"])

	w = do(r, http.MethodGet, "/stock/not-a-date", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestReportEndpoints(t *testing.T) {
	t.Parallel()

	report := models.ReconciliationReport{
		Days: []models.WasteEntry{{
			Date:              "2025-02-27",
			TotalProductionKg: decimal.NewFromInt(1480),
			PackagingRequired: decimal.NewFromInt(29600),
			PackagingUsed:     30100,
			WasteKg:           decimal.RequireFromString("2.5"),
		}},
		Alerts: []models.Alert{{Date: "2025-02-27", Kind: models.AlertWaste, Kilograms: decimal.RequireFromString("2.5"), Message: "2025-02-27: 2.50 kg of film/carton wasted"}},
		Stock: models.StockSnapshot{
			Balances: map[string]decimal.Decimal{"2025-02-27": decimal.RequireFromString("1477.5")},
			Current:  decimal.RequireFromString("1477.5"),
		},
	}
	r := newEngine(&stubService{report: report})

	w := do(r, http.MethodGet, "/report", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got models.ReconciliationReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Days, 1)
	assert.True(t, got.Days[0].WasteKg.Equal(decimal.RequireFromString("2.5")))
	assert.EqualValues(t, 30100, got.Days[0].PackagingUsed)
	assert.True(t, got.Stock.Balances["2025-02-27"].Equal(decimal.RequireFromString("1477.5")))

	w = do(r, http.MethodGet, "/report/text", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "2025-02-27: 2.50 kg of film/carton wasted")

	failing := newEngine(&stubService{reportErr: errors.New("boom")})
	assert.Equal(t, http.StatusInternalServerError, do(failing, http.MethodGet, "/report", "").Code)
}
