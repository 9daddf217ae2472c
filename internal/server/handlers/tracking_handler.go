package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/packline/internal/domain/models"
	"github.com/mamadbah2/packline/internal/service/reporting"
)

// TrackingService describes the operations the HTTP layer can perform.
type TrackingService interface {
	RecordBatch(ctx context.Context, batch models.ProductionBatch) (models.ProductionBatch, error)
	Batches(ctx context.Context) []models.ProductionBatch
	SetInitialStock(ctx context.Context, value decimal.Decimal) error
	RegisterMachineOutput(ctx context.Context, date string, counterA, counterB int64) error
	StockAt(ctx context.Context, date string) decimal.Decimal
	Report(ctx context.Context) (models.ReconciliationReport, error)
}

// TrackingHandler adapts HTTP requests to the reconciliation service.
type TrackingHandler struct {
	svc    TrackingService
	logger *zap.Logger
}

// NewTrackingHandler constructs the HTTP handler adapter.
func NewTrackingHandler(svc TrackingService, logger *zap.Logger) *TrackingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackingHandler{svc: svc, logger: logger}
}

// Home answers the root path.
func (h *TrackingHandler) Home(c *gin.Context) {
	c.String(http.StatusOK, "Hello, World!")
}

// RecordBatch stores one production batch.
func (h *TrackingHandler) RecordBatch(c *gin.Context) {
	var req batchRequest
	if !h.bind(c, &req) {
		return
	}

	batch, err := h.svc.RecordBatch(c.Request.Context(), req.toModel())
	if err != nil {
		h.fail(c, "failed recording batch", err)
		return
	}

	c.JSON(http.StatusCreated, batch)
}

// ListBatches returns every recorded batch.
func (h *TrackingHandler) ListBatches(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"batches": h.svc.Batches(c.Request.Context())})
}

// SetBaseline sets the initial stock level.
func (h *TrackingHandler) SetBaseline(c *gin.Context) {
	var req baselineRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.svc.SetInitialStock(c.Request.Context(), *req.InitialStockKg); err != nil {
		h.fail(c, "failed setting baseline", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterMachineOutput stores the packaging counters of one date.
func (h *TrackingHandler) RegisterMachineOutput(c *gin.Context) {
	var req machineOutputRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.svc.RegisterMachineOutput(c.Request.Context(), req.Date, *req.CounterA, *req.CounterB); err != nil {
		h.fail(c, "failed registering machine output", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// StockAt returns the cumulative stock of one date.
func (h *TrackingHandler) StockAt(c *gin.Context) {
	date := c.Param("date")
	if err := models.ValidateDateKey("date", date); err != nil {
		h.fail(c, "invalid stock date", err)
		return
	}

	c.JSON(http.StatusOK, stockResponse{Date: date, Balance: h.svc.StockAt(c.Request.Context(), date)})
}

// Report returns the reconciliation report as JSON.
func (h *TrackingHandler) Report(c *gin.Context) {
	report, err := h.svc.Report(c.Request.Context())
	if err != nil {
		h.fail(c, "failed generating report", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ReportText returns the reconciliation report as plain text.
func (h *TrackingHandler) ReportText(c *gin.Context) {
	report, err := h.svc.Report(c.Request.Context())
	if err != nil {
		h.fail(c, "failed generating report", err)
		return
	}

	c.String(http.StatusOK, reporting.RenderText(report))
}

func (h *TrackingHandler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Warn("invalid request payload", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return false
	}

	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			h.logger.Error("request validation crashed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return false
		}
		h.fail(c, "invalid request payload", fieldError(fieldErrs))
		return false
	}

	return true
}

func (h *TrackingHandler) fail(c *gin.Context, msg string, err error) {
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		h.logger.Warn(msg, zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": vErr.Error(), "field": vErr.Field})
		return
	}

	h.logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
