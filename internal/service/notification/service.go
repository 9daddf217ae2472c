package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/packline/internal/domain/models"
	"github.com/mamadbah2/packline/internal/service/reporting"
	client "github.com/mamadbah2/packline/pkg/clients/whatsapp"
)

// Service pushes reconciliation alerts to the site operator over WhatsApp.
type Service struct {
	client     client.Client
	operatorID string
	logger     *zap.Logger
}

// NewService wires a notifier for one operator.
func NewService(c client.Client, operatorID string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: c, operatorID: operatorID, logger: logger}
}

// NotifyAlerts sends the report alerts to the operator. Reports without
// alerts send nothing.
func (s *Service) NotifyAlerts(ctx context.Context, report models.ReconciliationReport) error {
	if len(report.Alerts) == 0 {
		s.logger.Debug("no alerts to notify")
		return nil
	}

	return s.SendOutbound(ctx, models.OutboundMessageRequest{
		To:      s.operatorID,
		Message: alertMessage(report),
	})
}

// SendOutbound sends a free-form message.
func (s *Service) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         req.To,
		Body:       req.Message,
		PreviewURL: req.PreviewURL,
	})
	if err != nil {
		return fmt.Errorf("send to %s: %w", req.To, err)
	}

	s.logger.Info("operator notified", zap.String("to", req.To))
	return nil
}

func alertMessage(report models.ReconciliationReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Packaging reconciliation: %d alert(s)\n", len(report.Alerts))
	b.WriteString(reporting.RenderAlerts(report.Alerts))
	fmt.Fprintf(&b, "Current stock: %s kg", report.Stock.Current.StringFixed(2))
	return b.String()
}
