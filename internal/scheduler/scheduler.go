package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/packline/internal/config"
	"github.com/mamadbah2/packline/internal/domain/models"
)

// ReportGenerator produces the reconciliation report.
type ReportGenerator interface {
	Report(ctx context.Context) (models.ReconciliationReport, error)
}

// ReportArchive stores report snapshots.
type ReportArchive interface {
	SaveReport(ctx context.Context, report models.ReconciliationReport) error
}

// SheetExporter appends report rows to a spreadsheet.
type SheetExporter interface {
	ExportReport(ctx context.Context, report models.ReconciliationReport) (int, error)
}

// AlertNotifier pushes report alerts to the operator.
type AlertNotifier interface {
	NotifyAlerts(ctx context.Context, report models.ReconciliationReport) error
}

// Sinks are the optional destinations of the scheduled report. Nil sinks are skipped.
type Sinks struct {
	Archive  ReportArchive
	Sheets   SheetExporter
	Notifier AlertNotifier
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	generator ReportGenerator
	sinks     Sinks
	timeout   time.Duration
	logger    *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
func NewScheduler(cfg config.Config, generator ReportGenerator, sinks Sinks, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// Standard 5-field cron expressions (min, hour, dom, month, dow).
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:      c,
		schedule:  cfg.Reporting.CronSchedule,
		generator: generator,
		sinks:     sinks,
		timeout:   2 * time.Minute,
		logger:    logger,
	}, nil
}

// Start registers the daily reconciliation job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.runScheduled); err != nil {
		return fmt.Errorf("schedule reconciliation report: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// RunOnce generates the report and hands it to every configured sink. A
// failing sink does not prevent the others from running.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	report, err := s.generator.Report(ctx)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	var errs []error

	if s.sinks.Archive != nil {
		if err := s.sinks.Archive.SaveReport(ctx, report); err != nil {
			s.logger.Error("failed to archive report", zap.Error(err))
			errs = append(errs, fmt.Errorf("archive: %w", err))
		}
	}

	if s.sinks.Sheets != nil {
		if rows, err := s.sinks.Sheets.ExportReport(ctx, report); err != nil {
			s.logger.Error("failed to export report", zap.Int("rows_written", rows), zap.Error(err))
			errs = append(errs, fmt.Errorf("sheets: %w", err))
		}
	}

	if s.sinks.Notifier != nil {
		if err := s.sinks.Notifier.NotifyAlerts(ctx, report); err != nil {
			s.logger.Error("failed to notify operator", zap.Error(err))
			errs = append(errs, fmt.Errorf("notify: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (s *Scheduler) runScheduled() {
	s.logger.Info("running scheduled reconciliation")
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("scheduled reconciliation finished with errors", zap.Error(err))
		return
	}
	s.logger.Info("scheduled reconciliation completed")
}
