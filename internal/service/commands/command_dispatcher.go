package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/packline/internal/domain/models"
	"github.com/mamadbah2/packline/internal/service/reporting"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// Tracker is the part of the reconciliation service commands drive.
type Tracker interface {
	RecordBatch(ctx context.Context, batch models.ProductionBatch) (models.ProductionBatch, error)
	SetInitialStock(ctx context.Context, value decimal.Decimal) error
	RegisterMachineOutput(ctx context.Context, date string, counterA, counterB int64) error
	Report(ctx context.Context) (models.ReconciliationReport, error)
}

// Dispatcher executes parsed commands against the tracker.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	tracker Tracker
	loc     *time.Location
	logger  *zap.Logger
	now     func() time.Time
}

// NewService constructs a command dispatcher. Commands without an explicit
// date use today's date in loc.
func NewService(tracker Tracker, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		tracker: tracker,
		loc:     loc,
		logger:  logger,
		now:     time.Now,
	}
}

// HandleCommand runs the command and returns the reply for the operator.
//
//	/batch [date] <kg> <product name...>
//	/machine [date] <counter a> <counter b>
//	/baseline <kg>
//	/report
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Any("args", cmd.Args))

	switch cmd.Type {
	case models.CommandBatch:
		batch, err := s.buildBatch(cmd)
		if err != nil {
			return "", err
		}
		stored, err := s.tracker.RecordBatch(ctx, batch)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Batch recorded for %s: %s kg of %s.", stored.Date, stored.QuantityKg.String(), stored.Product.Name), nil
	case models.CommandMachine:
		date, args := s.splitDate(cmd.Args)
		if len(args) != 2 {
			return "", ErrInvalidArguments
		}
		counterA, errA := strconv.ParseInt(args[0], 10, 64)
		counterB, errB := strconv.ParseInt(args[1], 10, 64)
		if errA != nil || errB != nil {
			return "", ErrInvalidArguments
		}
		if err := s.tracker.RegisterMachineOutput(ctx, date, counterA, counterB); err != nil {
			return "", err
		}
		return fmt.Sprintf("Machine output saved for %s: %d units.", date, counterA+counterB), nil
	case models.CommandBaseline:
		if len(cmd.Args) != 1 {
			return "", ErrInvalidArguments
		}
		value, err := decimal.NewFromString(cmd.Args[0])
		if err != nil {
			return "", ErrInvalidArguments
		}
		if err := s.tracker.SetInitialStock(ctx, value); err != nil {
			return "", err
		}
		return fmt.Sprintf("Initial stock set to %s kg.", value.String()), nil
	case models.CommandReport:
		report, err := s.tracker.Report(ctx)
		if err != nil {
			return "", err
		}
		return summary(report), nil
	default:
		return "", ErrUnsupportedCommand
	}
}

func (s *Service) buildBatch(cmd models.Command) (models.ProductionBatch, error) {
	date, args := s.splitDate(cmd.Args)
	if len(args) < 2 {
		return models.ProductionBatch{}, ErrInvalidArguments
	}

	quantity, err := decimal.NewFromString(args[0])
	if err != nil {
		return models.ProductionBatch{}, ErrInvalidArguments
	}

	return models.ProductionBatch{
		Product:    models.Product{Name: strings.Join(args[1:], " ")},
		QuantityKg: quantity,
		Date:       date,
	}, nil
}

// splitDate takes a leading date argument when present, otherwise today.
func (s *Service) splitDate(args []string) (string, []string) {
	if len(args) > 0 && models.ValidateDateKey("date", args[0]) == nil {
		return args[0], args[1:]
	}
	return s.now().In(s.loc).Format(models.DateLayout), args
}

func summary(report models.ReconciliationReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reconciliation over %d day(s).\n", len(report.Days))
	if len(report.Alerts) == 0 {
		b.WriteString("No anomaly detected.\n")
	} else {
		b.WriteString(reporting.RenderAlerts(report.Alerts))
	}
	fmt.Fprintf(&b, "Current stock: %s kg", report.Stock.Current.StringFixed(2))
	return b.String()
}
