package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/packline/internal/config"
	"github.com/mamadbah2/packline/internal/repository/mongodb"
	"github.com/mamadbah2/packline/internal/repository/sheets"
	"github.com/mamadbah2/packline/internal/scheduler"
	"github.com/mamadbah2/packline/internal/server/handlers"
	"github.com/mamadbah2/packline/internal/server/router"
	commandsvc "github.com/mamadbah2/packline/internal/service/commands"
	notificationsvc "github.com/mamadbah2/packline/internal/service/notification"
	"github.com/mamadbah2/packline/internal/service/production"
	reportingsvc "github.com/mamadbah2/packline/internal/service/reporting"
	"github.com/mamadbah2/packline/internal/service/stock"
	"github.com/mamadbah2/packline/internal/service/waste"
	whatsappsvc "github.com/mamadbah2/packline/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/packline/pkg/clients/whatsapp"
	"github.com/mamadbah2/packline/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Logger.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ledger := production.NewLedger(baseLogger.Named("core.ledger"))
	estimator := waste.NewEstimator(baseLogger.Named("core.waste"))
	account := stock.NewAccount(baseLogger.Named("core.stock"))

	initialStock, err := cfg.InitialStock()
	if err != nil {
		baseLogger.Fatal("invalid initial stock", zap.Error(err))
	}
	if err := account.SetInitialBaseline(initialStock); err != nil {
		baseLogger.Fatal("failed to set initial stock", zap.Error(err))
	}

	reportingSvc := reportingsvc.NewService(ledger, estimator, account, baseLogger.Named("svc.reporting"))

	var sinks scheduler.Sinks

	if cfg.MongoDB.Enabled() {
		connectCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		mongoRepo, err := mongodb.NewMongoDBRepository(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		cancel()
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		sinks.Archive = mongoRepo
		baseLogger.Info("report archive enabled", zap.String("db", cfg.MongoDB.DBName))
	} else {
		baseLogger.Warn("mongodb uri missing, report archive disabled")
	}

	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sinks.Sheets = sheets.NewExporter(sheetsRepo, cfg.Sheets.Tab, baseLogger.Named("export.sheets"))
		baseLogger.Info("sheets export enabled")
	} else {
		baseLogger.Warn("sheets credentials missing, spreadsheet export disabled")
	}

	var webhookHandler *handlers.WebhookHandler

	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		notifier := notificationsvc.NewService(whatsClient, cfg.WhatsApp.OperatorID, baseLogger.Named("svc.notification"))
		sinks.Notifier = notifier
		baseLogger.Info("operator notifications enabled")

		if cfg.WhatsApp.WebhookEnabled() {
			loc, err := cfg.Location()
			if err != nil {
				baseLogger.Fatal("invalid timezone", zap.Error(err))
			}
			dispatcher := commandsvc.NewService(reportingSvc, loc, baseLogger.Named("svc.commands"))
			messaging := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, dispatcher, baseLogger.Named("svc.whatsapp"))
			webhookHandler = handlers.NewWebhookHandler(messaging, notifier, baseLogger.Named("handlers.webhook"))
			baseLogger.Info("operator commands enabled")
		} else {
			baseLogger.Warn("meta verify token missing, operator commands disabled")
		}
	} else {
		baseLogger.Warn("whatsapp token missing, operator notifications disabled")
	}

	trackingHandler := handlers.NewTrackingHandler(reportingSvc, baseLogger.Named("handlers.tracking"))
	engine := router.New(trackingHandler, webhookHandler, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(*cfg, reportingSvc, sinks, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
