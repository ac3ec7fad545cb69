package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/inderaputra17/JLG-LOGS/internal/config"
	"github.com/inderaputra17/JLG-LOGS/internal/repository/memory"
	"github.com/inderaputra17/JLG-LOGS/internal/repository/mongodb"
	"github.com/inderaputra17/JLG-LOGS/internal/repository/recordstore"
	"github.com/inderaputra17/JLG-LOGS/internal/repository/sheets"
	"github.com/inderaputra17/JLG-LOGS/internal/repository/sqlite"
	"github.com/inderaputra17/JLG-LOGS/internal/scheduler"
	"github.com/inderaputra17/JLG-LOGS/internal/server/handlers"
	"github.com/inderaputra17/JLG-LOGS/internal/server/router"
	alertsvc "github.com/inderaputra17/JLG-LOGS/internal/service/alerts"
	digestsvc "github.com/inderaputra17/JLG-LOGS/internal/service/digest"
	ledgersvc "github.com/inderaputra17/JLG-LOGS/internal/service/ledger"
	whatsappclient "github.com/inderaputra17/JLG-LOGS/pkg/clients/whatsapp"
	"github.com/inderaputra17/JLG-LOGS/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := openStore(context.Background(), cfg.Store)
	if err != nil {
		baseLogger.Fatal("failed to open record store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close record store", zap.Error(err))
		}
	}()
	baseLogger.Info("record store ready", zap.String("driver", cfg.Store.Driver))

	ledgerSvc := ledgersvc.NewService(store, baseLogger.Named("svc.ledger"),
		ledgersvc.WithRetry(cfg.Ledger.MaxRetries, cfg.Ledger.RetryInitialInterval))
	alertSvc := alertsvc.NewService(ledgerSvc, baseLogger.Named("svc.alerts"))

	loc, err := time.LoadLocation(cfg.Alerts.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}

	digestOpts := []digestsvc.Option{digestsvc.WithLocation(loc)}
	if cfg.WhatsApp.Enabled {
		digestOpts = append(digestOpts, digestsvc.WithMessenger(whatsappclient.NewClient(cfg.WhatsApp), cfg.WhatsApp.Recipient))
		baseLogger.Info("whatsapp digest enabled")
	}
	if cfg.Sheets.Enabled {
		exporter, err := sheets.NewAlertExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		digestOpts = append(digestOpts, digestsvc.WithExporter(exporter))
		baseLogger.Info("sheets alert export enabled")
	}
	digestSvc := digestsvc.NewService(alertSvc, baseLogger.Named("svc.digest"), digestOpts...)

	if digestSvc.Enabled() {
		sched := scheduler.NewScheduler(cfg.Alerts.DigestCron, loc, digestSvc, baseLogger.Named("scheduler"))
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	} else {
		baseLogger.Warn("no digest sink configured, alert digest disabled")
	}

	engine := router.New(router.Handlers{
		Stock:  handlers.NewStockHandler(ledgerSvc, baseLogger.Named("handlers.stock")),
		Comms:  handlers.NewCommsHandler(ledgerSvc, baseLogger.Named("handlers.comms")),
		Alerts: handlers.NewAlertsHandler(alertSvc, baseLogger.Named("handlers.alerts")),
	}, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.StoreConfig) (recordstore.Store, error) {
	switch cfg.Driver {
	case config.DriverMongoDB:
		return mongodb.NewMongoDBRepository(ctx, cfg.MongoURI, cfg.MongoDB)
	case config.DriverSQLite:
		return sqlite.NewStore(ctx, cfg.SQLitePath)
	case config.DriverMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
