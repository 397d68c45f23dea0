package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/hostel/internal/attendance"
	"github.com/mamadbah2/hostel/internal/config"
	"github.com/mamadbah2/hostel/internal/repository"
	"github.com/mamadbah2/hostel/internal/repository/memory"
	"github.com/mamadbah2/hostel/internal/repository/mongodb"
	"github.com/mamadbah2/hostel/internal/repository/sheets"
	"github.com/mamadbah2/hostel/internal/scheduler"
	"github.com/mamadbah2/hostel/internal/server/handlers"
	"github.com/mamadbah2/hostel/internal/server/router"
	announcesvc "github.com/mamadbah2/hostel/internal/service/announce"
	"github.com/mamadbah2/hostel/internal/service/billing"
	feedbacksvc "github.com/mamadbah2/hostel/internal/service/feedback"
	leavesvc "github.com/mamadbah2/hostel/internal/service/leave"
	paymentsvc "github.com/mamadbah2/hostel/internal/service/payment"
	"github.com/mamadbah2/hostel/internal/service/registration"
	whatsappclient "github.com/mamadbah2/hostel/pkg/clients/whatsapp"
	"github.com/mamadbah2/hostel/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := openStore(cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close storage", zap.Error(err))
		}
	}()

	var wa whatsappclient.Poster
	if cfg.WhatsApp.Enabled() {
		poster, err := whatsappclient.NewGroupPoster(cfg.WhatsApp)
		if err != nil {
			baseLogger.Fatal("failed to init whatsapp client", zap.Error(err))
		}
		wa = poster
		baseLogger.Info("whatsapp announcements enabled")
	} else {
		baseLogger.Warn("whatsapp not configured, notifications are stored only")
	}

	var rosterSource registration.RosterSource
	if cfg.Sheets.CredentialsPath != "" {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		rosterSource = sheetsRepo
	} else {
		baseLogger.Warn("roster sheet not configured, registration is disabled")
	}

	policy := attendance.Policy{PendingCountsAsPresent: cfg.Billing.PendingLeavesAsPresent}
	currency := cfg.Billing.CurrencySymbol

	announcer := announcesvc.NewService(store, wa, cfg.WhatsApp.GroupID, currency, logger.Named(baseLogger, "svc.announce"))
	leaveSvc := leavesvc.NewService(store, policy, logger.Named(baseLogger, "svc.leave"))
	billingEngine := billing.NewEngine(store, store, announcer, policy, cfg.Billing.Workers, logger.Named(baseLogger, "svc.billing"))
	gate := billing.NewGate(store, currency, logger.Named(baseLogger, "svc.billgate"))
	paymentSvc := paymentsvc.NewService(store, store, logger.Named(baseLogger, "svc.payment"))
	feedbackSvc := feedbacksvc.NewService(store, logger.Named(baseLogger, "svc.feedback"))
	registrationSvc := registration.NewService(store, registration.NewRoster(), rosterSource, cfg.Sheets.RosterRange, logger.Named(baseLogger, "svc.registration"))

	if rosterSource != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := registrationSvc.ReloadRoster(ctx); err != nil {
			baseLogger.Error("initial roster load failed", zap.Error(err))
		}
		cancel()
	}

	engine := router.New(router.Handlers{
		Public:   handlers.NewPublicHandler(registrationSvc, announcer, logger.Named(baseLogger, "handlers.public")),
		Student:  handlers.NewStudentHandler(leaveSvc, gate, paymentSvc, logger.Named(baseLogger, "handlers.student")),
		Admin:    handlers.NewAdminHandler(leaveSvc, billingEngine, gate, registrationSvc, announcer, logger.Named(baseLogger, "handlers.admin")),
		Feedback: handlers.NewFeedbackHandler(feedbackSvc, logger.Named(baseLogger, "handlers.feedback")),
	}, store, logger.Named(baseLogger, "router"))

	sched := scheduler.NewScheduler(cfg.Reminder.CronSchedule, store, store, announcer, logger.Named(baseLogger, "scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(cfg *config.Config, base *zap.Logger) (repository.Store, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		base.Warn("using in-memory storage, data is lost on restart")
		return memory.NewStore(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger.Named(base, "repo.mongodb"))
	if err != nil {
		return nil, err
	}
	return repo, nil
}
