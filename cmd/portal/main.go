package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/api"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/config"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/affiliates"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/audit"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/clients"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/consultations"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/events"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/ledger"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/plans"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/domain/staff"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/infra/db"
	httpx "github.com/gcimaster-glitch/demosmartpolice-sub000/internal/infra/http"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/infra/logger"
	"github.com/gcimaster-glitch/demosmartpolice-sub000/internal/infra/notify"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		log.Error("migrations failed", "err", err)
		return
	}
	log.Info("migrations applied")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return
	}
	defer pool.Close()
	log.Info("db connected")

	tg, err := notify.New(cfg.Telegram.Token, cfg.Telegram.StaffChatID, log)
	if err != nil {
		log.Error("telegram init failed", "err", err)
		return
	}
	if tg != nil {
		log.Info("staff notifications enabled")
	}

	clientsRepo := clients.NewRepo(pool)
	plansRepo := plans.NewRepo(pool)
	staffRepo := staff.NewRepo(pool)
	auditRepo := audit.NewRepo(pool)
	recorder := audit.NewRecorder(auditRepo, log)

	ledgerSvc := ledger.NewService(ledger.NewRepo(pool), recorder, tg, log)
	consultSvc := consultations.NewService(consultations.NewRepo(pool), ledgerSvc, staffRepo, recorder, tg, log)
	eventSvc := events.NewService(events.NewRepo(pool), ledgerSvc, recorder, tg, log)
	affiliatesRepo := affiliates.NewRepo(pool)

	handler := api.New(clientsRepo, plansRepo, staffRepo, ledgerSvc, consultSvc, eventSvc, affiliatesRepo, auditRepo, recorder, log)

	srv := httpx.New(cfg.HTTP.Addr, cfg.Metrics.Enabled, handler.Routes())
	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
