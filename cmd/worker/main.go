package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadzap_backend/internal/leads"
	"leadzap_backend/internal/notification"
	"leadzap_backend/internal/qualification"
	"leadzap_backend/internal/scheduler"
	"leadzap_backend/internal/tenants"
	"leadzap_backend/internal/whatsapp"
	"leadzap_backend/platform/config"
	"leadzap_backend/platform/db"
	"leadzap_backend/platform/events"
	"leadzap_backend/platform/logger"
	"leadzap_backend/platform/validator"
)

// The worker processes delayed qualification tasks: re-engagement nudges and
// the nightly abandoned session sweep. The API enqueues, this binary handles.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poolCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	pool, err := db.NewPool(poolCtx, cfg)
	cancel()
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	sender, err := whatsapp.New(cfg, log)
	if err != nil {
		log.Error("failed to initialize whatsapp sender", "error", err)
		panic("failed to initialize whatsapp sender: " + err.Error())
	}

	tenantsModule := tenants.NewModule(pool, val)
	leadsModule := leads.NewModule(pool, eventBus, val)

	// Handlers may complete or abandon sessions, so the worker carries the
	// same event subscribers as the API.
	var emailSender notification.Sender
	if smtp := notification.NewSMTPSender(cfg); smtp != nil {
		emailSender = smtp
	}
	notification.NewNotifier(emailSender, tenantsModule.Service(), log).Register(eventBus)

	qualificationModule := qualification.NewModule(pool, eventBus, log,
		leadsModule.Service(), tenantsModule.Service(), sender, nil)

	worker, err := scheduler.NewWorker(cfg, qualificationModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	log.Info("worker listening for tasks", "queue", cfg.AsynqQueueName)
	worker.Run(ctx)
	log.Info("worker stopped")
}
