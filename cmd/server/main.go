package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/visa-booking-website/internal/api"
	"github.com/dom/visa-booking-website/internal/config"
	"github.com/dom/visa-booking-website/internal/logging"
	"github.com/dom/visa-booking-website/internal/notify"
	"github.com/dom/visa-booking-website/internal/repository"
	"github.com/dom/visa-booking-website/internal/repository/memory"
	"github.com/dom/visa-booking-website/internal/repository/postgres"
	"github.com/dom/visa-booking-website/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	// Initialize repositories
	repos, err := openRepositories(cfg, log)
	if err != nil {
		log.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}

	// Initialize services
	services, err := service.NewServices(repos, cfg, log)
	if err != nil {
		log.Error("failed to build services", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Welcome emails are drained from the outbox in the background
	dispatchDone := make(chan struct{})
	if cfg.Notifier == config.NotifierOutbox {
		dispatcher := notify.NewDispatcher(
			repos.Notification,
			notify.NewLogSender(logging.Component(log, "mailer")),
			logging.Component(log, "dispatcher"),
			5*time.Second,
		)
		go func() {
			defer close(dispatchDone)
			dispatcher.Run(ctx)
		}()
	} else {
		close(dispatchDone)
	}

	// Initialize router
	router := api.NewRouter(services, cfg, log)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server starting", "port", cfg.Port, "environment", cfg.Environment, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	services.Auth.Wait()
	<-dispatchDone

	log.Info("server stopped")
}

func openRepositories(cfg *config.Config, log *slog.Logger) (*repository.Repositories, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Warn("using in-memory store; accounts are lost on restart")
		return memory.NewRepositories(), nil
	}

	db, err := postgres.NewConnection(cfg.DatabaseURL, logging.Component(log, "gorm"))
	if err != nil {
		return nil, err
	}
	return postgres.NewRepositories(db), nil
}
