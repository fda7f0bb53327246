package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/config"
	v1 "github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/handler/v1"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/mailer"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/qr"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/repository"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/service"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/pkg/auth"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/pkg/database"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/pkg/logger"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/pkg/metrics"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/pkg/tracer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	collector := metrics.NewCollector("emergency_qr")

	repo := repository.NewPatientRepository(db)
	patients := service.NewPatientService(repo, collector, log)
	builder := qr.NewBuilder(cfg.QR, log)
	dispatcher := mailer.NewDispatcher(cfg.SMTP, cfg.EmailAPI)
	editTokens := auth.NewEditTokenManager(cfg.EditToken)

	if transport := dispatcher.ActiveTransport(); transport != "" {
		log.Info("mail transport configured", zap.String("transport", transport))
	} else {
		log.Warn("no mail transport configured; email delivery disabled")
	}

	h := v1.NewHandler(patients, builder, dispatcher, editTokens, cfg.EditToken.TTL, collector, log)
	router := v1.NewRouter(cfg, h, collector, log)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	if err := tp.Shutdown(ctx); err != nil {
		log.Warn("tracer shutdown failed", zap.Error(err))
	}

	log.Info("server stopped")
	return nil
}
