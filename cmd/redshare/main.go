package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"redshare/internal/config"
	"redshare/internal/di"
	"redshare/internal/seed"
)

func main() {
	cfg := config.LoadConfig()

	app, cleanup, err := di.InitializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer cleanup()

	if err := run(app); err != nil {
		app.Logger.Error("server stopped with error", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
}

func run(app *di.Application) error {
	cfg, logger := app.Config, app.Logger

	if cfg.Seed.Demo {
		if _, err := app.Seeder.Run(context.Background(), seed.DefaultOptions()); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           app.Router,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeout) * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		if err := app.Health.Serve(lis); err != nil {
			errCh <- err
		}
	}()
	go func() {
		logger.Info("HTTP server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Server.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	app.Health.SetServing(true)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case runErr = <-errCh:
	}

	app.Health.SetServing(false)
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}
	app.Health.GracefulStop()

	logger.Info("server gracefully stopped")
	return runErr
}
