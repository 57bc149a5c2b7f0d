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

	"stkrelay/config"
	"stkrelay/internal/logger"
	"stkrelay/internal/router"
	"stkrelay/internal/ws"
	"stkrelay/pkg/mpesa"
)

func main() {
	cfg, dotenv := config.Load()
	if err := logger.Init(cfg.Server.Env); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if dotenv {
		logger.Info("loaded .env")
	} else {
		logger.Info("no .env file, using process environment")
	}
	for _, name := range cfg.MissingCredentials() {
		logger.Warning("payment variable not set", logger.LoggerOptions{Key: "name", Data: name})
	}

	client := mpesa.NewClient(cfg.Mpesa.Credentials(),
		mpesa.WithBaseURL(cfg.Mpesa.BaseURL),
		mpesa.WithHTTPClient(&http.Client{Timeout: cfg.Mpesa.Timeout}),
		mpesa.WithLogger(logger.L().Named("mpesa")),
	)
	hub := ws.NewHub()

	engine := router.Setup(cfg, client, hub)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Info("server listening",
			logger.LoggerOptions{Key: "port", Data: cfg.Server.Port},
			logger.LoggerOptions{Key: "daraja", Data: cfg.Mpesa.BaseURL},
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", logger.LoggerOptions{Key: "error", Data: err.Error()})
		return
	}
	logger.Info("server stopped")
}
