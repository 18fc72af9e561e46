package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmdirect/internal/app"
	"farmdirect/internal/auth"
	"farmdirect/internal/config"
	"farmdirect/internal/handlers"
	"farmdirect/internal/logger"
	"farmdirect/internal/orders"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(cfg.IsDevelopment())
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()
	zap.ReplaceGlobals(zlog)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := app.OpenStore(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("storage unavailable", zap.Error(err))
	}
	defer func() {
		if err := closeStore(context.Background()); err != nil {
			zlog.Warn("storage close failed", zap.Error(err))
		}
	}()

	issuer := auth.NewHMAC(cfg.JWTSecret)
	verifier, err := app.Verifier(ctx, cfg, issuer, zlog)
	if err != nil {
		zlog.Fatal("auth setup failed", zap.Error(err))
	}

	r := handlers.NewRouter(handlers.Dependencies{
		Store:          store,
		Orders:         orders.NewService(store, zlog.Named("orders"), cfg.HydrationConcurrency),
		Verifier:       verifier,
		Issuer:         issuer,
		Admin:          auth.AdminCredentials{Email: cfg.AdminEmail, PasswordHash: cfg.AdminPasswordHash},
		Payments:       app.PaymentProcessor(cfg, zlog),
		Currency:       cfg.PaymentCurrency,
		AccessTokenTTL: cfg.AccessTokenTTL,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         zlog,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr), zap.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}
