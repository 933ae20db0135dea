package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"cozycup/internal/config"
	"cozycup/internal/infrastructure/cache"
	"cozycup/internal/infrastructure/logger"
	"cozycup/internal/infrastructure/mail"
	"cozycup/internal/infrastructure/mysql"
	"cozycup/internal/menu"
	"cozycup/internal/middleware"
	"cozycup/internal/notification"
	"cozycup/internal/order"
	"cozycup/internal/payment"
	"cozycup/internal/payment/gateway"
	"cozycup/internal/review"
	"cozycup/internal/server"
)

func main() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "internal/config/config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("validating config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	tx := mysql.NewTransactor(db, cfg.Database, zapLogger)

	menuCache := cache.NewNoop("cozycup")
	if cfg.Redis.Addr != "" {
		client := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer client.Close()
		if err := client.Ping(context.Background()).Err(); err != nil {
			zapLogger.Warn("redis unavailable, menu cache disabled", zap.Error(err))
		} else {
			menuCache = cache.NewRedisCache(client, "cozycup")
			zapLogger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		}
	}

	mailer := mail.New(cfg.Mail)
	midtrans := gateway.NewMidtrans(cfg.Midtrans, zapLogger)

	menuModule := menu.NewModule(db, menuCache, cfg.Redis.MenuTTL, zapLogger)
	paymentModule := payment.NewModule(db, tx, midtrans, cfg.Midtrans, zapLogger)
	orderCtrl := order.NewModule(db, tx, cfg, menuModule.Service, paymentModule.Tokens, mailer, zapLogger)
	reviewCtrl := review.NewModule(db, menuModule.Service, zapLogger)
	notificationCtrl := notification.NewModule(db, zapLogger)

	router := server.NewRouter(server.Handlers{
		Menu:          menuModule.Controller,
		Orders:        orderCtrl,
		Payments:      paymentModule,
		Reviews:       reviewCtrl,
		Notifications: notificationCtrl,
	},
		middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		zapLogger,
	)

	srv := server.New(cfg.Server, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
