package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"kalpa/internal/commons"
	"kalpa/internal/config"
	"kalpa/internal/infrastructure/logger"
	"kalpa/internal/infrastructure/mysql"
	"kalpa/internal/order"
	"kalpa/internal/server"
	"kalpa/internal/table"
)

func main() {
	// Local development convenience; ignored when no .env exists.
	_ = godotenv.Load()

	var cfg *config.Config
	var err error
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		cfg, err = commons.LoadConfig(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
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

	orderCtrl := order.NewModule(db, cfg, zapLogger)
	tableCtrl := table.NewModule(db, zapLogger)

	router := server.NewRouter(orderCtrl, tableCtrl, zapLogger)

	srv := server.New(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
