package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"scrapbot/internal/bot"
	"scrapbot/internal/catalog"
	"scrapbot/internal/config"
	"scrapbot/internal/server"
	"scrapbot/internal/session"
	"scrapbot/internal/storage"
	"scrapbot/internal/telegram"
	"scrapbot/pkg/logger"
	"scrapbot/pkg/sheets"
)

// ENTRY POINT

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cat, err := catalog.Load(cfg.CatalogPath, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to load price list", zap.Error(err))
	}

	store := session.NewRedisStore(
		cfg.RedisAddr,
		cfg.RedisPassword,
		cfg.RedisDB,
		cfg.SessionTTL,
		zapLogger,
	)
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	var sink bot.BookingSink = sheets.NewClient(
		cfg.SheetsURL,
		cfg.SheetsToken,
		cfg.SheetsTimeout,
		zapLogger,
	)

	var ledger *storage.PostgresStorage
	if cfg.LedgerEnabled() {
		ledger, err = storage.NewPostgresStorage(ctx, cfg, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to init PostgreSQL storage", zap.Error(err))
		}
		defer ledger.Close()

		if err := ledger.RunMigrations(ctx, zapLogger); err != nil {
			zapLogger.Fatal("Failed to run migrations", zap.Error(err))
		}

		sink = storage.NewRecordingSink(sink, ledger, zapLogger)
	}

	engine := bot.NewEngine(cat, bot.DefaultAgents(), sink, zapLogger)

	if cfg.TelegramToken != "" {
		tgBot, err := telegram.New(cfg.TelegramToken, engine, store, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to create Telegram bot", zap.Error(err))
		}
		go func() {
			if err := tgBot.Run(ctx); err != nil {
				zapLogger.Error("Telegram bot stopped with error", zap.Error(err))
			}
		}()
	}

	srv := server.New(server.Config{
		Addr:       cfg.HTTPAddr,
		Env:        cfg.Env,
		IndexPath:  "web/index.html",
		RateLimit:  cfg.RateLimit,
		RateWindow: cfg.RateWindow,
	}, engine, store, ledger, store, zapLogger)

	if err := srv.Run(ctx); err != nil {
		zapLogger.Fatal("Server stopped with error", zap.Error(err))
	}

	zapLogger.Info("Shutdown complete")
}
