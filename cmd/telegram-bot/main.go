package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ottmanager/subscription-tracker/internal/config"
	"github.com/ottmanager/subscription-tracker/internal/telegram"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("starting telegram-bot", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bot, err := telegram.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize telegram bot", slog.Any("err", err))
		os.Exit(1)
	}

	if err := bot.Run(ctx); err != nil {
		logger.Error("telegram bot stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("telegram-bot stopped gracefully")
}
