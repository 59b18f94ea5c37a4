package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"chefbook/internal/app"
	"chefbook/internal/config"
	"chefbook/internal/logging"
	"chefbook/internal/telegram"
)

func main() {
	configPath := flag.String("config", "chefbook.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Telegram.BotToken == "" || cfg.Telegram.AllowedUserID == 0 {
		logger.Fatal("telegram.bot_token and telegram.allowed_user_id are required")
	}

	application, err := app.NewApp(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize app", zap.Error(err))
	}
	defer application.Close()

	bot, err := telegram.NewBot(cfg.Telegram.BotToken, cfg.Telegram.AllowedUserID, application, logger)
	if err != nil {
		logger.Fatal("failed to initialize telegram bot", zap.Error(err))
	}
	defer bot.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("telegram bot polling for updates", zap.Int64("allowed_user_id", cfg.Telegram.AllowedUserID))
	if err := bot.Run(ctx); err != nil {
		logger.Error("bot stopped", zap.Error(err))
	}
	logger.Info("telegram bot exiting")
}
