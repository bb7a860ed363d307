package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	tgfbot "github.com/gofile-uploader/telegram-gofile-bot/internal/bot"
	tgfconfig "github.com/gofile-uploader/telegram-gofile-bot/internal/config"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/database"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/downloader"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/downloader/factory"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/handlers"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/janitor"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/logutils"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/transfer"
	"github.com/gofile-uploader/telegram-gofile-bot/internal/uploader"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err == nil {
		logutils.Log.Info("Loaded configuration from .env")
	}

	config, err := tgfconfig.NewConfig()
	if err != nil {
		logutils.Log.WithError(err).Fatal("Failed to initialize configuration")
	}

	logutils.InitLogger(config.LogLevel)
	logutils.Log.WithFields(map[string]any{
		"version":    Version,
		"build_time": BuildTime,
	}).Info("Starting telegram-gofile-bot")

	if err := config.EnsureDirs(); err != nil {
		logutils.Log.WithError(err).Fatal("Failed to create working directories")
	}

	db, err := database.NewDatabase(config)
	if err != nil {
		logutils.Log.WithError(err).Fatal("Failed to initialize database")
	}

	botInstance, err := tgfbot.InitBot(config)
	if err != nil {
		logutils.Log.WithError(err).Fatal("Failed to initialize bot")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleaner := janitor.New(config.EphemeralDirs(), config.CleanupSettings.Retention)
	go cleaner.Run(ctx, config.CleanupSettings.SweepInterval)

	registry := transfer.NewRegistry()
	orchestrator := transfer.NewOrchestrator(
		config,
		registry,
		db,
		uploader.New(config),
		cleaner,
		func(req *transfer.Request) downloader.Downloader {
			if req.Telegram != nil {
				return factory.ForTelegramFile(config, botInstance, req.Telegram.FileID, req.Telegram.DeclaredName)
			}
			return factory.ForURL(config, req.Remote.URL, req.Remote.FormatHint, req.Remote.ExtractAudio)
		},
	)

	handler := handlers.NewHandler(config, botInstance, db, orchestrator)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := botInstance.Api.GetUpdatesChan(updateConfig)

	logutils.Log.Info("Listening for updates")

	for {
		select {
		case <-ctx.Done():
			logutils.Log.Info("Shutting down: cancelling active operations")
			registry.CancelAll()
			botInstance.Api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go handler.HandleUpdate(ctx, update)
		}
	}
}
