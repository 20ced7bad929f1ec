package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rodhackgang/KaboreTech-sub000/internal/bot"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/config"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/database"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/logger"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/repository"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/service"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/storage"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/web"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/whatsapp"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.Init(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}
	if len(cfg.AdminChatIDs) == 0 {
		log.Fatal("ADMIN_CHAT_IDS is required")
	}

	ctx := context.Background()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db)

	blobStore, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal("failed to create blob store", zap.Error(err))
	}

	waClient, err := whatsapp.New(ctx, cfg.WhatsApp, log)
	if err != nil {
		log.Fatal("failed to create whatsapp client", zap.Error(err))
	}
	if err := waClient.Connect(ctx); err != nil {
		// best-effort channel: the watchdog keeps retrying, the rest of
		// the system works without it
		log.Warn("whatsapp connection not established yet", zap.Error(err))
	}
	defer waClient.Disconnect()

	approvalBot, err := bot.New(cfg, userRepo, waClient, log)
	if err != nil {
		log.Fatal("failed to create telegram bot", zap.Error(err))
	}

	userService := service.NewUserService(userRepo, approvalBot, waClient, log)
	videoService := service.NewVideoService(videoRepo, blobStore, log)

	server := web.NewServer(cfg, userService, videoService, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("starting telegram bot")
		if err := approvalBot.Start(); err != nil {
			log.Error("telegram bot stopped", zap.Error(err))
		}
	}()

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("web server stopped", zap.Error(err))
		}
	}()

	log.Info("🚀 KaboreTech backend started")

	<-quit
	log.Info("shutting down...")
}
