package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"overdue_followup_bot/internal/app"
	"overdue_followup_bot/internal/app/overduelist"
	"overdue_followup_bot/internal/clock"
	"overdue_followup_bot/internal/domain/download"
	"overdue_followup_bot/internal/infra/config"
	idb "overdue_followup_bot/internal/infra/database"
	"overdue_followup_bot/internal/infra/export"
	"overdue_followup_bot/internal/infra/logger"
	"overdue_followup_bot/internal/infra/scheduler"
	"overdue_followup_bot/internal/infra/telegram"
)

func main() {
	fmt.Println("Overdue Follow-up Bot starting...")

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")

	mainLogger.WithFields(logrus.Fields{
		"environment":       cfg.Environment,
		"admin_id":          cfg.AdminTelegramID,
		"time_zone":         cfg.UserTimeZone,
		"sections_enabled":  cfg.OverdueSectionsEnabled,
		"pdf_export":        cfg.PdfExportEnabled,
		"unknown_net_state": cfg.UnknownNetworkStatusPolicy,
	}).Info("Configuration loaded")

	userClock, err := clock.LoadUserClock(cfg.UserTimeZone)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not resolve user time zone")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	mainLogger.Info("Database connection established successfully.")

	// Initialize Repositories
	workerRepo := idb.NewPostgresWorkerRepository(db)
	facilityRepo := idb.NewPostgresFacilityRepository(db)
	overdueRepo := idb.NewPostgresOverdueRepository(db)
	downloadRepo := idb.NewPostgresDownloadRepository(db)
	connectivity := idb.NewConnectivityMonitor(db)
	mainLogger.Info("Repositories initialized.")

	// Initialize Telegram Bot
	telebotLogger := logger.Component("telebot")
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := telebotLogger.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
			}
			entry.Error("Telebot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}
	telegramClient := telegram.NewTelebotAdapter(bot)

	// Initialize Services
	exporters := []download.Exporter{export.NewCSVExporter()}
	if cfg.PdfExportEnabled {
		exporters = append(exporters, export.NewPDFExporter())
	}
	downloadService := app.NewDownloadServiceImpl(
		downloadRepo,
		facilityRepo,
		overdueRepo,
		telegramClient,
		exporters,
		userClock.Today,
		cfg.DownloadMaxAttempts,
		logger.Component("download_service"),
	)
	digestService := app.NewDigestService(workerRepo, facilityRepo, overdueRepo, telegramClient, userClock.Today, logger.Component("digest_service"))
	adminService := app.NewAdminService(workerRepo, facilityRepo, cfg.AdminTelegramID)
	mainLogger.Info("Services initialized.")

	unknownNetworkStatus := overduelist.NetworkInactive
	if cfg.UnknownNetworkStatusPolicy == config.NetworkPolicyActive {
		unknownNetworkStatus = overduelist.NetworkActive
	}
	sessions := overduelist.NewSessionManager(
		overduelist.SessionConfig{
			SectionsFeatureEnabled: cfg.OverdueSectionsEnabled,
			CanGeneratePdf:         cfg.PdfExportEnabled,
			UnknownNetworkStatus:   unknownNetworkStatus,
		},
		facilityRepo,
		overdueRepo,
		downloadService,
		telegram.NewChatScreenFactory(bot, cfg.PendingListSeeLessLimit, userClock.Today, logger.Component("chat_screen")),
		userClock.Today,
		logger.Component("overdue_list"),
	)

	// Register Handlers
	handlerLogger := logger.Component("handlers")
	telegram.RegisterBotCommands(ctx, bot, cfg, workerRepo, handlerLogger)
	telegram.RegisterAdminHandlers(ctx, bot, adminService, cfg.AdminTelegramID, handlerLogger)
	telegram.RegisterOverdueHandlers(ctx, bot, workerRepo, sessions, connectivity, handlerLogger)
	mainLogger.Info("Command handlers registered.")

	// Initialize Scheduler
	overdueScheduler := scheduler.NewOverdueScheduler(
		downloadService,
		digestService,
		userClock.Location(),
		logger.Component("scheduler"),
		cfg.CronSpecDownloadCheck,
		cfg.CronSpecDailyDigest,
	)
	if err := overdueScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start scheduler")
	}

	mainLogger.Info("Application setup complete. Bot is starting...")

	// Start bot in a goroutine so it doesn't block graceful shutdown handling
	go bot.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	mainLogger.Info("Shutting down application...")
	bot.Stop()
	overdueScheduler.Stop()
	cancel()
	sessions.CloseAll()
	mainLogger.Info("Application shut down gracefully.")
}
