package main

import (
	"DriverHelper/internal/adapters/ai"
	"DriverHelper/internal/adapters/eventbus"
	"DriverHelper/internal/adapters/postgres"
	"DriverHelper/internal/adapters/security"
	"DriverHelper/internal/adapters/storage"
	"DriverHelper/internal/adapters/telegram"
	"DriverHelper/internal/bot"
	"DriverHelper/internal/bot/notify"
	"DriverHelper/internal/bot/sweeper"
	"DriverHelper/internal/shared/config"
	"DriverHelper/internal/shared/logger"
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	// Handler packages register themselves in init().
	_ "DriverHelper/internal/bot/conversations"
	_ "DriverHelper/internal/bot/handlers"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	isDevMode := cfg.AppEnv == "dev"
	baseLogger := logger.New(isDevMode, cfg.LogLevel)
	baseLogger.Info().
		Str("app_env", cfg.AppEnv).
		Int("workers", cfg.Bot.WorkerPoolSize).
		Msg("Configuration loaded")

	// 3. Initialize the Security Service (encrypts driver PII at rest)
	keyBytes, err := hex.DecodeString(cfg.EncryptionKey)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to decode ENCRYPTION_KEY. It must be hex-encoded.")
	}
	secSvc, err := security.NewAESService(keyBytes, &baseLogger)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to initialize security service")
	}

	// 4. Initialize Database
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, cfg.DatabaseURL, &baseLogger)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// 5. Initialize Repositories
	driverRepo := postgres.NewDriverRepository(db, secSvc, &baseLogger)
	sessionRepo := postgres.NewSessionRepository(db, cfg.SessionTTL, &baseLogger)
	requestRepo := postgres.NewRequestRepository(db, &baseLogger)

	// 6. Initialize Document Storage and Analyzer
	docStorage, err := storage.NewSpacesStorage(&cfg.Storage, &baseLogger)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to initialize object storage")
	}
	analyzer := ai.NewOpenAIAnalyzer(cfg.OpenAIKey, &baseLogger)

	// 7. Initialize the Telegram API and client adapter
	api, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to connect to Telegram")
	}
	baseLogger.Info().Str("bot_username", api.Self.UserName).Msg("Authorized on Telegram")
	botClient := telegram.NewClient(api, &baseLogger)

	// 8. Event bus + notification fan-out
	bus := eventbus.NewInMemoryEventBus(&baseLogger)
	notify.NewNotifier(cfg.Bot.HRChannelID, botClient, &baseLogger).Register(bus)

	// 9. Build the router from all registered handlers
	router := bot.BuildRouter(&bot.Deps{
		Cfg:      cfg,
		Drivers:  driverRepo,
		Sessions: sessionRepo,
		Requests: requestRepo,
		Storage:  docStorage,
		Analyzer: analyzer,
		Bot:      botClient,
		Bus:      bus,
		Log:      &baseLogger,
	})

	// 10. Session sweeper
	sweep := sweeper.NewSweeper(sessionRepo, &baseLogger)
	if err := sweep.Start(); err != nil {
		baseLogger.Fatal().Err(err).Msg("Failed to start session sweeper")
	}
	defer sweep.Stop()

	// 11. Run the polling server until SIGINT/SIGTERM
	baseLogger.Info().Msg("All services initialized successfully")
	server := telegram.NewBotServer(api, router, &cfg.Bot, &baseLogger)
	if err := server.Start(ctx); err != nil {
		baseLogger.Fatal().Err(err).Msg("Bot server failed")
	}
	baseLogger.Info().Msg("Shutdown complete")
}
