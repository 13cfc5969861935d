package handlers

import (
	"DriverHelper/internal/bot"
	"DriverHelper/internal/bot/messages"
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"context"

	"github.com/rs/zerolog"
)

func init() {
	bot.RegisterCommand(NewStartHandler)
}

// startHandler is the plugin for the /start command.
type startHandler struct {
	log      zerolog.Logger
	drivers  ports.DriverRepository
	sessions ports.SessionRepository
	bot      ports.BotClientPort
}

// NewStartHandler creates a new handler for the /start command.
func NewStartHandler(deps *bot.Deps) ports.CommandHandler {
	return &startHandler{
		log:      deps.Log.With().Str("component", "start_handler").Logger(),
		drivers:  deps.Drivers,
		sessions: deps.Sessions,
		bot:      deps.Bot,
	}
}

// Command returns the command string (without the "/")
func (h *startHandler) Command() string {
	return "start"
}

// Handle routes /start to the main menu for onboarded drivers and into
// a fresh onboarding flow for everyone else.
func (h *startHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	ctxLogger := h.log.With().Int64("user_id", update.UserID).Logger()
	ctx = ctxLogger.WithContext(ctx)

	driver, err := h.drivers.GetByTelegramID(ctx, update.UserID)
	if err != nil {
		ctxLogger.Error().Err(err).Msg("Failed to get driver from repository")
		return sendError(ctx, h.bot, update.ChatID)
	}

	if driver != nil && driver.OnboardingCompleted {
		ctxLogger.Info().Int64("driver_id", driver.ID).Msg("Onboarded driver, showing main menu")
		_, err := h.bot.SendMessage(ctx, messages.MainMenu(update.ChatID, driver))
		return err
	}

	// New user, or a known driver who never finished. Either way the
	// flow restarts from step one: drop the old session and recreate.
	data := domain.OnboardingData{}
	if driver != nil {
		ctxLogger.Info().Int64("driver_id", driver.ID).Msg("Incomplete onboarding, restarting flow")
		data.DriverID = driver.ID
	} else {
		ctxLogger.Info().Msg("New user, starting onboarding")
	}

	if err := h.sessions.Delete(ctx, update.UserID, domain.KindOnboarding); err != nil {
		ctxLogger.Error().Err(err).Msg("Failed to clear previous onboarding session")
		return sendError(ctx, h.bot, update.ChatID)
	}
	if _, err := h.sessions.Create(ctx, update.UserID, domain.KindOnboarding, 1, data); err != nil {
		ctxLogger.Error().Err(err).Msg("Failed to create onboarding session")
		return sendError(ctx, h.bot, update.ChatID)
	}

	// A returning user may still have a menu keyboard on screen, clear
	// it for the duration of the form.
	msg := messages.NewBuilder(update.ChatID).
		WithText("🚛 Welcome to Driver Onboarding!\n\n" +
			"I'll help you complete your registration. Let's start with your basic information.\n\n" +
			"Please send me your full name (First Name Last Name):").
		WithRemoveKeyboard().
		Build()
	_, err = h.bot.SendMessage(ctx, msg)
	return err
}
