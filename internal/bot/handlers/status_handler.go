package handlers

import (
	"DriverHelper/internal/bot"
	"DriverHelper/internal/bot/messages"
	"DriverHelper/internal/core/ports"
	"context"

	"github.com/rs/zerolog"
)

func init() {
	bot.RegisterCommand(NewStatusHandler)
}

// statusHandler is the plugin for the /status command.
type statusHandler struct {
	log     zerolog.Logger
	drivers ports.DriverRepository
	bot     ports.BotClientPort
}

// NewStatusHandler creates a new handler for the /status command.
func NewStatusHandler(deps *bot.Deps) ports.CommandHandler {
	return &statusHandler{
		log:     deps.Log.With().Str("component", "status_handler").Logger(),
		drivers: deps.Drivers,
		bot:     deps.Bot,
	}
}

func (h *statusHandler) Command() string {
	return "status"
}

// Handle reports the caller's driver status, or points them at /start.
func (h *statusHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	driver, err := h.drivers.GetByTelegramID(ctx, update.UserID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", update.UserID).Msg("Failed to get driver")
		return sendError(ctx, h.bot, update.ChatID)
	}

	if driver == nil {
		_, err := h.bot.SendMessage(ctx, ports.SendMessageParams{
			ChatID: update.ChatID,
			Text:   "❌ You are not registered. Use /start to begin onboarding.",
		})
		return err
	}

	_, err = h.bot.SendMessage(ctx, ports.SendMessageParams{
		ChatID: update.ChatID,
		Text:   messages.StatusSummary(driver),
	})
	return err
}
