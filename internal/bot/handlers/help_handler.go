package handlers

import (
	"DriverHelper/internal/bot"
	"DriverHelper/internal/bot/messages"
	"DriverHelper/internal/core/ports"
	"context"

	"github.com/rs/zerolog"
)

func init() {
	bot.RegisterCommand(NewHelpHandler)
}

// helpHandler is the plugin for the /help command.
type helpHandler struct {
	log         zerolog.Logger
	hrChannelID int64
	bot         ports.BotClientPort
}

// NewHelpHandler creates a new handler for the /help command.
func NewHelpHandler(deps *bot.Deps) ports.CommandHandler {
	return &helpHandler{
		log:         deps.Log.With().Str("component", "help_handler").Logger(),
		hrChannelID: deps.Cfg.Bot.HRChannelID,
		bot:         deps.Bot,
	}
}

func (h *helpHandler) Command() string {
	return "help"
}

// Handle sends the HR command list in the HR channel and the driver
// list everywhere else.
func (h *helpHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	isHR := update.ChatID == h.hrChannelID
	_, err := h.bot.SendMessage(ctx, ports.SendMessageParams{
		ChatID: update.ChatID,
		Text:   messages.HelpText(isHR),
	})
	return err
}
