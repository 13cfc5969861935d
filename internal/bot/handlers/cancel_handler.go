package handlers

import (
	"DriverHelper/internal/bot"
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"context"

	"github.com/rs/zerolog"
)

func init() {
	bot.RegisterCommand(NewCancelHandler)
}

// cancelHandler is the plugin for the /cancel command. It aborts the
// relay conversations; flow conversations are restarted with /start
// or their entry buttons instead.
type cancelHandler struct {
	log      zerolog.Logger
	sessions ports.SessionRepository
	bot      ports.BotClientPort
}

// NewCancelHandler creates a new handler for the /cancel command.
func NewCancelHandler(deps *bot.Deps) ports.CommandHandler {
	return &cancelHandler{
		log:      deps.Log.With().Str("component", "cancel_handler").Logger(),
		sessions: deps.Sessions,
		bot:      deps.Bot,
	}
}

func (h *cancelHandler) Command() string {
	return "cancel"
}

// Handle cancels driver_reply first, then hr_message, matching the
// conversation priority order.
func (h *cancelHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	cancellations := []struct {
		kind         domain.SessionKind
		confirmation string
	}{
		{domain.KindDriverReply, "❌ Reply mode cancelled. You can now use the main menu."},
		{domain.KindHRMessage, "❌ Message cancelled."},
	}

	for _, c := range cancellations {
		session, err := h.sessions.Get(ctx, update.UserID, c.kind)
		if err != nil {
			h.log.Error().Err(err).Str("kind", string(c.kind)).Msg("Failed to load session")
			return sendError(ctx, h.bot, update.ChatID)
		}
		if session == nil {
			continue
		}

		if err := h.sessions.Delete(ctx, update.UserID, c.kind); err != nil {
			h.log.Error().Err(err).Str("kind", string(c.kind)).Msg("Failed to delete session")
			return sendError(ctx, h.bot, update.ChatID)
		}
		_, err = h.bot.SendMessage(ctx, ports.SendMessageParams{ChatID: update.ChatID, Text: c.confirmation})
		return err
	}

	_, err := h.bot.SendMessage(ctx, ports.SendMessageParams{
		ChatID: update.ChatID,
		Text:   "There is no active session to cancel.",
	})
	return err
}
