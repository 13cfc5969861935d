package handlers

import (
	"DriverHelper/internal/bot"
	"DriverHelper/internal/core/ports"
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

func init() {
	bot.RegisterCommand(NewPendingRequestsHandler)
}

// pendingRequestsHandler is the plugin for the /pending_requests command.
type pendingRequestsHandler struct {
	log      zerolog.Logger
	requests ports.RequestRepository
	bot      ports.BotClientPort
}

// NewPendingRequestsHandler creates a new handler for /pending_requests.
func NewPendingRequestsHandler(deps *bot.Deps) ports.CommandHandler {
	return &pendingRequestsHandler{
		log:      deps.Log.With().Str("component", "pending_requests_handler").Logger(),
		requests: deps.Requests,
		bot:      deps.Bot,
	}
}

func (h *pendingRequestsHandler) Command() string {
	return "pending_requests"
}

// Handle lists every request still awaiting a decision, oldest first.
// Driver ids match what /message and /approve take as argument.
func (h *pendingRequestsHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	advances, vacations, err := h.requests.GetPending(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch pending requests")
		return sendError(ctx, h.bot, update.ChatID)
	}

	if len(advances) == 0 && len(vacations) == 0 {
		_, err := h.bot.SendMessage(ctx, ports.SendMessageParams{
			ChatID: update.ChatID,
			Text:   "📋 No pending requests.",
		})
		return err
	}

	var sb strings.Builder
	sb.WriteString("📋 Pending Requests\n\n")
	for _, a := range advances {
		fmt.Fprintf(&sb, "💰 Advance $%.2f (driver %d)\nReason: %s\n\n", a.Amount, a.DriverID, a.Reason)
	}
	for _, v := range vacations {
		fmt.Fprintf(&sb, "🏖️ Vacation %s to %s (driver %d)\nReason: %s\n\n", v.StartDate, v.EndDate, v.DriverID, v.Reason)
	}

	_, err = h.bot.SendMessage(ctx, ports.SendMessageParams{
		ChatID: update.ChatID,
		Text:   strings.TrimRight(sb.String(), "\n"),
	})
	return err
}
