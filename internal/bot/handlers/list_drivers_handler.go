package handlers

import (
	"DriverHelper/internal/bot"
	"DriverHelper/internal/bot/messages"
	"DriverHelper/internal/core/ports"
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

func init() {
	bot.RegisterCommand(NewListDriversHandler)
}

// listDriversHandler is the plugin for the /list_drivers command.
type listDriversHandler struct {
	log     zerolog.Logger
	drivers ports.DriverRepository
	bot     ports.BotClientPort
}

// NewListDriversHandler creates a new handler for /list_drivers.
func NewListDriversHandler(deps *bot.Deps) ports.CommandHandler {
	return &listDriversHandler{
		log:     deps.Log.With().Str("component", "list_drivers_handler").Logger(),
		drivers: deps.Drivers,
		bot:     deps.Bot,
	}
}

func (h *listDriversHandler) Command() string {
	return "list_drivers"
}

// Handle lists every driver with per-driver action buttons carrying the
// driver's storage id in the callback data.
func (h *listDriversHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	drivers, err := h.drivers.GetAll(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch driver list")
		return sendError(ctx, h.bot, update.ChatID)
	}

	if len(drivers) == 0 {
		_, err := h.bot.SendMessage(ctx, ports.SendMessageParams{
			ChatID: update.ChatID,
			Text:   "📋 No drivers found.",
		})
		return err
	}

	var sb strings.Builder
	sb.WriteString("📋 Driver List\n\n")
	var buttons [][]ports.Button
	for i, driver := range drivers {
		fmt.Fprintf(&sb, "%d. %s (%s %s)\n\n", i+1, driver.FullName, driver.Status.StatusEmoji(), driver.Status)
		buttons = append(buttons, []ports.Button{
			{Text: fmt.Sprintf("💬 Message %s", driver.FullName), Data: fmt.Sprintf("message_%d", driver.ID)},
			{Text: "✅ Approve", Data: fmt.Sprintf("approve_%d", driver.ID)},
			{Text: "❌ Reject", Data: fmt.Sprintf("reject_%d", driver.ID)},
		})
	}

	msg := messages.NewBuilder(update.ChatID).
		WithText(sb.String()).
		WithInlineButtons(buttons).
		Build()
	_, err = h.bot.SendMessage(ctx, msg)
	return err
}
