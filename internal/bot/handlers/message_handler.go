package handlers

import (
	"DriverHelper/internal/bot"
	"DriverHelper/internal/core/ports"
	"context"
	"fmt"
	"strconv"
	"strings"
)

func init() {
	bot.RegisterCommand(NewMessageCommandHandler)
	bot.RegisterCallback(NewMessageCallbackHandler)
	bot.RegisterCallback(NewReplyDriverCallbackHandler)
}

// messageCommandHandler implements "/message <driver_id>" for HR.
type messageCommandHandler struct {
	messenger hrMessenger
}

// NewMessageCommandHandler creates the /message command handler.
func NewMessageCommandHandler(deps *bot.Deps) ports.CommandHandler {
	return &messageCommandHandler{
		messenger: hrMessenger{
			log:      deps.Log.With().Str("component", "message_handler").Logger(),
			drivers:  deps.Drivers,
			sessions: deps.Sessions,
			bot:      deps.Bot,
		},
	}
}

func (h *messageCommandHandler) Command() string {
	return "message"
}

// Handle opens message mode towards the driver named by the argument.
func (h *messageCommandHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	driverID, err := strconv.ParseInt(strings.TrimSpace(update.CommandArgs), 10, 64)
	if err != nil {
		_, err := h.messenger.bot.SendMessage(ctx, ports.SendMessageParams{
			ChatID: update.ChatID,
			Text:   "Usage: /message [driver_id]",
		})
		return err
	}

	driver, err := h.messenger.start(ctx, update.UserID, update.ChatID, driverID)
	if err != nil {
		h.messenger.log.Error().Err(err).Int64("driver_id", driverID).Msg("Failed to start HR message")
		return sendError(ctx, h.messenger.bot, update.ChatID)
	}
	if driver == nil {
		_, err := h.messenger.bot.SendMessage(ctx, ports.SendMessageParams{
			ChatID: update.ChatID,
			Text:   "❌ Driver not found.",
		})
		return err
	}
	return nil
}

// messageCallbackHandler implements the per-driver "message_<id>"
// inline button from the driver list and HR notices.
type messageCallbackHandler struct {
	messenger hrMessenger
	prefix    string
}

// NewMessageCallbackHandler creates the message_<id> callback handler.
func NewMessageCallbackHandler(deps *bot.Deps) ports.CallbackHandler {
	return &messageCallbackHandler{
		messenger: hrMessenger{
			log:      deps.Log.With().Str("component", "message_callback").Logger(),
			drivers:  deps.Drivers,
			sessions: deps.Sessions,
			bot:      deps.Bot,
		},
		prefix: "message_",
	}
}

func (h *messageCallbackHandler) Prefix() string {
	return h.prefix
}

func (h *messageCallbackHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	return handleMessageCallback(ctx, &h.messenger, h.prefix, update)
}

// replyDriverCallbackHandler implements the "reply_driver_<id>" button
// attached to relayed driver messages in the HR channel. Behaviour is
// identical to message_<id>: it puts the pressing HR actor into message
// mode towards that driver.
type replyDriverCallbackHandler struct {
	messenger hrMessenger
	prefix    string
}

// NewReplyDriverCallbackHandler creates the reply_driver_<id> handler.
func NewReplyDriverCallbackHandler(deps *bot.Deps) ports.CallbackHandler {
	return &replyDriverCallbackHandler{
		messenger: hrMessenger{
			log:      deps.Log.With().Str("component", "reply_driver_callback").Logger(),
			drivers:  deps.Drivers,
			sessions: deps.Sessions,
			bot:      deps.Bot,
		},
		prefix: "reply_driver_",
	}
}

func (h *replyDriverCallbackHandler) Prefix() string {
	return h.prefix
}

func (h *replyDriverCallbackHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	return handleMessageCallback(ctx, &h.messenger, h.prefix, update)
}

// handleMessageCallback parses the driver id out of the callback data
// and opens message mode, acknowledging the button press either way.
func handleMessageCallback(ctx context.Context, messenger *hrMessenger, prefix string, update *ports.BotUpdate) error {
	driverID, err := strconv.ParseInt(strings.TrimPrefix(*update.CallbackData, prefix), 10, 64)
	if err != nil {
		return messenger.bot.AnswerCallbackQuery(ctx, ports.AnswerCallbackParams{
			CallbackQueryID: update.CallbackQueryID,
			Text:            "❌ Error starting chat.",
		})
	}

	driver, err := messenger.start(ctx, update.UserID, update.ChatID, driverID)
	if err != nil {
		messenger.log.Error().Err(err).Int64("driver_id", driverID).Msg("Failed to start HR message")
		return messenger.bot.AnswerCallbackQuery(ctx, ports.AnswerCallbackParams{
			CallbackQueryID: update.CallbackQueryID,
			Text:            "❌ Error starting chat.",
		})
	}
	if driver == nil {
		return messenger.bot.AnswerCallbackQuery(ctx, ports.AnswerCallbackParams{
			CallbackQueryID: update.CallbackQueryID,
			Text:            "❌ Driver not found.",
		})
	}

	return messenger.bot.AnswerCallbackQuery(ctx, ports.AnswerCallbackParams{
		CallbackQueryID: update.CallbackQueryID,
		Text:            fmt.Sprintf("💬 Starting chat with %s", driver.FullName),
	})
}
