package bot

import (
	"DriverHelper/internal/core/ports"
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// HandlerFunc handles one update without carrying handler identity.
// Reply-keyboard phrases are dispatched through these.
type HandlerFunc func(ctx context.Context, update *ports.BotUpdate) error

// Router is the "Bot Facade." It holds all "plugins" and routes
// incoming updates to the correct handler.
//
// Dispatch precedence for one update:
//  1. callbacks (ordered prefix list)
//  2. commands (exact match; unknown commands get a hint)
//  3. photos: the ordered photo-conversation list
//  4. other attachments: a please-send-a-photo hint
//  5. text: keyboard phrases, then the ordered text-conversation list
type Router struct {
	log       zerolog.Logger
	sessions  ports.SessionRepository
	botClient ports.BotClientPort

	commands   map[string]ports.CommandHandler
	callbacks  []ports.CallbackHandler // iterated in registration order
	keyboard   map[string]HandlerFunc
	textConvs  []ports.Conversation // priority order, first live session wins
	photoConvs []ports.PhotoConversation
}

// NewRouter creates a new bot facade/router.
func NewRouter(
	sessions ports.SessionRepository,
	botClient ports.BotClientPort,
	baseLogger *zerolog.Logger,
) *Router {
	return &Router{
		log:       baseLogger.With().Str("component", "bot_router").Logger(),
		sessions:  sessions,
		botClient: botClient,
		commands:  make(map[string]ports.CommandHandler),
		keyboard:  make(map[string]HandlerFunc),
	}
}

// RegisterCommandHandler adds a command "plugin" to the router.
func (r *Router) RegisterCommandHandler(handler ports.CommandHandler) {
	cmd := handler.Command()
	r.commands[cmd] = handler
	r.log.Info().Str("command", cmd).Msg("Registered new command handler")
}

// RegisterCallbackHandler appends a callback "plugin". Order matters:
// the first prefix match wins, so narrower prefixes must be registered
// before wider ones (message_hr before message_).
func (r *Router) RegisterCallbackHandler(handler ports.CallbackHandler) {
	r.callbacks = append(r.callbacks, handler)
	r.log.Info().Str("prefix", handler.Prefix()).Msg("Registered new callback handler")
}

// RegisterKeyboardAction maps a reply-keyboard phrase to a handler.
func (r *Router) RegisterKeyboardAction(phrase string, fn HandlerFunc) {
	r.keyboard[phrase] = fn
	r.log.Info().Str("phrase", phrase).Msg("Registered keyboard action")
}

// RegisterConversation appends to the text-conversation priority list.
func (r *Router) RegisterConversation(conv ports.Conversation) {
	r.textConvs = append(r.textConvs, conv)
	r.log.Info().Str("kind", string(conv.Kind())).Msg("Registered text conversation")
}

// RegisterPhotoConversation appends to the photo-conversation priority list.
func (r *Router) RegisterPhotoConversation(conv ports.PhotoConversation) {
	r.photoConvs = append(r.photoConvs, conv)
	r.log.Info().Str("kind", string(conv.Kind())).Msg("Registered photo conversation")
}

// HandleUpdate is the main entry point for a new update from Telegram.
func (r *Router) HandleUpdate(ctx context.Context, update *tgbotapi.Update) {
	// 1. Convert to our generic BotUpdate
	botUpdate, isSupported := r.parseUpdate(update)
	if !isSupported {
		r.log.Warn().Interface("update", update).Msg("Received unsupported update type")
		return
	}

	// 2. Add logger context
	ctxLogger := r.log.With().
		Int64("user_id", botUpdate.UserID).
		Int64("chat_id", botUpdate.ChatID).
		Logger()
	ctx = ctxLogger.WithContext(ctx)

	// 3. Callbacks first
	if botUpdate.CallbackData != nil {
		r.dispatchCallback(ctx, botUpdate, &ctxLogger)
		return
	}

	// 4. Commands next
	if botUpdate.Command != "" {
		if handler, ok := r.commands[botUpdate.Command]; ok {
			ctxLogger.Info().Str("handler", botUpdate.Command).Msg("Routing to command handler")
			if err := handler.Handle(ctx, botUpdate); err != nil {
				ctxLogger.Error().Err(err).Msg("Command handler failed")
			}
			return
		}
		ctxLogger.Info().Str("command", botUpdate.Command).Msg("Unknown command received")
		r.botClient.SendMessage(ctx, ports.SendMessageParams{
			ChatID: botUpdate.ChatID,
			Text:   "Unknown command. Use /help to see available commands.",
		})
		return
	}

	// 5. Photos go through their own conversation list
	if botUpdate.Photo != nil {
		r.dispatchPhoto(ctx, botUpdate, &ctxLogger)
		return
	}

	// 6. Other attachments: ask for a photo instead. A document sent
	// mid-onboarding would otherwise arrive as empty text.
	if botUpdate.HasAttachment {
		ctxLogger.Info().Msg("Non-photo attachment received, asking for a photo")
		r.botClient.SendMessage(ctx, ports.SendMessageParams{
			ChatID: botUpdate.ChatID,
			Text:   "📸 Please send photos instead of documents. You can take a photo of your document using your camera.",
		})
		return
	}

	// 7. Plain text: keyboard phrases beat session state
	if fn, ok := r.keyboard[botUpdate.Text]; ok {
		ctxLogger.Info().Str("phrase", botUpdate.Text).Msg("Routing to keyboard action")
		if err := fn(ctx, botUpdate); err != nil {
			ctxLogger.Error().Err(err).Msg("Keyboard action failed")
		}
		return
	}

	r.dispatchText(ctx, botUpdate, &ctxLogger)
}

// dispatchCallback walks the ordered callback list. Every callback gets
// acknowledged: handlers answer with their own text, and the router
// answers as a fallback when no handler matched or the handler failed,
// so the client's spinner always stops.
func (r *Router) dispatchCallback(ctx context.Context, botUpdate *ports.BotUpdate, ctxLogger *zerolog.Logger) {
	data := *botUpdate.CallbackData
	for _, handler := range r.callbacks {
		if strings.HasPrefix(data, handler.Prefix()) {
			ctxLogger.Info().Str("handler", handler.Prefix()).Str("data", data).Msg("Routing to callback handler")
			if err := handler.Handle(ctx, botUpdate); err != nil {
				ctxLogger.Error().Err(err).Msg("Callback handler failed")
				r.botClient.AnswerCallbackQuery(ctx, ports.AnswerCallbackParams{
					CallbackQueryID: botUpdate.CallbackQueryID,
					Text:            "❌ Error processing request.",
				})
			}
			return
		}
	}

	ctxLogger.Warn().Str("data", data).Msg("No callback handler found")
	r.botClient.AnswerCallbackQuery(ctx, ports.AnswerCallbackParams{
		CallbackQueryID: botUpdate.CallbackQueryID,
	})
}

// dispatchText walks the text-conversation list and hands the update to
// the first kind with a live session.
func (r *Router) dispatchText(ctx context.Context, botUpdate *ports.BotUpdate, ctxLogger *zerolog.Logger) {
	for _, conv := range r.textConvs {
		session, err := r.sessions.Get(ctx, botUpdate.UserID, conv.Kind())
		if err != nil {
			ctxLogger.Error().Err(err).Str("kind", string(conv.Kind())).Msg("Failed to load session")
			r.botClient.SendMessage(ctx, ports.SendMessageParams{
				ChatID: botUpdate.ChatID,
				Text:   "❌ Sorry, there was an error. Please try again.",
			})
			return
		}
		if session == nil {
			continue
		}

		ctxLogger.Info().Str("kind", string(conv.Kind())).Int("step", session.Step).Msg("Routing to conversation")
		if err := conv.HandleText(ctx, botUpdate, session); err != nil {
			ctxLogger.Error().Err(err).Str("kind", string(conv.Kind())).Msg("Conversation handler failed")
		}
		return
	}

	// No active session found
	ctxLogger.Info().Msg("No active session for text message, sending default guidance")
	r.botClient.SendMessage(ctx, ports.SendMessageParams{
		ChatID: botUpdate.ChatID,
		Text:   "Please use /start to begin onboarding or /help for available commands.",
	})
}

// dispatchPhoto mirrors dispatchText for photo uploads. A photo with no
// expecting conversation is dropped silently.
func (r *Router) dispatchPhoto(ctx context.Context, botUpdate *ports.BotUpdate, ctxLogger *zerolog.Logger) {
	for _, conv := range r.photoConvs {
		session, err := r.sessions.Get(ctx, botUpdate.UserID, conv.Kind())
		if err != nil {
			ctxLogger.Error().Err(err).Str("kind", string(conv.Kind())).Msg("Failed to load session")
			return
		}
		if session == nil {
			continue
		}

		ctxLogger.Info().Str("kind", string(conv.Kind())).Int("step", session.Step).Msg("Routing photo to conversation")
		if err := conv.HandlePhoto(ctx, botUpdate, session); err != nil {
			ctxLogger.Error().Err(err).Str("kind", string(conv.Kind())).Msg("Photo conversation handler failed")
		}
		return
	}

	ctxLogger.Info().Msg("Photo received outside any conversation, ignoring")
}

// parseUpdate converts a tgbotapi.Update into our internal, simplified struct.
func (r *Router) parseUpdate(update *tgbotapi.Update) (*ports.BotUpdate, bool) {
	if update.CallbackQuery != nil {
		// This is a Callback
		cb := update.CallbackQuery
		botUpdate := &ports.BotUpdate{
			UserID:          cb.From.ID,
			CallbackQueryID: cb.ID,
			CallbackData:    &cb.Data,
		}
		if cb.Message != nil {
			botUpdate.MessageID = cb.Message.MessageID
			botUpdate.ChatID = cb.Message.Chat.ID
		}
		return botUpdate, true
	}

	if update.Message != nil {
		// This is a Message
		msg := update.Message
		botUpdate := &ports.BotUpdate{
			MessageID:   msg.MessageID,
			ChatID:      msg.Chat.ID,
			UserID:      msg.From.ID,
			Text:        msg.Text,
			Command:     msg.Command(),
			CommandArgs: msg.CommandArguments(),
		}
		if len(msg.Photo) > 0 {
			// Telegram sends multiple sizes, the last one is the largest
			largest := msg.Photo[len(msg.Photo)-1]
			botUpdate.Photo = &ports.PhotoAttachment{
				FileID: largest.FileID,
				Width:  largest.Width,
				Height: largest.Height,
			}
		} else if msg.Document != nil || msg.Sticker != nil || msg.Voice != nil ||
			msg.Audio != nil || msg.Video != nil || msg.VideoNote != nil || msg.Contact != nil {
			botUpdate.HasAttachment = true
		}
		return botUpdate, true
	}

	return nil, false // Unsupported update
}
