package handlers

import (
	"DriverHelper/internal/bot"
	"DriverHelper/internal/bot/messages"
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

func init() {
	bot.RegisterKeyboard(NewMenuKeyboard)
	bot.RegisterCallback(newMessageHRCallback)
	bot.RegisterCallback(newMessageSupportCallback)
	bot.RegisterCallback(newCheckStatusCallback)
	bot.RegisterCallback(newHelpCallback)
}

// menuActions backs the persistent reply keyboard and the menu inline
// buttons. Both surfaces drive the same flows.
type menuActions struct {
	log         zerolog.Logger
	hrChannelID int64
	drivers     ports.DriverRepository
	sessions    ports.SessionRepository
	bot         ports.BotClientPort
	messenger   driverMessenger
	requests    requestStarter
}

func newMenuActions(deps *bot.Deps) *menuActions {
	log := deps.Log.With().Str("component", "menu_handler").Logger()
	return &menuActions{
		log:         log,
		hrChannelID: deps.Cfg.Bot.HRChannelID,
		drivers:     deps.Drivers,
		sessions:    deps.Sessions,
		bot:         deps.Bot,
		messenger: driverMessenger{
			log:              log,
			hrChannelID:      deps.Cfg.Bot.HRChannelID,
			supportChannelID: deps.Cfg.Bot.SupportChannelID,
			drivers:          deps.Drivers,
			sessions:         deps.Sessions,
			bot:              deps.Bot,
		},
		requests: newStarter(deps, "menu_handler"),
	}
}

// NewMenuKeyboard maps every reply-keyboard phrase to its action.
func NewMenuKeyboard(deps *bot.Deps) map[string]bot.HandlerFunc {
	m := newMenuActions(deps)
	return map[string]bot.HandlerFunc{
		messages.PhraseRequestAdvance: func(ctx context.Context, update *ports.BotUpdate) error {
			return m.requests.start(ctx, update, domain.KindAdvanceRequest)
		},
		messages.PhraseRequestVacation: func(ctx context.Context, update *ports.BotUpdate) error {
			return m.requests.start(ctx, update, domain.KindVacationRequest)
		},
		messages.PhraseMessageHR: func(ctx context.Context, update *ports.BotUpdate) error {
			return m.startDriverMessage(ctx, update, "hr")
		},
		messages.PhraseContactSupport: func(ctx context.Context, update *ports.BotUpdate) error {
			return m.startDriverMessage(ctx, update, "support")
		},
		messages.PhraseViewStatus:    m.viewStatus,
		messages.PhraseHelp:          m.help,
		messages.PhraseUpdateProfile: m.updateProfileMenu,
		messages.PhraseDriverLicense: func(ctx context.Context, update *ports.BotUpdate) error {
			return m.startProfileUpdate(ctx, update, domain.DocumentDriverLicense)
		},
		messages.PhraseMedicalCard: func(ctx context.Context, update *ports.BotUpdate) error {
			return m.startProfileUpdate(ctx, update, domain.DocumentMedicalCard)
		},
		messages.PhraseBackToMenu: m.backToMenu,
	}
}

func (m *menuActions) startDriverMessage(ctx context.Context, update *ports.BotUpdate, department string) error {
	ok, err := m.messenger.start(ctx, update, department)
	if err != nil {
		m.log.Error().Err(err).Str("department", department).Msg("Failed to start driver message")
		return sendError(ctx, m.bot, update.ChatID)
	}
	if !ok {
		_, err := m.bot.SendMessage(ctx, ports.SendMessageParams{
			ChatID: update.ChatID,
			Text:   "❌ You are not registered as a driver.",
		})
		return err
	}
	return nil
}

func (m *menuActions) viewStatus(ctx context.Context, update *ports.BotUpdate) error {
	driver, err := m.drivers.GetByTelegramID(ctx, update.UserID)
	if err != nil {
		m.log.Error().Err(err).Msg("Failed to get driver for status")
		return sendError(ctx, m.bot, update.ChatID)
	}
	if driver == nil {
		_, err := m.bot.SendMessage(ctx, ports.SendMessageParams{
			ChatID: update.ChatID,
			Text:   "❌ You are not registered. Use /start to begin onboarding.",
		})
		return err
	}
	_, err = m.bot.SendMessage(ctx, ports.SendMessageParams{
		ChatID: update.ChatID,
		Text:   messages.StatusSummary(driver),
	})
	return err
}

func (m *menuActions) help(ctx context.Context, update *ports.BotUpdate) error {
	_, err := m.bot.SendMessage(ctx, ports.SendMessageParams{
		ChatID: update.ChatID,
		Text:   messages.HelpText(update.ChatID == m.hrChannelID),
	})
	return err
}

func (m *menuActions) updateProfileMenu(ctx context.Context, update *ports.BotUpdate) error {
	_, err := m.bot.SendMessage(ctx, messages.UpdateProfileMenu(update.ChatID))
	return err
}

// startProfileUpdate opens a profile_update session expecting a photo
// of the chosen document.
func (m *menuActions) startProfileUpdate(ctx context.Context, update *ports.BotUpdate, doc domain.DocumentType) error {
	if err := m.sessions.Delete(ctx, update.UserID, domain.KindProfileUpdate); err != nil {
		return sendError(ctx, m.bot, update.ChatID)
	}
	if _, err := m.sessions.Create(ctx, update.UserID, domain.KindProfileUpdate, 1, domain.ProfileUpdateData{Document: doc}); err != nil {
		m.log.Error().Err(err).Str("document", string(doc)).Msg("Failed to create profile update session")
		return sendError(ctx, m.bot, update.ChatID)
	}

	name := "Driver License"
	if doc == domain.DocumentMedicalCard {
		name = "Medical Card"
	}
	_, err := m.bot.SendMessage(ctx, ports.SendMessageParams{
		ChatID: update.ChatID,
		Text:   fmt.Sprintf("Please send a new photo of your %s or type /cancel to abort.", name),
	})
	return err
}

func (m *menuActions) backToMenu(ctx context.Context, update *ports.BotUpdate) error {
	driver, err := m.drivers.GetByTelegramID(ctx, update.UserID)
	if err != nil {
		m.log.Error().Err(err).Msg("Failed to get driver for main menu")
		return sendError(ctx, m.bot, update.ChatID)
	}
	if driver == nil {
		return nil
	}
	_, err = m.bot.SendMessage(ctx, messages.MainMenu(update.ChatID, driver))
	return err
}

// --- Inline-button twins of the menu actions ---

// menuCallbackHandler wraps one menu action as a callback handler with
// its own acknowledgement text.
type menuCallbackHandler struct {
	prefix  string
	ackText string
	actions *menuActions
	fn      func(ctx context.Context, update *ports.BotUpdate) error
}

func (h *menuCallbackHandler) Prefix() string {
	return h.prefix
}

func (h *menuCallbackHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	if err := h.actions.bot.AnswerCallbackQuery(ctx, ports.AnswerCallbackParams{
		CallbackQueryID: update.CallbackQueryID,
		Text:            h.ackText,
	}); err != nil {
		h.actions.log.Warn().Err(err).Str("prefix", h.prefix).Msg("Failed to acknowledge callback")
	}
	return h.fn(ctx, update)
}

func newMessageHRCallback(deps *bot.Deps) ports.CallbackHandler {
	m := newMenuActions(deps)
	return &menuCallbackHandler{
		prefix:  "message_hr",
		ackText: "💬 Starting chat with HR",
		actions: m,
		fn: func(ctx context.Context, update *ports.BotUpdate) error {
			return m.startDriverMessage(ctx, update, "hr")
		},
	}
}

func newMessageSupportCallback(deps *bot.Deps) ports.CallbackHandler {
	m := newMenuActions(deps)
	return &menuCallbackHandler{
		prefix:  "message_support",
		ackText: "💬 Starting chat with Support",
		actions: m,
		fn: func(ctx context.Context, update *ports.BotUpdate) error {
			return m.startDriverMessage(ctx, update, "support")
		},
	}
}

func newCheckStatusCallback(deps *bot.Deps) ports.CallbackHandler {
	m := newMenuActions(deps)
	return &menuCallbackHandler{
		prefix:  "check_status",
		actions: m,
		fn:      m.viewStatus,
	}
}

func newHelpCallback(deps *bot.Deps) ports.CallbackHandler {
	m := newMenuActions(deps)
	return &menuCallbackHandler{
		prefix:  "help",
		ackText: "📋 Help",
		actions: m,
		fn:      m.help,
	}
}
