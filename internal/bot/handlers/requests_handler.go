package handlers

import (
	"DriverHelper/internal/bot"
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"context"
)

func init() {
	bot.RegisterCommand(newRequestAdvanceCommand)
	bot.RegisterCommand(newRequestVacationCommand)
	bot.RegisterCallback(newRequestAdvanceCallback)
	bot.RegisterCallback(newRequestVacationCallback)
}

func newStarter(deps *bot.Deps, component string) requestStarter {
	return requestStarter{
		log:      deps.Log.With().Str("component", component).Logger(),
		drivers:  deps.Drivers,
		sessions: deps.Sessions,
		bot:      deps.Bot,
	}
}

// --- Command form: /request_advance, /request_vacation ---

type requestCommandHandler struct {
	command string
	kind    domain.SessionKind
	starter requestStarter
}

func newRequestAdvanceCommand(deps *bot.Deps) ports.CommandHandler {
	return &requestCommandHandler{
		command: "request_advance",
		kind:    domain.KindAdvanceRequest,
		starter: newStarter(deps, "request_advance_handler"),
	}
}

func newRequestVacationCommand(deps *bot.Deps) ports.CommandHandler {
	return &requestCommandHandler{
		command: "request_vacation",
		kind:    domain.KindVacationRequest,
		starter: newStarter(deps, "request_vacation_handler"),
	}
}

func (h *requestCommandHandler) Command() string {
	return h.command
}

func (h *requestCommandHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	if err := h.starter.start(ctx, update, h.kind); err != nil {
		h.starter.log.Error().Err(err).Msg("Failed to start request conversation")
		return sendError(ctx, h.starter.bot, update.ChatID)
	}
	return nil
}

// --- Button form: exact callbacks request_advance, request_vacation ---

type requestCallbackHandler struct {
	prefix  string
	kind    domain.SessionKind
	starter requestStarter
}

func newRequestAdvanceCallback(deps *bot.Deps) ports.CallbackHandler {
	return &requestCallbackHandler{
		prefix:  "request_advance",
		kind:    domain.KindAdvanceRequest,
		starter: newStarter(deps, "request_advance_callback"),
	}
}

func newRequestVacationCallback(deps *bot.Deps) ports.CallbackHandler {
	return &requestCallbackHandler{
		prefix:  "request_vacation",
		kind:    domain.KindVacationRequest,
		starter: newStarter(deps, "request_vacation_callback"),
	}
}

func (h *requestCallbackHandler) Prefix() string {
	return h.prefix
}

func (h *requestCallbackHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	if err := h.starter.bot.AnswerCallbackQuery(ctx, ports.AnswerCallbackParams{
		CallbackQueryID: update.CallbackQueryID,
	}); err != nil {
		h.starter.log.Warn().Err(err).Msg("Failed to acknowledge callback")
	}

	if err := h.starter.start(ctx, update, h.kind); err != nil {
		h.starter.log.Error().Err(err).Msg("Failed to start request conversation")
		return sendError(ctx, h.starter.bot, update.ChatID)
	}
	return nil
}
