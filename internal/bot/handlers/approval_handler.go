package handlers

import (
	"DriverHelper/internal/bot"
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

func init() {
	bot.RegisterCommand(newApproveCommand)
	bot.RegisterCommand(newRejectCommand)
	bot.RegisterCallback(newApproveCallback)
	bot.RegisterCallback(newRejectCallback)
}

// approvalAction names the two HR decisions on an application.
type approvalAction string

const (
	actionApprove approvalAction = "approve"
	actionReject  approvalAction = "reject"
)

func (a approvalAction) targetStatus() domain.DriverStatus {
	if a == actionApprove {
		return domain.StatusActive
	}
	return domain.StatusInactive
}

func (a approvalAction) pastTense() string {
	if a == actionApprove {
		return "approved"
	}
	return "rejected"
}

func (a approvalAction) topic() string {
	if a == actionApprove {
		return ports.TopicDriverApproved
	}
	return ports.TopicDriverRejected
}

// applicationDecider is the single routine both the text commands and
// the inline buttons converge on: update the status, announce the
// decision on the bus. Returns (nil, nil) when the driver id is unknown.
type applicationDecider struct {
	log     zerolog.Logger
	drivers ports.DriverRepository
	bot     ports.BotClientPort
	bus     ports.EventBus
}

func newApplicationDecider(deps *bot.Deps, component string) applicationDecider {
	return applicationDecider{
		log:     deps.Log.With().Str("component", component).Logger(),
		drivers: deps.Drivers,
		bot:     deps.Bot,
		bus:     deps.Bus,
	}
}

func (d *applicationDecider) decide(ctx context.Context, driverID int64, action approvalAction) (*domain.Driver, error) {
	driver, err := d.drivers.UpdateStatus(ctx, driverID, action.targetStatus())
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, nil
	}

	if err := d.bus.Publish(ctx, action.topic(), driver); err != nil {
		// The decision is already committed, the driver just won't get
		// the push notice.
		d.log.Error().Err(err).Int64("driver_id", driver.ID).Msg("Failed to publish decision event")
	}
	d.log.Info().Int64("driver_id", driver.ID).Str("status", string(driver.Status)).Msg("Application decided")
	return driver, nil
}

// --- Command form: /approve <id>, /reject <id> ---

type approvalCommandHandler struct {
	action  approvalAction
	decider applicationDecider
}

func newApproveCommand(deps *bot.Deps) ports.CommandHandler {
	return &approvalCommandHandler{action: actionApprove, decider: newApplicationDecider(deps, "approve_handler")}
}

func newRejectCommand(deps *bot.Deps) ports.CommandHandler {
	return &approvalCommandHandler{action: actionReject, decider: newApplicationDecider(deps, "reject_handler")}
}

func (h *approvalCommandHandler) Command() string {
	return string(h.action)
}

func (h *approvalCommandHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	driverID, err := strconv.ParseInt(strings.TrimSpace(update.CommandArgs), 10, 64)
	if err != nil {
		_, err := h.decider.bot.SendMessage(ctx, ports.SendMessageParams{
			ChatID: update.ChatID,
			Text:   fmt.Sprintf("Usage: /%s [driver_id]", h.action),
		})
		return err
	}

	driver, err := h.decider.decide(ctx, driverID, h.action)
	if err != nil {
		h.decider.log.Error().Err(err).Int64("driver_id", driverID).Msg("Failed to decide application")
		return sendError(ctx, h.decider.bot, update.ChatID)
	}
	if driver == nil {
		_, err := h.decider.bot.SendMessage(ctx, ports.SendMessageParams{
			ChatID: update.ChatID,
			Text:   "❌ Driver not found.",
		})
		return err
	}

	_, err = h.decider.bot.SendMessage(ctx, ports.SendMessageParams{
		ChatID: update.ChatID,
		Text: fmt.Sprintf("✅ Driver %s successfully.\n\nDriver: %s\nStatus: %s",
			h.action.pastTense(), driver.FullName, driver.Status),
	})
	return err
}

// --- Button form: approve_<id>, reject_<id> ---

type approvalCallbackHandler struct {
	action  approvalAction
	decider applicationDecider
}

func newApproveCallback(deps *bot.Deps) ports.CallbackHandler {
	return &approvalCallbackHandler{action: actionApprove, decider: newApplicationDecider(deps, "approve_callback")}
}

func newRejectCallback(deps *bot.Deps) ports.CallbackHandler {
	return &approvalCallbackHandler{action: actionReject, decider: newApplicationDecider(deps, "reject_callback")}
}

func (h *approvalCallbackHandler) Prefix() string {
	return string(h.action) + "_"
}

func (h *approvalCallbackHandler) Handle(ctx context.Context, update *ports.BotUpdate) error {
	driverID, err := strconv.ParseInt(strings.TrimPrefix(*update.CallbackData, h.Prefix()), 10, 64)
	if err != nil {
		return h.decider.bot.AnswerCallbackQuery(ctx, ports.AnswerCallbackParams{
			CallbackQueryID: update.CallbackQueryID,
			Text:            "❌ Error processing request.",
		})
	}

	driver, err := h.decider.decide(ctx, driverID, h.action)
	if err != nil {
		h.decider.log.Error().Err(err).Int64("driver_id", driverID).Msg("Failed to decide application")
		return h.decider.bot.AnswerCallbackQuery(ctx, ports.AnswerCallbackParams{
			CallbackQueryID: update.CallbackQueryID,
			Text:            "❌ Error processing request.",
		})
	}
	if driver == nil {
		return h.decider.bot.AnswerCallbackQuery(ctx, ports.AnswerCallbackParams{
			CallbackQueryID: update.CallbackQueryID,
			Text:            "❌ Driver not found.",
		})
	}

	return h.decider.bot.AnswerCallbackQuery(ctx, ports.AnswerCallbackParams{
		CallbackQueryID: update.CallbackQueryID,
		Text:            fmt.Sprintf("✅ Driver %s successfully!", h.action.pastTense()),
	})
}
