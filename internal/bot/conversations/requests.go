package conversations

import (
	"DriverHelper/internal/bot"
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"DriverHelper/internal/shared/validate"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	bot.RegisterConversation(NewAdvanceRequest)
	bot.RegisterConversation(NewVacationRequest)
}

const minReasonLength = 10

// advanceRequest collects an amount and a reason, then files the
// request for HR review.
type advanceRequest struct {
	log      zerolog.Logger
	drivers  ports.DriverRepository
	sessions ports.SessionRepository
	requests ports.RequestRepository
	bot      ports.BotClientPort
	bus      ports.EventBus
}

// NewAdvanceRequest creates the advance-payment conversation.
func NewAdvanceRequest(deps *bot.Deps) ports.Conversation {
	return &advanceRequest{
		log:      deps.Log.With().Str("component", "advance_request").Logger(),
		drivers:  deps.Drivers,
		sessions: deps.Sessions,
		requests: deps.Requests,
		bot:      deps.Bot,
		bus:      deps.Bus,
	}
}

func (c *advanceRequest) Kind() domain.SessionKind {
	return domain.KindAdvanceRequest
}

func (c *advanceRequest) HandleText(ctx context.Context, update *ports.BotUpdate, session *domain.Session) error {
	data, ok := session.Data.(domain.AdvanceRequestData)
	if !ok {
		return abortCorrupted(ctx, c.bot, c.sessions, &c.log, update, domain.KindAdvanceRequest)
	}

	switch session.Step {
	case 1: // amount
		amount, err := strconv.ParseFloat(strings.TrimSpace(update.Text), 64)
		if err != nil || !validate.IsValidAmount(amount) {
			return reply(ctx, c.bot, update,
				fmt.Sprintf("❌ Please enter a valid amount between 1 and %d:", validate.MaxAdvanceAmount))
		}
		data.Amount = amount
		if _, err := c.sessions.Update(ctx, update.UserID, domain.KindAdvanceRequest, 2, data); err != nil {
			c.log.Error().Err(err).Msg("Failed to update advance request session")
			return reply(ctx, c.bot, update, "❌ Sorry, there was an error. Please try again.")
		}
		return reply(ctx, c.bot, update,
			"📝 Please provide a reason for the advance payment request (at least 10 characters):")

	case 2: // reason
		if len(strings.TrimSpace(update.Text)) < minReasonLength {
			return reply(ctx, c.bot, update,
				"❌ The reason is too short. Please describe why you need the advance (at least 10 characters):")
		}
		data.Reason = strings.TrimSpace(update.Text)

		driver, err := c.drivers.GetByTelegramID(ctx, update.UserID)
		if err != nil {
			c.log.Error().Err(err).Msg("Failed to load driver for advance request")
			return reply(ctx, c.bot, update, "❌ Sorry, there was an error. Please try again.")
		}
		if driver == nil {
			if err := c.sessions.Delete(ctx, update.UserID, domain.KindAdvanceRequest); err != nil {
				return err
			}
			return reply(ctx, c.bot, update, "❌ You are not registered as a driver.")
		}

		created, err := c.requests.CreateAdvance(ctx, &domain.AdvancePaymentRequest{
			DriverID: driver.ID,
			Amount:   data.Amount,
			Reason:   data.Reason,
		})
		if err != nil {
			c.log.Error().Err(err).Int64("driver_id", driver.ID).Msg("Failed to create advance request")
			return reply(ctx, c.bot, update, "❌ Sorry, there was an error. Please try again.")
		}

		if err := c.bus.Publish(ctx, ports.TopicRequestCreated, ports.RequestCreatedEvent{
			Driver:  driver,
			Summary: fmt.Sprintf("💰 Advance payment request #%d\nAmount: $%.2f\nReason: %s", created.ID, created.Amount, created.Reason),
		}); err != nil {
			c.log.Error().Err(err).Msg("Failed to publish request event")
		}

		if err := reply(ctx, c.bot, update,
			"✅ Your advance payment request has been submitted! HR will review it shortly."); err != nil {
			return err
		}
		return c.sessions.Delete(ctx, update.UserID, domain.KindAdvanceRequest)

	default:
		return abortCorrupted(ctx, c.bot, c.sessions, &c.log, update, domain.KindAdvanceRequest)
	}
}

// vacationRequest collects a start date, an end date and a reason.
type vacationRequest struct {
	log      zerolog.Logger
	drivers  ports.DriverRepository
	sessions ports.SessionRepository
	requests ports.RequestRepository
	bot      ports.BotClientPort
	bus      ports.EventBus
}

// NewVacationRequest creates the vacation conversation.
func NewVacationRequest(deps *bot.Deps) ports.Conversation {
	return &vacationRequest{
		log:      deps.Log.With().Str("component", "vacation_request").Logger(),
		drivers:  deps.Drivers,
		sessions: deps.Sessions,
		requests: deps.Requests,
		bot:      deps.Bot,
		bus:      deps.Bus,
	}
}

func (c *vacationRequest) Kind() domain.SessionKind {
	return domain.KindVacationRequest
}

func (c *vacationRequest) HandleText(ctx context.Context, update *ports.BotUpdate, session *domain.Session) error {
	data, ok := session.Data.(domain.VacationRequestData)
	if !ok {
		return abortCorrupted(ctx, c.bot, c.sessions, &c.log, update, domain.KindVacationRequest)
	}

	text := strings.TrimSpace(update.Text)

	switch session.Step {
	case 1: // start date
		if !validate.IsValidDateFormat(text) {
			return reply(ctx, c.bot, update, dateFormatHint)
		}
		if validate.IsDateExpired(text, time.Now()) {
			return reply(ctx, c.bot, update, "❌ The start date is in the past. Please enter a future date:")
		}
		data.StartDate = text
		if _, err := c.sessions.Update(ctx, update.UserID, domain.KindVacationRequest, 2, data); err != nil {
			c.log.Error().Err(err).Msg("Failed to update vacation request session")
			return reply(ctx, c.bot, update, "❌ Sorry, there was an error. Please try again.")
		}
		return reply(ctx, c.bot, update, "📅 Please enter your vacation end date (YYYY-MM-DD):")

	case 2: // end date
		if !validate.IsValidDateFormat(text) {
			return reply(ctx, c.bot, update, dateFormatHint)
		}
		if !validate.IsDateAfter(data.StartDate, text) {
			return reply(ctx, c.bot, update, "❌ The end date must be after the start date. Please try again:")
		}
		data.EndDate = text
		if _, err := c.sessions.Update(ctx, update.UserID, domain.KindVacationRequest, 3, data); err != nil {
			c.log.Error().Err(err).Msg("Failed to update vacation request session")
			return reply(ctx, c.bot, update, "❌ Sorry, there was an error. Please try again.")
		}
		return reply(ctx, c.bot, update, "📝 Please provide a reason for your vacation request:")

	case 3: // reason
		if text == "" {
			return reply(ctx, c.bot, update, "📝 Please provide a reason for your vacation request:")
		}
		data.Reason = text

		driver, err := c.drivers.GetByTelegramID(ctx, update.UserID)
		if err != nil {
			c.log.Error().Err(err).Msg("Failed to load driver for vacation request")
			return reply(ctx, c.bot, update, "❌ Sorry, there was an error. Please try again.")
		}
		if driver == nil {
			if err := c.sessions.Delete(ctx, update.UserID, domain.KindVacationRequest); err != nil {
				return err
			}
			return reply(ctx, c.bot, update, "❌ You are not registered as a driver.")
		}

		created, err := c.requests.CreateVacation(ctx, &domain.VacationRequest{
			DriverID:  driver.ID,
			StartDate: data.StartDate,
			EndDate:   data.EndDate,
			Reason:    data.Reason,
		})
		if err != nil {
			c.log.Error().Err(err).Int64("driver_id", driver.ID).Msg("Failed to create vacation request")
			return reply(ctx, c.bot, update, "❌ Sorry, there was an error. Please try again.")
		}

		if err := c.bus.Publish(ctx, ports.TopicRequestCreated, ports.RequestCreatedEvent{
			Driver:  driver,
			Summary: fmt.Sprintf("🏖️ Vacation request #%d\nFrom: %s\nTo: %s\nReason: %s", created.ID, created.StartDate, created.EndDate, created.Reason),
		}); err != nil {
			c.log.Error().Err(err).Msg("Failed to publish request event")
		}

		if err := reply(ctx, c.bot, update,
			"✅ Your vacation request has been submitted! HR will review it shortly."); err != nil {
			return err
		}
		return c.sessions.Delete(ctx, update.UserID, domain.KindVacationRequest)

	default:
		return abortCorrupted(ctx, c.bot, c.sessions, &c.log, update, domain.KindVacationRequest)
	}
}
