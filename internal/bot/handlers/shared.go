package handlers

import (
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// sendError sends the generic apology. Used when a collaborator failed
// and the user can simply retry.
func sendError(ctx context.Context, botClient ports.BotClientPort, chatID int64) error {
	_, err := botClient.SendMessage(ctx, ports.SendMessageParams{
		ChatID: chatID,
		Text:   "❌ Sorry, there was an error. Please try again.",
	})
	return err
}

// hrMessenger opens an hr_message session targeting one driver. The
// /message command, the per-driver Message button and the
// reply-to-driver button all converge here.
type hrMessenger struct {
	log      zerolog.Logger
	drivers  ports.DriverRepository
	sessions ports.SessionRepository
	bot      ports.BotClientPort
}

// start resolves the driver and puts the HR actor into message mode.
// Returns (nil, nil) when the driver id is unknown.
func (m *hrMessenger) start(ctx context.Context, hrUserID, chatID, driverID int64) (*domain.Driver, error) {
	driver, err := m.drivers.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, nil
	}

	// Replace any stale message-mode session before opening a new one.
	if err := m.sessions.Delete(ctx, hrUserID, domain.KindHRMessage); err != nil {
		return nil, err
	}
	_, err = m.sessions.Create(ctx, hrUserID, domain.KindHRMessage, 1, domain.HRMessageData{
		TargetDriverID:   driver.ID,
		TargetDriverName: driver.FullName,
	})
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf(
		"💬 Message to %s\n\nType your message below. The driver will receive it immediately.\n\nTo cancel, type /cancel",
		driver.FullName,
	)
	if _, err := m.bot.SendMessage(ctx, ports.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		return nil, err
	}
	return driver, nil
}

// driverMessenger opens a driver_reply session addressed to the HR or
// support channel. Used by the Message HR / Contact Support buttons.
type driverMessenger struct {
	log              zerolog.Logger
	hrChannelID      int64
	supportChannelID int64
	drivers          ports.DriverRepository
	sessions         ports.SessionRepository
	bot              ports.BotClientPort
}

// start puts a registered driver into reply mode towards the given
// department ("hr" or "support"). Returns false when the user is not a
// registered driver.
func (m *driverMessenger) start(ctx context.Context, update *ports.BotUpdate, department string) (bool, error) {
	driver, err := m.drivers.GetByTelegramID(ctx, update.UserID)
	if err != nil {
		return false, err
	}
	if driver == nil {
		return false, nil
	}

	channelID := m.hrChannelID
	deptName := "HR"
	if department == "support" {
		channelID = m.supportChannelID
		deptName = "Support"
	}

	if err := m.sessions.Delete(ctx, update.UserID, domain.KindDriverReply); err != nil {
		return false, err
	}
	_, err = m.sessions.Create(ctx, update.UserID, domain.KindDriverReply, 1, domain.DriverReplyData{
		ChannelID: channelID,
	})
	if err != nil {
		return false, err
	}

	text := fmt.Sprintf(
		"💬 Message to %s\n\nType your message below. %s will receive it immediately.\n\nTo cancel, type /cancel",
		deptName, deptName,
	)
	if _, err := m.bot.SendMessage(ctx, ports.SendMessageParams{ChatID: update.ChatID, Text: text}); err != nil {
		return false, err
	}
	return true, nil
}

// requestStarter gates and opens the advance / vacation request
// conversations. Commands, keyboard phrases and menu callbacks share it.
type requestStarter struct {
	log      zerolog.Logger
	drivers  ports.DriverRepository
	sessions ports.SessionRepository
	bot      ports.BotClientPort
}

const notActiveText = "❌ You are not registered or not active. Please contact HR."

// start opens a request session of the given kind for an active driver
// and sends the opening prompt. Ineligible users get guidance and no
// session.
func (s *requestStarter) start(ctx context.Context, update *ports.BotUpdate, kind domain.SessionKind) error {
	driver, err := s.drivers.GetByTelegramID(ctx, update.UserID)
	if err != nil {
		return err
	}
	if driver == nil || driver.Status != domain.StatusActive {
		_, err := s.bot.SendMessage(ctx, ports.SendMessageParams{ChatID: update.ChatID, Text: notActiveText})
		return err
	}

	if err := s.sessions.Delete(ctx, update.UserID, kind); err != nil {
		return err
	}

	var data domain.SessionData
	var prompt string
	switch kind {
	case domain.KindAdvanceRequest:
		data = domain.AdvanceRequestData{}
		prompt = "💰 Advance Payment Request\n\nPlease enter the amount you need:"
	case domain.KindVacationRequest:
		data = domain.VacationRequestData{}
		prompt = "🏖️ Vacation Request\n\nPlease enter your vacation start date (YYYY-MM-DD):"
	default:
		return fmt.Errorf("unsupported request kind %q", kind)
	}

	if _, err := s.sessions.Create(ctx, update.UserID, kind, 1, data); err != nil {
		return err
	}
	_, err = s.bot.SendMessage(ctx, ports.SendMessageParams{ChatID: update.ChatID, Text: prompt})
	return err
}
