package conversations

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
	bot.RegisterConversation(NewHRMessage)
	bot.RegisterConversation(NewDriverReply)
}

// hrMessage relays one HR text to the targeted driver and flips the
// driver into reply mode. The session ends after a single relay.
type hrMessage struct {
	log         zerolog.Logger
	hrChannelID int64
	drivers     ports.DriverRepository
	sessions    ports.SessionRepository
	bot         ports.BotClientPort
}

// NewHRMessage creates the HR-to-driver relay conversation.
func NewHRMessage(deps *bot.Deps) ports.Conversation {
	return &hrMessage{
		log:         deps.Log.With().Str("component", "hr_message").Logger(),
		hrChannelID: deps.Cfg.Bot.HRChannelID,
		drivers:     deps.Drivers,
		sessions:    deps.Sessions,
		bot:         deps.Bot,
	}
}

func (c *hrMessage) Kind() domain.SessionKind {
	return domain.KindHRMessage
}

func (c *hrMessage) HandleText(ctx context.Context, update *ports.BotUpdate, session *domain.Session) error {
	data, ok := session.Data.(domain.HRMessageData)
	if !ok || data.TargetDriverID == 0 {
		return abortCorrupted(ctx, c.bot, c.sessions, &c.log, update, domain.KindHRMessage)
	}

	driver, err := c.drivers.GetByID(ctx, data.TargetDriverID)
	if err != nil {
		c.log.Error().Err(err).Int64("driver_id", data.TargetDriverID).Msg("Failed to load relay target")
		return reply(ctx, c.bot, update, "❌ Error sending message. Please try again.")
	}
	if driver == nil {
		if err := c.sessions.Delete(ctx, update.UserID, domain.KindHRMessage); err != nil {
			return err
		}
		return reply(ctx, c.bot, update, "❌ Driver not found.")
	}

	// Deliver to the driver's chat
	_, err = c.bot.SendMessage(ctx, ports.SendMessageParams{
		ChatID: driver.TelegramID,
		Text: fmt.Sprintf(
			"📨 Message from HR\n\n%s\n\nTo reply, just send a message here.\nTo cancel reply mode, type /cancel",
			update.Text,
		),
	})
	if err != nil {
		c.log.Error().Err(err).Int64("driver_id", driver.ID).Msg("Failed to deliver HR message")
		return reply(ctx, c.bot, update, "❌ Error sending message. Please try again.")
	}

	// Open reply mode for the driver so their next text comes back
	if err := c.sessions.Delete(ctx, driver.TelegramID, domain.KindDriverReply); err != nil {
		return err
	}
	if _, err := c.sessions.Create(ctx, driver.TelegramID, domain.KindDriverReply, 1, domain.DriverReplyData{
		ChannelID: c.hrChannelID,
		HRUserID:  update.UserID,
	}); err != nil {
		c.log.Error().Err(err).Int64("driver_id", driver.ID).Msg("Failed to open driver reply session")
	}

	// The message is delivered, so the session ends now. Cleanup before
	// the confirmation: a failed send must not cause a second delivery.
	if err := c.sessions.Delete(ctx, update.UserID, domain.KindHRMessage); err != nil {
		c.log.Error().Err(err).Int64("user_id", update.UserID).Msg("Failed to delete hr message session")
	}

	return reply(ctx, c.bot, update, fmt.Sprintf(
		"✅ Message sent to %s!\n\nThe driver can now reply directly to you.",
		data.TargetDriverName,
	))
}

// driverReply relays one driver text to the destination channel with a
// reply-to-driver button carrying the driver's storage id.
type driverReply struct {
	log      zerolog.Logger
	drivers  ports.DriverRepository
	sessions ports.SessionRepository
	bot      ports.BotClientPort
}

// NewDriverReply creates the driver-to-channel relay conversation.
func NewDriverReply(deps *bot.Deps) ports.Conversation {
	return &driverReply{
		log:      deps.Log.With().Str("component", "driver_reply").Logger(),
		drivers:  deps.Drivers,
		sessions: deps.Sessions,
		bot:      deps.Bot,
	}
}

func (c *driverReply) Kind() domain.SessionKind {
	return domain.KindDriverReply
}

func (c *driverReply) HandleText(ctx context.Context, update *ports.BotUpdate, session *domain.Session) error {
	data, ok := session.Data.(domain.DriverReplyData)
	if !ok || data.ChannelID == 0 {
		return abortCorrupted(ctx, c.bot, c.sessions, &c.log, update, domain.KindDriverReply)
	}

	driver, err := c.drivers.GetByTelegramID(ctx, update.UserID)
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to load driver for reply relay")
		return reply(ctx, c.bot, update, "❌ Error sending reply. Please try again.")
	}
	if driver == nil {
		if err := c.sessions.Delete(ctx, update.UserID, domain.KindDriverReply); err != nil {
			return err
		}
		return reply(ctx, c.bot, update, "❌ You are not registered as a driver.")
	}

	msg := messages.NewBuilder(data.ChannelID).
		WithText(fmt.Sprintf("💬 Reply from %s\n\n%s", driver.FullName, update.Text)).
		WithInlineButtons([][]ports.Button{{
			{Text: fmt.Sprintf("Response %s", driver.FullName), Data: fmt.Sprintf("reply_driver_%d", driver.ID)},
		}}).
		Build()
	if _, err := c.bot.SendMessage(ctx, msg); err != nil {
		c.log.Error().Err(err).Int64("channel_id", data.ChannelID).Msg("Failed to deliver driver reply")
		return reply(ctx, c.bot, update, "❌ Error sending reply. Please try again.")
	}

	// Same ordering as the HR side: the relay is out, end the session
	// before confirming.
	if err := c.sessions.Delete(ctx, update.UserID, domain.KindDriverReply); err != nil {
		c.log.Error().Err(err).Int64("user_id", update.UserID).Msg("Failed to delete driver reply session")
	}

	return reply(ctx, c.bot, update, "✅ Your reply has been sent to HR!")
}
