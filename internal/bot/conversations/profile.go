package conversations

import (
	"DriverHelper/internal/bot"
	"DriverHelper/internal/bot/messages"
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"DriverHelper/internal/shared/validate"
	"context"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	bot.RegisterPhotoConversation(NewProfileUpdate)
	bot.RegisterConversation(NewProfileUpdateDate)
}

// profileUpdate replaces one document photo on an existing driver
// profile, then chains into a profile_update_date session for the new
// expiry date.
type profileUpdate struct {
	log      zerolog.Logger
	drivers  ports.DriverRepository
	sessions ports.SessionRepository
	storage  ports.DocumentStorage
	bot      ports.BotClientPort
}

// NewProfileUpdate creates the document-photo update conversation.
func NewProfileUpdate(deps *bot.Deps) ports.PhotoConversation {
	return &profileUpdate{
		log:      deps.Log.With().Str("component", "profile_update").Logger(),
		drivers:  deps.Drivers,
		sessions: deps.Sessions,
		storage:  deps.Storage,
		bot:      deps.Bot,
	}
}

func (c *profileUpdate) Kind() domain.SessionKind {
	return domain.KindProfileUpdate
}

func (c *profileUpdate) HandlePhoto(ctx context.Context, update *ports.BotUpdate, session *domain.Session) error {
	data, ok := session.Data.(domain.ProfileUpdateData)
	if !ok || data.Document == "" {
		return abortCorrupted(ctx, c.bot, c.sessions, &c.log, update, domain.KindProfileUpdate)
	}

	driver, err := c.drivers.GetByTelegramID(ctx, update.UserID)
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to load driver for profile update")
		return reply(ctx, c.bot, update, "❌ Error updating your document. Please try again.")
	}
	if driver == nil {
		if err := c.sessions.Delete(ctx, update.UserID, domain.KindProfileUpdate); err != nil {
			return err
		}
		return reply(ctx, c.bot, update, "❌ You are not registered as a driver.")
	}

	var keyHint, confirmation string
	switch data.Document {
	case domain.DocumentDriverLicense:
		keyHint = "cdl_photo.jpg"
		confirmation = "✅ Your Driver License has been updated! Please enter the new expiration date (YYYY-MM-DD):"
	case domain.DocumentMedicalCard:
		keyHint = "dot_medical_photo.jpg"
		confirmation = "✅ Your Medical Card has been updated! Please enter the new expiration date (YYYY-MM-DD):"
	default:
		return abortCorrupted(ctx, c.bot, c.sessions, &c.log, update, domain.KindProfileUpdate)
	}

	photoBytes, err := c.bot.GetFileBytes(ctx, update.Photo.FileID)
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to download document photo")
		return reply(ctx, c.bot, update, "❌ Error updating your document. Please try again.")
	}
	url, err := c.storage.Upload(ctx, photoBytes, keyHint, "image/jpeg")
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to store document photo")
		return reply(ctx, c.bot, update, "❌ Error updating your document. Please try again.")
	}

	patch := domain.DriverPatch{}
	if data.Document == domain.DocumentDriverLicense {
		patch.CDLPhotoURL = &url
	} else {
		patch.DOTMedicalPhotoURL = &url
	}
	if _, err := c.drivers.Update(ctx, driver.ID, patch); err != nil {
		c.log.Error().Err(err).Int64("driver_id", driver.ID).Msg("Failed to update driver document")
		return reply(ctx, c.bot, update, "❌ Error updating your document. Please try again.")
	}

	// Chain into the expiry-date step
	if err := c.sessions.Delete(ctx, update.UserID, domain.KindProfileUpdateDate); err != nil {
		return err
	}
	if _, err := c.sessions.Create(ctx, update.UserID, domain.KindProfileUpdateDate, 1, domain.ProfileUpdateDateData{
		Document: data.Document,
	}); err != nil {
		c.log.Error().Err(err).Msg("Failed to create expiry date session")
		return reply(ctx, c.bot, update, "❌ Error updating your document. Please try again.")
	}

	// The document is replaced and the date step is open, so this
	// session ends now. Cleanup before the confirmation: a failed send
	// must not leave the upload replayable.
	if err := c.sessions.Delete(ctx, update.UserID, domain.KindProfileUpdate); err != nil {
		c.log.Error().Err(err).Int64("user_id", update.UserID).Msg("Failed to delete profile update session")
	}
	return reply(ctx, c.bot, update, confirmation)
}

// profileUpdateDate collects the new expiry date for the document just
// replaced and writes it to the profile.
type profileUpdateDate struct {
	log      zerolog.Logger
	drivers  ports.DriverRepository
	sessions ports.SessionRepository
	bot      ports.BotClientPort
}

// NewProfileUpdateDate creates the expiry-date conversation.
func NewProfileUpdateDate(deps *bot.Deps) ports.Conversation {
	return &profileUpdateDate{
		log:      deps.Log.With().Str("component", "profile_update_date").Logger(),
		drivers:  deps.Drivers,
		sessions: deps.Sessions,
		bot:      deps.Bot,
	}
}

func (c *profileUpdateDate) Kind() domain.SessionKind {
	return domain.KindProfileUpdateDate
}

func (c *profileUpdateDate) HandleText(ctx context.Context, update *ports.BotUpdate, session *domain.Session) error {
	data, ok := session.Data.(domain.ProfileUpdateDateData)
	if !ok || data.Document == "" {
		return abortCorrupted(ctx, c.bot, c.sessions, &c.log, update, domain.KindProfileUpdateDate)
	}

	if !validate.IsValidDateFormat(update.Text) {
		return reply(ctx, c.bot, update, dateFormatHint)
	}
	if validate.IsDateExpired(update.Text, time.Now()) {
		return reply(ctx, c.bot, update, "❌ This date is in the past. Please provide a valid, non-expired date:")
	}

	driver, err := c.drivers.GetByTelegramID(ctx, update.UserID)
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to load driver for expiry update")
		return reply(ctx, c.bot, update, "❌ Sorry, there was an error. Please try again.")
	}
	if driver == nil {
		if err := c.sessions.Delete(ctx, update.UserID, domain.KindProfileUpdateDate); err != nil {
			return err
		}
		return reply(ctx, c.bot, update, "❌ You are not registered as a driver.")
	}

	date := update.Text
	patch := domain.DriverPatch{}
	confirmation := "✅ Your Driver License expiration date has been updated!"
	if data.Document == domain.DocumentDriverLicense {
		patch.CDLExpiryDate = &date
	} else {
		patch.DOTMedicalExpiryDate = &date
		confirmation = "✅ Your Medical Card expiration date has been updated!"
	}

	updated, err := c.drivers.Update(ctx, driver.ID, patch)
	if err != nil || updated == nil {
		c.log.Error().Err(err).Int64("driver_id", driver.ID).Msg("Failed to update expiry date")
		return reply(ctx, c.bot, update, "❌ Sorry, there was an error. Please try again.")
	}

	// The date is written, end the session before confirming.
	if err := c.sessions.Delete(ctx, update.UserID, domain.KindProfileUpdateDate); err != nil {
		c.log.Error().Err(err).Int64("user_id", update.UserID).Msg("Failed to delete expiry date session")
	}
	if err := reply(ctx, c.bot, update, confirmation); err != nil {
		return err
	}

	_, err = c.bot.SendMessage(ctx, messages.MainMenu(update.ChatID, updated))
	return err
}
