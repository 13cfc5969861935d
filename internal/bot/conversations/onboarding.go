package conversations

import (
	"DriverHelper/internal/bot"
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"DriverHelper/internal/shared/validate"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	bot.RegisterConversation(func(deps *bot.Deps) ports.Conversation { return NewOnboarding(deps) })
	bot.RegisterPhotoConversation(func(deps *bot.Deps) ports.PhotoConversation { return NewOnboarding(deps) })
}

// Onboarding steps. Text steps collect a field and advance; photo steps
// upload a document, run it through the analyzer and advance.
const (
	stepFullName    = 1
	stepPhone       = 2
	stepDriverPhoto = 3
	stepCDLPhoto    = 4
	stepCDLExpiry   = 5
	stepDOTPhoto    = 6
	stepDOTExpiry   = 7
)

const dateFormatHint = "❌ Please enter the date in YYYY-MM-DD format (e.g., 2025-12-31):"

// onboarding walks a new driver through the seven-step registration
// flow and submits the application at the end.
type onboarding struct {
	log      zerolog.Logger
	drivers  ports.DriverRepository
	sessions ports.SessionRepository
	storage  ports.DocumentStorage
	analyzer ports.DocumentAnalyzer
	bot      ports.BotClientPort
	bus      ports.EventBus
}

// NewOnboarding creates the onboarding conversation. One instance
// serves both the text and the photo dispatch lists.
func NewOnboarding(deps *bot.Deps) *onboarding {
	return &onboarding{
		log:      deps.Log.With().Str("component", "onboarding").Logger(),
		drivers:  deps.Drivers,
		sessions: deps.Sessions,
		storage:  deps.Storage,
		analyzer: deps.Analyzer,
		bot:      deps.Bot,
		bus:      deps.Bus,
	}
}

func (c *onboarding) Kind() domain.SessionKind {
	return domain.KindOnboarding
}

// HandleText processes the text steps of the flow. Invalid input holds
// the step and re-prompts.
func (c *onboarding) HandleText(ctx context.Context, update *ports.BotUpdate, session *domain.Session) error {
	data, ok := session.Data.(domain.OnboardingData)
	if !ok {
		return c.abortCorrupted(ctx, update)
	}

	switch session.Step {
	case stepFullName:
		name := strings.TrimSpace(update.Text)
		if name == "" {
			return c.reply(ctx, update, "❌ Please send me your full name (First Name Last Name):")
		}
		data.FullName = name
		return c.advance(ctx, update, stepPhone, data,
			"📱 Please send me your phone number:")

	case stepPhone:
		if !validate.IsValidPhoneNumber(update.Text) {
			return c.reply(ctx, update, "❌ Please enter a valid phone number:")
		}
		data.PhoneNumber = update.Text
		return c.advance(ctx, update, stepDriverPhoto, data,
			"📸 Please send me a clear photo of yourself for identification purposes:")

	case stepCDLExpiry:
		if !validate.IsValidDateFormat(update.Text) {
			return c.reply(ctx, update, dateFormatHint)
		}
		if validate.IsDateExpired(update.Text, time.Now()) {
			return c.reply(ctx, update, "❌ This CDL has expired. Please provide a valid, non-expired CDL:")
		}
		data.CDLExpiryDate = update.Text
		return c.advance(ctx, update, stepDOTPhoto, data,
			"Now please send me a photo of your DOT Medical Certificate:")

	case stepDOTExpiry:
		if !validate.IsValidDateFormat(update.Text) {
			return c.reply(ctx, update, dateFormatHint)
		}
		if validate.IsDateExpired(update.Text, time.Now()) {
			return c.reply(ctx, update, "❌ This DOT Medical Certificate has expired. Please provide a valid, non-expired certificate:")
		}
		data.DOTMedicalExpiryDate = update.Text
		if err := c.reply(ctx, update, "✅ All information collected! Processing your application..."); err != nil {
			return err
		}
		return c.complete(ctx, update, data)

	default:
		// A text message while we expect a photo
		return c.reply(ctx, update, "Please follow the onboarding process step by step.")
	}
}

// HandlePhoto processes the document upload steps.
func (c *onboarding) HandlePhoto(ctx context.Context, update *ports.BotUpdate, session *domain.Session) error {
	data, ok := session.Data.(domain.OnboardingData)
	if !ok {
		return c.abortCorrupted(ctx, update)
	}

	var (
		docType  string
		keyHint  string
		nextStep int
		ackText  string
	)
	switch session.Step {
	case stepDriverPhoto:
		docType, keyHint, nextStep = ports.AnalyzeDriverPhoto, "driver_photo.jpg", stepCDLPhoto
		ackText = "✅ Driver photo uploaded successfully!\n\n" +
			"Now please send me a photo of your CDL (Commercial Driver License):"
	case stepCDLPhoto:
		docType, keyHint, nextStep = ports.AnalyzeCDL, "cdl_photo.jpg", stepCDLExpiry
		ackText = "✅ CDL photo uploaded successfully!\n\n" +
			"📅 Please send me your CDL expiry date (YYYY-MM-DD format):"
	case stepDOTPhoto:
		docType, keyHint, nextStep = ports.AnalyzeDOTMedical, "dot_medical_photo.jpg", stepDOTExpiry
		ackText = "✅ DOT Medical Certificate photo uploaded successfully!\n\n" +
			"📅 Please send me your DOT Medical Certificate expiry date (YYYY-MM-DD format):"
	default:
		return c.reply(ctx, update, "Please send a photo when requested during the onboarding process.")
	}

	url, err := c.uploadPhoto(ctx, update.Photo.FileID, keyHint)
	if err != nil {
		c.log.Error().Err(err).Int("step", session.Step).Msg("Failed to store onboarding photo")
		return c.reply(ctx, update, "❌ Error uploading photo. Please try again.")
	}

	switch session.Step {
	case stepDriverPhoto:
		data.DriverPhotoURL = url
	case stepCDLPhoto:
		data.CDLPhotoURL = url
	case stepDOTPhoto:
		data.DOTMedicalPhotoURL = url
	}

	c.analyzeDocument(ctx, url, docType, &data)

	return c.advance(ctx, update, nextStep, data, ackText)
}

// analyzeDocument records the analyzer's verdict. Analysis never blocks
// the flow: failures are logged, weak verdicts become HR warnings, and
// extracted document numbers are kept when the driver never typed them.
func (c *onboarding) analyzeDocument(ctx context.Context, url, docType string, data *domain.OnboardingData) {
	result, err := c.analyzer.Analyze(ctx, url, docType)
	if err != nil {
		c.log.Warn().Err(err).Str("type", docType).Msg("Document analysis failed, continuing without it")
		return
	}

	if !result.IsValid || result.Confidence < 0.5 {
		label := map[string]string{
			ports.AnalyzeDriverPhoto: "Driver photo",
			ports.AnalyzeCDL:         "CDL photo",
			ports.AnalyzeDOTMedical:  "DOT Medical Certificate photo",
		}[docType]
		data.AnalysisWarnings = append(data.AnalysisWarnings,
			fmt.Sprintf("%s failed automatic validation (confidence %.2f)", label, result.Confidence))
	}

	switch docType {
	case ports.AnalyzeCDL:
		if n := result.ExtractedFields["cdl_number"]; n != "" {
			data.CDLNumber = n
		}
	case ports.AnalyzeDOTMedical:
		if n := result.ExtractedFields["certificate_number"]; n != "" {
			data.DOTMedicalCertificate = n
		}
	}
}

// complete upserts the driver record, announces the application and
// ends the session.
func (c *onboarding) complete(ctx context.Context, update *ports.BotUpdate, data domain.OnboardingData) error {
	completed := true
	status := domain.StatusPending

	var driver *domain.Driver
	var err error
	if data.DriverID != 0 {
		patch := domain.DriverPatch{
			FullName:             &data.FullName,
			PhoneNumber:          &data.PhoneNumber,
			CDLExpiryDate:        &data.CDLExpiryDate,
			DOTMedicalExpiryDate: &data.DOTMedicalExpiryDate,
			DriverPhotoURL:       &data.DriverPhotoURL,
			CDLPhotoURL:          &data.CDLPhotoURL,
			DOTMedicalPhotoURL:   &data.DOTMedicalPhotoURL,
			Status:               &status,
			OnboardingCompleted:  &completed,
		}
		if data.CDLNumber != "" {
			patch.CDLNumber = &data.CDLNumber
		}
		if data.DOTMedicalCertificate != "" {
			patch.DOTMedicalCertificate = &data.DOTMedicalCertificate
		}
		driver, err = c.drivers.Update(ctx, data.DriverID, patch)
	} else {
		cdlExpiry := data.CDLExpiryDate
		dotExpiry := data.DOTMedicalExpiryDate
		driver, err = c.drivers.Create(ctx, &domain.Driver{
			TelegramID:            update.UserID,
			FullName:              data.FullName,
			PhoneNumber:           data.PhoneNumber,
			CDLNumber:             data.CDLNumber,
			CDLExpiryDate:         &cdlExpiry,
			DOTMedicalCertificate: data.DOTMedicalCertificate,
			DOTMedicalExpiryDate:  &dotExpiry,
			DriverPhotoURL:        data.DriverPhotoURL,
			CDLPhotoURL:           data.CDLPhotoURL,
			DOTMedicalPhotoURL:    data.DOTMedicalPhotoURL,
			Status:                status,
			OnboardingCompleted:   completed,
		})
	}
	if err != nil || driver == nil {
		c.log.Error().Err(err).Int64("driver_id", data.DriverID).Msg("Failed to persist application")
		return c.reply(ctx, update, "❌ Error completing onboarding. Please contact support.")
	}

	if err := c.bus.Publish(ctx, ports.TopicDriverOnboarded, ports.DriverOnboardedEvent{
		Driver:           driver,
		AnalysisWarnings: data.AnalysisWarnings,
	}); err != nil {
		c.log.Error().Err(err).Int64("driver_id", driver.ID).Msg("Failed to publish onboarded event")
	}

	// The application is committed, so the session ends now. Cleanup
	// before the confirmation: a failed send must not leave this step
	// replayable.
	if err := c.sessions.Delete(ctx, update.UserID, domain.KindOnboarding); err != nil {
		c.log.Error().Err(err).Int64("user_id", update.UserID).Msg("Failed to delete onboarding session")
	}

	return c.reply(ctx, update,
		"🎉 Onboarding completed successfully!\n\n"+
			"Your application has been submitted and is under review by our HR team.\n"+
			"You will be notified once your status is updated.\n\n"+
			"Use /help to see available commands.")
}

// --- Small helpers shared by the step handlers ---

func (c *onboarding) uploadPhoto(ctx context.Context, fileID, keyHint string) (string, error) {
	photoBytes, err := c.bot.GetFileBytes(ctx, fileID)
	if err != nil {
		return "", err
	}
	return c.storage.Upload(ctx, photoBytes, keyHint, "image/jpeg")
}

func (c *onboarding) reply(ctx context.Context, update *ports.BotUpdate, text string) error {
	_, err := c.bot.SendMessage(ctx, ports.SendMessageParams{ChatID: update.ChatID, Text: text})
	return err
}

// advance commits the new step/data pair, then prompts for the next input.
func (c *onboarding) advance(ctx context.Context, update *ports.BotUpdate, step int, data domain.OnboardingData, prompt string) error {
	if _, err := c.sessions.Update(ctx, update.UserID, domain.KindOnboarding, step, data); err != nil {
		c.log.Error().Err(err).Int("step", step).Msg("Failed to update onboarding session")
		return c.reply(ctx, update, "❌ Sorry, there was an error. Please try again.")
	}
	return c.reply(ctx, update, prompt)
}

// abortCorrupted handles an undecodable session payload: tell the user
// and drop the session so the flow can be restarted cleanly.
func (c *onboarding) abortCorrupted(ctx context.Context, update *ports.BotUpdate) error {
	c.log.Error().Int64("user_id", update.UserID).Msg("Onboarding session holds unexpected payload, deleting")
	if err := c.sessions.Delete(ctx, update.UserID, domain.KindOnboarding); err != nil {
		return err
	}
	return c.reply(ctx, update, "❌ Your onboarding session is no longer valid. Please use /start to begin again.")
}
