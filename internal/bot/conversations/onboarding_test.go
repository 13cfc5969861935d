package conversations

import (
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestOnboarding_FullNameAdvancesToPhone(t *testing.T) {
	ctx := context.Background()
	deps, m := newTestDeps()
	conv := NewOnboarding(deps)

	session := textSession(domain.KindOnboarding, stepFullName, domain.OnboardingData{})
	m.sessions.On("Update", mock.Anything, int64(100), domain.KindOnboarding, stepPhone,
		domain.OnboardingData{FullName: "John Smith"}).Return(session, nil).Once()
	m.bot.On("SendMessage", mock.Anything, sentText("📱 Please send me your phone number:")).Return(1, nil).Once()

	err := conv.HandleText(ctx, &ports.BotUpdate{ChatID: 100, UserID: 100, Text: "John Smith"}, session)

	assert.NoError(t, err)
	m.sessions.AssertExpectations(t)
	m.bot.AssertExpectations(t)
}

// A message stripped to empty text (a document or sticker at step one)
// must not be accepted as a name.
func TestOnboarding_EmptyFullNameHoldsStep(t *testing.T) {
	ctx := context.Background()
	deps, m := newTestDeps()
	conv := NewOnboarding(deps)

	session := textSession(domain.KindOnboarding, stepFullName, domain.OnboardingData{})
	m.bot.On("SendMessage", mock.Anything, sentText("❌ Please send me your full name (First Name Last Name):")).
		Return(1, nil).Times(2)

	for _, text := range []string{"", "   "} {
		err := conv.HandleText(ctx, &ports.BotUpdate{ChatID: 100, UserID: 100, Text: text}, session)
		assert.NoError(t, err)
	}

	m.bot.AssertExpectations(t)
	m.sessions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOnboarding_InvalidPhoneHoldsStep(t *testing.T) {
	ctx := context.Background()
	deps, m := newTestDeps()
	conv := NewOnboarding(deps)

	session := textSession(domain.KindOnboarding, stepPhone, domain.OnboardingData{FullName: "John Smith"})
	m.bot.On("SendMessage", mock.Anything, sentText("❌ Please enter a valid phone number:")).Return(1, nil).Once()

	err := conv.HandleText(ctx, &ports.BotUpdate{ChatID: 100, UserID: 100, Text: "call me maybe"}, session)

	assert.NoError(t, err)
	m.bot.AssertExpectations(t)
	m.sessions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOnboarding_ExpiredCDLDateHoldsStep(t *testing.T) {
	ctx := context.Background()
	deps, m := newTestDeps()
	conv := NewOnboarding(deps)

	session := textSession(domain.KindOnboarding, stepCDLExpiry, domain.OnboardingData{FullName: "John Smith"})

	m.bot.On("SendMessage", mock.Anything, sentText(dateFormatHint)).Return(1, nil).Once()
	err := conv.HandleText(ctx, &ports.BotUpdate{ChatID: 100, UserID: 100, Text: "12/31/2030"}, session)
	assert.NoError(t, err)

	m.bot.On("SendMessage", mock.Anything, sentText("❌ This CDL has expired. Please provide a valid, non-expired CDL:")).
		Return(1, nil).Once()
	err = conv.HandleText(ctx, &ports.BotUpdate{ChatID: 100, UserID: 100, Text: "2020-01-01"}, session)
	assert.NoError(t, err)

	m.bot.AssertExpectations(t)
	m.sessions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOnboarding_TextDuringPhotoStepReprompts(t *testing.T) {
	ctx := context.Background()
	deps, m := newTestDeps()
	conv := NewOnboarding(deps)

	session := textSession(domain.KindOnboarding, stepDriverPhoto, domain.OnboardingData{FullName: "John Smith"})
	m.bot.On("SendMessage", mock.Anything, sentText("Please follow the onboarding process step by step.")).Return(1, nil).Once()

	err := conv.HandleText(ctx, &ports.BotUpdate{ChatID: 100, UserID: 100, Text: "here is my photo"}, session)

	assert.NoError(t, err)
	m.bot.AssertExpectations(t)
}

func TestOnboarding_DriverPhotoUploadsAndAdvances(t *testing.T) {
	ctx := context.Background()
	deps, m := newTestDeps()
	conv := NewOnboarding(deps)

	session := textSession(domain.KindOnboarding, stepDriverPhoto, domain.OnboardingData{FullName: "John Smith"})
	photo := []byte{0xFF, 0xD8}

	m.bot.On("GetFileBytes", mock.Anything, "file-1").Return(photo, nil).Once()
	m.storage.On("Upload", mock.Anything, photo, "driver_photo.jpg", "image/jpeg").
		Return("https://cdn.example.com/drivers/abc-driver_photo.jpg", nil).Once()
	m.analyzer.On("Analyze", mock.Anything, "https://cdn.example.com/drivers/abc-driver_photo.jpg", ports.AnalyzeDriverPhoto).
		Return(&ports.AnalysisResult{Confidence: 0.9, IsValid: true}, nil).Once()
	m.sessions.On("Update", mock.Anything, int64(100), domain.KindOnboarding, stepCDLPhoto,
		mock.MatchedBy(func(d domain.SessionData) bool {
			data, ok := d.(domain.OnboardingData)
			return ok && data.DriverPhotoURL == "https://cdn.example.com/drivers/abc-driver_photo.jpg" &&
				len(data.AnalysisWarnings) == 0
		})).Return(session, nil).Once()
	m.bot.On("SendMessage", mock.Anything, sentText(
		"✅ Driver photo uploaded successfully!\n\nNow please send me a photo of your CDL (Commercial Driver License):",
	)).Return(1, nil).Once()

	err := conv.HandlePhoto(ctx, &ports.BotUpdate{
		ChatID: 100, UserID: 100,
		Photo: &ports.PhotoAttachment{FileID: "file-1", Width: 800, Height: 600},
	}, session)

	assert.NoError(t, err)
	m.storage.AssertExpectations(t)
	m.analyzer.AssertExpectations(t)
	m.sessions.AssertExpectations(t)
}

// A weak analyzer verdict never blocks the flow; it is carried forward
// as a warning for HR. Extracted document numbers are kept.
func TestOnboarding_CDLPhotoWithWeakAnalysisAdvancesWithWarning(t *testing.T) {
	ctx := context.Background()
	deps, m := newTestDeps()
	conv := NewOnboarding(deps)

	session := textSession(domain.KindOnboarding, stepCDLPhoto, domain.OnboardingData{FullName: "John Smith"})

	m.bot.On("GetFileBytes", mock.Anything, "file-2").Return([]byte{1}, nil).Once()
	m.storage.On("Upload", mock.Anything, mock.Anything, "cdl_photo.jpg", "image/jpeg").
		Return("https://cdn.example.com/drivers/abc-cdl_photo.jpg", nil).Once()
	m.analyzer.On("Analyze", mock.Anything, mock.Anything, ports.AnalyzeCDL).
		Return(&ports.AnalysisResult{
			Confidence:      0.3,
			IsValid:         false,
			ExtractedFields: map[string]string{"cdl_number": "D1234567"},
		}, nil).Once()
	m.sessions.On("Update", mock.Anything, int64(100), domain.KindOnboarding, stepCDLExpiry,
		mock.MatchedBy(func(d domain.SessionData) bool {
			data, ok := d.(domain.OnboardingData)
			return ok && data.CDLNumber == "D1234567" &&
				len(data.AnalysisWarnings) == 1 &&
				data.AnalysisWarnings[0] == "CDL photo failed automatic validation (confidence 0.30)"
		})).Return(session, nil).Once()
	m.bot.On("SendMessage", mock.Anything, mock.Anything).Return(1, nil).Once()

	err := conv.HandlePhoto(ctx, &ports.BotUpdate{
		ChatID: 100, UserID: 100,
		Photo: &ports.PhotoAttachment{FileID: "file-2", Width: 800, Height: 600},
	}, session)

	assert.NoError(t, err)
	m.sessions.AssertExpectations(t)
}

func TestOnboarding_FinalStepCreatesDriverAndEndsSession(t *testing.T) {
	ctx := context.Background()
	deps, m := newTestDeps()
	conv := NewOnboarding(deps)

	data := domain.OnboardingData{
		FullName:       "John Smith",
		PhoneNumber:    "+15551234567",
		CDLNumber:      "D1234567",
		CDLExpiryDate:  "2030-06-01",
		DriverPhotoURL: "https://cdn.example.com/drivers/a.jpg",
		CDLPhotoURL:    "https://cdn.example.com/drivers/b.jpg",
	}
	session := textSession(domain.KindOnboarding, stepDOTExpiry, data)

	created := &domain.Driver{ID: 7, TelegramID: 100, FullName: "John Smith", Status: domain.StatusPending, OnboardingCompleted: true}
	m.drivers.On("Create", mock.Anything, mock.MatchedBy(func(d *domain.Driver) bool {
		return d.TelegramID == 100 && d.FullName == "John Smith" &&
			d.Status == domain.StatusPending && d.OnboardingCompleted &&
			d.DOTMedicalExpiryDate != nil && *d.DOTMedicalExpiryDate == "2031-01-15"
	})).Return(created, nil).Once()
	m.bus.On("Publish", mock.Anything, ports.TopicDriverOnboarded, mock.MatchedBy(func(e ports.DriverOnboardedEvent) bool {
		return e.Driver.ID == 7
	})).Return(nil).Once()
	m.bot.On("SendMessage", mock.Anything, sentText("✅ All information collected! Processing your application...")).Return(1, nil).Once()
	m.bot.On("SendMessage", mock.Anything, mock.MatchedBy(func(p ports.SendMessageParams) bool {
		return p.Text == "🎉 Onboarding completed successfully!\n\n"+
			"Your application has been submitted and is under review by our HR team.\n"+
			"You will be notified once your status is updated.\n\n"+
			"Use /help to see available commands."
	})).Return(1, nil).Once()
	m.sessions.On("Delete", mock.Anything, int64(100), domain.KindOnboarding).Return(nil).Once()

	err := conv.HandleText(ctx, &ports.BotUpdate{ChatID: 100, UserID: 100, Text: "2031-01-15"}, session)

	assert.NoError(t, err)
	m.drivers.AssertExpectations(t)
	m.bus.AssertExpectations(t)
	m.sessions.AssertExpectations(t)
}

// A failed confirmation send must not keep the session alive: the next
// message would replay the final step and insert the driver a second
// time. The application is committed, so cleanup wins over the send.
func TestOnboarding_FailedConfirmationStillEndsSession(t *testing.T) {
	ctx := context.Background()
	deps, m := newTestDeps()
	conv := NewOnboarding(deps)

	data := domain.OnboardingData{
		FullName:      "John Smith",
		PhoneNumber:   "+15551234567",
		CDLExpiryDate: "2030-06-01",
	}
	session := textSession(domain.KindOnboarding, stepDOTExpiry, data)

	created := &domain.Driver{ID: 7, TelegramID: 100, FullName: "John Smith", Status: domain.StatusPending, OnboardingCompleted: true}
	m.drivers.On("Create", mock.Anything, mock.Anything).Return(created, nil).Once()
	m.bus.On("Publish", mock.Anything, ports.TopicDriverOnboarded, mock.Anything).Return(nil).Once()
	m.bot.On("SendMessage", mock.Anything, sentText("✅ All information collected! Processing your application...")).Return(1, nil).Once()
	m.sessions.On("Delete", mock.Anything, int64(100), domain.KindOnboarding).Return(nil).Once()
	m.bot.On("SendMessage", mock.Anything, mock.MatchedBy(func(p ports.SendMessageParams) bool {
		return strings.HasPrefix(p.Text, "🎉 Onboarding completed successfully!")
	})).Return(0, errors.New("telegram: bad gateway")).Once()

	err := conv.HandleText(ctx, &ports.BotUpdate{ChatID: 100, UserID: 100, Text: "2031-01-15"}, session)

	assert.Error(t, err)
	m.drivers.AssertExpectations(t)
	m.drivers.AssertNumberOfCalls(t, "Create", 1)
	m.sessions.AssertExpectations(t)
}

// Re-onboarding a known driver patches the existing record instead of
// creating a duplicate.
func TestOnboarding_FinalStepPatchesKnownDriver(t *testing.T) {
	ctx := context.Background()
	deps, m := newTestDeps()
	conv := NewOnboarding(deps)

	data := domain.OnboardingData{
		DriverID:      7,
		FullName:      "John Smith",
		PhoneNumber:   "+15551234567",
		CDLExpiryDate: "2030-06-01",
	}
	session := textSession(domain.KindOnboarding, stepDOTExpiry, data)

	updated := &domain.Driver{ID: 7, TelegramID: 100, FullName: "John Smith", Status: domain.StatusPending, OnboardingCompleted: true}
	m.drivers.On("Update", mock.Anything, int64(7), mock.MatchedBy(func(p domain.DriverPatch) bool {
		return p.FullName != nil && *p.FullName == "John Smith" &&
			p.Status != nil && *p.Status == domain.StatusPending &&
			p.OnboardingCompleted != nil && *p.OnboardingCompleted &&
			p.CDLNumber == nil // never typed, never extracted
	})).Return(updated, nil).Once()
	m.bus.On("Publish", mock.Anything, ports.TopicDriverOnboarded, mock.Anything).Return(nil).Once()
	m.bot.On("SendMessage", mock.Anything, mock.Anything).Return(1, nil).Times(2)
	m.sessions.On("Delete", mock.Anything, int64(100), domain.KindOnboarding).Return(nil).Once()

	err := conv.HandleText(ctx, &ports.BotUpdate{ChatID: 100, UserID: 100, Text: "2031-01-15"}, session)

	assert.NoError(t, err)
	m.drivers.AssertExpectations(t)
	m.drivers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.sessions.AssertExpectations(t)
}
