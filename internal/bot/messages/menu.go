package messages

import (
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"fmt"
	"strings"
)

// Reply-keyboard phrases. The router matches incoming text against
// these verbatim, so the keyboard builders and the phrase handlers must
// share one set of constants.
const (
	PhraseRequestAdvance  = "💰 Request Advance Payment"
	PhraseRequestVacation = "🏖️ Request Vacation"
	PhraseMessageHR       = "💬 Message HR"
	PhraseContactSupport  = "🆘 Contact Support"
	PhraseViewStatus      = "📊 View Status"
	PhraseHelp            = "❓ Help"
	PhraseUpdateProfile   = "📝 Update Profile"
	PhraseDriverLicense   = "🚗 Driver License"
	PhraseMedicalCard     = "🏥 Medical Card"
	PhraseBackToMenu      = "⬅️ Back to Menu"
)

// MainMenu builds the status-dependent main menu. Active drivers see
// the full keyboard; everyone else gets the reduced one.
func MainMenu(chatID int64, driver *domain.Driver) ports.SendMessageParams {
	buttons := []string{PhraseMessageHR, PhraseViewStatus, PhraseUpdateProfile}
	if driver.Status == domain.StatusActive {
		buttons = []string{
			PhraseRequestAdvance, PhraseRequestVacation,
			PhraseMessageHR, PhraseContactSupport,
			PhraseViewStatus, PhraseHelp,
			PhraseUpdateProfile,
		}
	}

	text := fmt.Sprintf(
		"🚛 Welcome back, %s!\n\nStatus: %s\n\nWhat would you like to do?",
		driver.FullName, strings.ToUpper(string(driver.Status)),
	)

	return NewBuilder(chatID).WithText(text).WithReplyButtons(buttons, 2).Build()
}

// UpdateProfileMenu is the sub-menu shown by the Update Profile button.
func UpdateProfileMenu(chatID int64) ports.SendMessageParams {
	return NewBuilder(chatID).
		WithText("What would you like to update?").
		WithReplyButtons([]string{PhraseDriverLicense, PhraseMedicalCard, PhraseBackToMenu}, 2).
		Build()
}

// StatusSummary renders the /status reply for a registered driver.
func StatusSummary(driver *domain.Driver) string {
	onboarding := "❌ Incomplete"
	if driver.OnboardingCompleted {
		onboarding = "✅ Complete"
	}
	return fmt.Sprintf(
		"📊 Your Status\n\nStatus: %s %s\nName: %s\nOnboarding: %s",
		driver.Status.StatusEmoji(), strings.ToUpper(string(driver.Status)),
		driver.FullName, onboarding,
	)
}

// HelpText renders the command list, which differs between the HR
// channel and a driver chat.
func HelpText(isHR bool) string {
	if isHR {
		return "🚛 Driver Helper Bot - HR Commands\n\n" +
			"Available commands:\n" +
			"/list_drivers - List all drivers\n" +
			"/pending_requests - List pending driver requests\n" +
			"/message [driver_id] - Send message to specific driver\n" +
			"/approve [driver_id] - Approve driver application\n" +
			"/reject [driver_id] - Reject driver application\n" +
			"/help - Show this help message"
	}
	return "🚛 Driver Helper Bot\n\n" +
		"Available commands:\n" +
		"/start - Start onboarding or show main menu\n" +
		"/request_advance - Request advance payment\n" +
		"/request_vacation - Request vacation\n" +
		"/status - Check your status\n" +
		"/help - Show this help message\n\n" +
		"You can also use the buttons in the main menu for quick access!"
}
