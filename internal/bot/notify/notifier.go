package notify

import (
	"DriverHelper/internal/bot/messages"
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Notifier listens for internal events (from the EventBus) and pushes
// messages to the HR channel and driver chats. It is NOT a registered
// router handler; it's a system component.
type Notifier struct {
	log         zerolog.Logger
	hrChannelID int64
	bot         ports.BotClientPort
}

// NewNotifier creates the fan-out component.
func NewNotifier(hrChannelID int64, botClient ports.BotClientPort, baseLogger *zerolog.Logger) *Notifier {
	return &Notifier{
		log:         baseLogger.With().Str("component", "notifier").Logger(),
		hrChannelID: hrChannelID,
		bot:         botClient,
	}
}

// Register subscribes every notification to its topic.
func (n *Notifier) Register(bus ports.EventBus) {
	bus.Subscribe(ports.TopicDriverOnboarded, n.HandleDriverOnboarded)
	bus.Subscribe(ports.TopicDriverApproved, n.HandleDriverDecision)
	bus.Subscribe(ports.TopicDriverRejected, n.HandleDriverDecision)
	bus.Subscribe(ports.TopicRequestCreated, n.HandleRequestCreated)
}

// HandleDriverOnboarded posts the new application to the HR channel
// with the decision shortcuts and inline buttons.
func (n *Notifier) HandleDriverOnboarded(ctx context.Context, event ports.Event) error {
	payload, ok := event.Data.(ports.DriverOnboardedEvent)
	if !ok {
		n.log.Error().Str("topic", event.Topic).Msg("Received invalid data for onboarded event")
		return nil // Don't retry
	}
	driver := payload.Driver

	log := n.log.With().Int64("driver_id", driver.ID).Logger()
	log.Info().Msg("Announcing new application to HR channel")

	var sb strings.Builder
	fmt.Fprintf(&sb, "🚛 New Driver Onboarding Request\n\n")
	fmt.Fprintf(&sb, "👤 Driver: %s\n", driver.FullName)
	fmt.Fprintf(&sb, "📱 Phone: %s\n", driver.PhoneNumber)
	fmt.Fprintf(&sb, "📅 CDL Expiry: %s\n", deref(driver.CDLExpiryDate))
	fmt.Fprintf(&sb, "📅 DOT Medical Expiry: %s\n\n", deref(driver.DOTMedicalExpiryDate))
	fmt.Fprintf(&sb, "📸 Driver Photo: %s\n", driver.DriverPhotoURL)
	fmt.Fprintf(&sb, "📄 CDL Photo: %s\n", driver.CDLPhotoURL)
	fmt.Fprintf(&sb, "🏥 DOT Medical Photo: %s\n", driver.DOTMedicalPhotoURL)

	if len(payload.AnalysisWarnings) > 0 {
		sb.WriteString("\n⚠️ Document analysis warnings:\n")
		for _, w := range payload.AnalysisWarnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
	}

	fmt.Fprintf(&sb, "\nTo approve: /approve %d\nTo reject: /reject %d\nTo message: /message %d", driver.ID, driver.ID, driver.ID)

	msg := messages.NewBuilder(n.hrChannelID).
		WithText(sb.String()).
		WithInlineButtons([][]ports.Button{{
			{Text: "✅ Approve", Data: fmt.Sprintf("approve_%d", driver.ID)},
			{Text: "❌ Reject", Data: fmt.Sprintf("reject_%d", driver.ID)},
			{Text: "💬 Message", Data: fmt.Sprintf("message_%d", driver.ID)},
		}}).
		Build()

	if _, err := n.bot.SendMessage(ctx, msg); err != nil {
		log.Error().Err(err).Msg("Failed to announce application")
		return err
	}
	return nil
}

// HandleDriverDecision tells the driver the outcome of their
// application. Both decision topics carry the fresh driver state.
func (n *Notifier) HandleDriverDecision(ctx context.Context, event ports.Event) error {
	driver, ok := event.Data.(*domain.Driver)
	if !ok {
		n.log.Error().Str("topic", event.Topic).Msg("Received invalid data for decision event")
		return nil // Don't retry
	}

	approved := event.Topic == ports.TopicDriverApproved
	outcome := "rejected"
	followUp := "Please contact HR for more information."
	if approved {
		outcome = "approved"
		followUp = "You can now use all bot features."
	}

	log := n.log.With().Int64("driver_id", driver.ID).Str("outcome", outcome).Logger()
	log.Info().Msg("Sending decision notification to driver")

	text := fmt.Sprintf(
		"🎉 Your driver application has been %s!\n\nStatus: %s\n\n%s",
		outcome, strings.ToUpper(string(driver.Status)), followUp,
	)
	if _, err := n.bot.SendMessage(ctx, ports.SendMessageParams{ChatID: driver.TelegramID, Text: text}); err != nil {
		log.Error().Err(err).Msg("Failed to send decision notification")
		return err
	}
	return nil
}

// HandleRequestCreated posts a new advance/vacation request to the HR
// channel.
func (n *Notifier) HandleRequestCreated(ctx context.Context, event ports.Event) error {
	payload, ok := event.Data.(ports.RequestCreatedEvent)
	if !ok {
		n.log.Error().Str("topic", event.Topic).Msg("Received invalid data for request event")
		return nil // Don't retry
	}

	text := fmt.Sprintf("📨 New request from %s\n\n%s", payload.Driver.FullName, payload.Summary)
	if _, err := n.bot.SendMessage(ctx, ports.SendMessageParams{ChatID: n.hrChannelID, Text: text}); err != nil {
		n.log.Error().Err(err).Int64("driver_id", payload.Driver.ID).Msg("Failed to announce request")
		return err
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
