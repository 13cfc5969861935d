package conversations

import (
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"context"

	"github.com/rs/zerolog"
)

// reply sends a plain text message to the update's chat.
func reply(ctx context.Context, botClient ports.BotClientPort, update *ports.BotUpdate, text string) error {
	_, err := botClient.SendMessage(ctx, ports.SendMessageParams{ChatID: update.ChatID, Text: text})
	return err
}

// abortCorrupted drops a session whose payload or step no longer makes
// sense and tells the user to start over. Keeping such a session would
// wedge the dispatcher on every following message.
func abortCorrupted(
	ctx context.Context,
	botClient ports.BotClientPort,
	sessions ports.SessionRepository,
	log *zerolog.Logger,
	update *ports.BotUpdate,
	kind domain.SessionKind,
) error {
	log.Error().Int64("user_id", update.UserID).Str("kind", string(kind)).Msg("Session holds unexpected payload, deleting")
	if err := sessions.Delete(ctx, update.UserID, kind); err != nil {
		return err
	}
	return reply(ctx, botClient, update, "❌ Your session is no longer valid. Please start again.")
}
