package ports

import (
	"DriverHelper/internal/core/domain"
	"context"
)

// --- Bot Message Structures ---

// Button represents a single button in a keyboard.
type Button struct {
	Text string
	Data string // For callbacks
	URL  string // For URL buttons
}

// ReplyMarkup represents any kind of keyboard markup.
type ReplyMarkup struct {
	Buttons  [][]Button
	IsInline bool // Differentiates between Inline and Reply keyboards
}

// SendMessageParams holds all possible options for sending a message.
// Everything the bot sends is plain text.
type SendMessageParams struct {
	ChatID         int64
	Text           string
	ReplyMarkup    *ReplyMarkup
	RemoveKeyboard bool
}

// AnswerCallbackParams acknowledges a button press (stops the spinner).
type AnswerCallbackParams struct {
	CallbackQueryID string
	Text            string
	ShowAlert       bool
}

// --- Bot Client Port (Outbound) ---

// BotClientPort defines the interface for sending messages and fetching
// attachment bytes. This is the adapter our core logic calls.
type BotClientPort interface {
	// SendMessage sends a message and returns the sent message id.
	SendMessage(ctx context.Context, params SendMessageParams) (int, error)

	// AnswerCallbackQuery acknowledges a button press. Handlers must call
	// it on every callback outcome, including errors.
	AnswerCallbackQuery(ctx context.Context, params AnswerCallbackParams) error

	// GetFileBytes resolves an attachment reference to retrievable bytes.
	GetFileBytes(ctx context.Context, fileID string) ([]byte, error)
}

// --- Bot Handler Ports (Inbound) ---

// PhotoAttachment is the largest-size reference of an incoming photo.
type PhotoAttachment struct {
	FileID string
	Width  int
	Height int
}

// BotUpdate represents a simplified, generic update.
type BotUpdate struct {
	MessageID   int
	ChatID      int64
	UserID      int64
	Text        string
	Command     string
	CommandArgs string
	Photo       *PhotoAttachment
	// HasAttachment marks a message carrying a non-photo attachment
	// (document, sticker, voice, video, contact). The router never
	// feeds those into text dispatch.
	HasAttachment   bool
	CallbackQueryID string
	CallbackData    *string
}

// CommandHandler defines the "plugin" interface for handling bot commands.
type CommandHandler interface {
	// Command returns the command string without the slash (e.g., "start").
	Command() string
	// Handle processes the update.
	Handle(ctx context.Context, update *BotUpdate) error
}

// CallbackHandler defines the interface for handling callback queries.
type CallbackHandler interface {
	// Prefix returns the prefix for the callback data (e.g., "approve_").
	Prefix() string
	// Handle processes the callback.
	Handle(ctx context.Context, update *BotUpdate) error
}

// Conversation is one entry of the dispatcher's priority-ordered text
// list: the step logic for a single session kind. The router hands it
// the live session it found for (update.UserID, Kind()).
type Conversation interface {
	Kind() domain.SessionKind
	HandleText(ctx context.Context, update *BotUpdate, session *domain.Session) error
}

// PhotoConversation is the analogous entry of the photo list, scoped to
// kinds that accept photo input.
type PhotoConversation interface {
	Kind() domain.SessionKind
	HandlePhoto(ctx context.Context, update *BotUpdate, session *domain.Session) error
}
