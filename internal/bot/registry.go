package bot

import (
	"DriverHelper/internal/core/domain"
	"DriverHelper/internal/core/ports"
	"DriverHelper/internal/shared/config"

	"github.com/rs/zerolog"
)

// Deps carries everything a handler constructor may need. Handlers pick
// what they use; main builds it once.
type Deps struct {
	Cfg      *config.Config
	Drivers  ports.DriverRepository
	Sessions ports.SessionRepository
	Requests ports.RequestRepository
	Storage  ports.DocumentStorage
	Analyzer ports.DocumentAnalyzer
	Bot      ports.BotClientPort
	Bus      ports.EventBus
	Log      *zerolog.Logger
}

// --- Handler constructor types ---

type CommandConstructor func(*Deps) ports.CommandHandler
type CallbackConstructor func(*Deps) ports.CallbackHandler
type ConversationConstructor func(*Deps) ports.Conversation
type PhotoConversationConstructor func(*Deps) ports.PhotoConversation

// KeyboardConstructor yields reply-keyboard phrase handlers.
type KeyboardConstructor func(*Deps) map[string]HandlerFunc

// --- Global registries, filled by init() in the handler packages ---

var (
	commandRegistry      []CommandConstructor
	callbackRegistry     []CallbackConstructor
	conversationRegistry []ConversationConstructor
	photoConvRegistry    []PhotoConversationConstructor
	keyboardRegistry     []KeyboardConstructor
)

// RegisterCommand is called by handlers in their init() function.
func RegisterCommand(constructor CommandConstructor) {
	commandRegistry = append(commandRegistry, constructor)
}

// RegisterCallback is called by callback handlers in their init() function.
func RegisterCallback(constructor CallbackConstructor) {
	callbackRegistry = append(callbackRegistry, constructor)
}

// RegisterConversation is called by conversations in their init() function.
func RegisterConversation(constructor ConversationConstructor) {
	conversationRegistry = append(conversationRegistry, constructor)
}

// RegisterPhotoConversation registers the photo side of a conversation.
func RegisterPhotoConversation(constructor PhotoConversationConstructor) {
	photoConvRegistry = append(photoConvRegistry, constructor)
}

// RegisterKeyboard registers a set of reply-keyboard phrase handlers.
func RegisterKeyboard(constructor KeyboardConstructor) {
	keyboardRegistry = append(keyboardRegistry, constructor)
}

// --- Dispatch orders ---
//
// These lists ARE the dispatch semantics: the router tries entries top
// to bottom and the first match wins. init() registration order is
// deliberately not trusted for anything order-sensitive.

// textDispatchOrder: relay modes outrank onboarding so an HR operator
// who is also mid-onboarding relays instead of feeding the form.
var textDispatchOrder = []domain.SessionKind{
	domain.KindHRMessage,
	domain.KindDriverReply,
	domain.KindOnboarding,
	domain.KindAdvanceRequest,
	domain.KindVacationRequest,
	domain.KindProfileUpdateDate,
}

var photoDispatchOrder = []domain.SessionKind{
	domain.KindOnboarding,
	domain.KindProfileUpdate,
}

// callbackDispatchOrder: prefix matching, so the exact menu callbacks
// must come before the "message_" prefix they would otherwise match.
var callbackDispatchOrder = []string{
	"message_hr",
	"message_support",
	"request_advance",
	"request_vacation",
	"check_status",
	"help",
	"message_",
	"approve_",
	"reject_",
	"reply_driver_",
}

// BuildRouter constructs every registered handler and wires it into a
// router in the documented dispatch order.
func BuildRouter(deps *Deps) *Router {
	router := NewRouter(deps.Sessions, deps.Bot, deps.Log)
	log := deps.Log.With().Str("component", "handler_registry").Logger()

	for _, constructor := range commandRegistry {
		router.RegisterCommandHandler(constructor(deps))
	}

	callbacksByPrefix := make(map[string]ports.CallbackHandler)
	for _, constructor := range callbackRegistry {
		handler := constructor(deps)
		callbacksByPrefix[handler.Prefix()] = handler
	}
	for _, prefix := range callbackDispatchOrder {
		if handler, ok := callbacksByPrefix[prefix]; ok {
			router.RegisterCallbackHandler(handler)
			delete(callbacksByPrefix, prefix)
		}
	}
	for prefix := range callbacksByPrefix {
		log.Warn().Str("prefix", prefix).Msg("Callback handler registered but missing from dispatch order, skipping")
	}

	convsByKind := make(map[domain.SessionKind]ports.Conversation)
	for _, constructor := range conversationRegistry {
		conv := constructor(deps)
		convsByKind[conv.Kind()] = conv
	}
	for _, kind := range textDispatchOrder {
		if conv, ok := convsByKind[kind]; ok {
			router.RegisterConversation(conv)
			delete(convsByKind, kind)
		}
	}
	for kind := range convsByKind {
		log.Warn().Str("kind", string(kind)).Msg("Conversation registered but missing from dispatch order, skipping")
	}

	photoConvsByKind := make(map[domain.SessionKind]ports.PhotoConversation)
	for _, constructor := range photoConvRegistry {
		conv := constructor(deps)
		photoConvsByKind[conv.Kind()] = conv
	}
	for _, kind := range photoDispatchOrder {
		if conv, ok := photoConvsByKind[kind]; ok {
			router.RegisterPhotoConversation(conv)
			delete(photoConvsByKind, kind)
		}
	}
	for kind := range photoConvsByKind {
		log.Warn().Str("kind", string(kind)).Msg("Photo conversation registered but missing from dispatch order, skipping")
	}

	for _, constructor := range keyboardRegistry {
		for phrase, fn := range constructor(deps) {
			router.RegisterKeyboardAction(phrase, fn)
		}
	}

	return router
}
