package eventbus

import (
	"DriverHelper/internal/core/ports"
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// inMemoryEventBus implements ports.EventBus. It decouples the bot
// flows from their side effects: onboarding publishes driver:onboarded
// and the HR notifier consumes it without either knowing the other.
type inMemoryEventBus struct {
	log         zerolog.Logger
	subscribers map[string][]ports.EventHandler
	mu          sync.RWMutex
}

// NewInMemoryEventBus creates a new, empty event bus
func NewInMemoryEventBus(baseLogger *zerolog.Logger) ports.EventBus {
	return &inMemoryEventBus{
		log:         baseLogger.With().Str("component", "in_memory_bus").Logger(),
		subscribers: make(map[string][]ports.EventHandler),
	}
}

// Publish sends an event to all subscribers of a topic
func (b *inMemoryEventBus) Publish(ctx context.Context, topic string, data interface{}) error {
	b.mu.RLock() // Lock for reading the map
	defer b.mu.RUnlock()

	handlers, ok := b.subscribers[topic]
	if !ok {
		// Not an error, but worth seeing in the logs: every topic we
		// publish should have a notifier wired to it at startup.
		b.log.Warn().Str("topic", topic).Msg("Published event with no subscribers")
		return nil
	}

	event := ports.Event{
		Topic: topic,
		Data:  data,
	}

	// Handlers run in their own goroutines so a slow Telegram send in
	// one notifier never blocks the publisher or the other handlers.
	for _, handler := range handlers {
		go func(h ports.EventHandler) {
			// Background context: the publishing update's scope ends
			// before the notifier is done.
			if err := h(context.Background(), event); err != nil {
				b.log.Error().Err(err).Str("topic", topic).Msg("Event handler failed")
			}
		}(handler)
	}

	b.log.Info().Str("topic", topic).Int("handlers", len(handlers)).Msg("Event published")
	return nil
}

// Subscribe registers a handler for a specific topic
func (b *inMemoryEventBus) Subscribe(topic string, handler ports.EventHandler) {
	b.mu.Lock() // Lock for writing to the map
	defer b.mu.Unlock()

	b.subscribers[topic] = append(b.subscribers[topic], handler)
	b.log.Info().Str("topic", topic).Msg("New handler subscribed to topic")
}
