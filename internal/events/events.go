package events

import (
	"fmt"
	"sync"

	console "emberfront/internal/utils/logger"
)

var log = console.New("EVENTS")

// Topics published by the session and notification layers. Consumers observe
// identity changes through these instead of polling the stores.
const (
	TopicSessionChanged      = "session.changed"
	TopicAdminSessionChanged = "admin_session.changed"
	TopicStepUpGranted       = "stepup.granted"
	TopicNotificationShown   = "notification.shown"
)

type EventHandler func(interface{})

type EventBus struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
	}
}

// On registers a handler for an event
func (bus *EventBus) On(event string, handler EventHandler) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	bus.handlers[event] = append(bus.handlers[event], handler)
	log.Debug("Registered handler for event: %s", event)
}

// Emit triggers an event with the given data; handlers run concurrently
func (bus *EventBus) Emit(event string, data interface{}) {
	bus.mu.RLock()
	handlers, exists := bus.handlers[event]
	bus.mu.RUnlock()

	if !exists {
		return
	}

	log.Debug("Emitting event: %s", event)

	for _, handler := range handlers {
		go func(h EventHandler) {
			defer recoverHandler()
			h(data)
		}(handler)
	}
}

// EmitSync runs handlers on the caller's goroutine, in registration order.
// Session transitions use this so a logout is fully observed before the
// store method returns.
func (bus *EventBus) EmitSync(event string, data interface{}) {
	bus.mu.RLock()
	handlers := append([]EventHandler(nil), bus.handlers[event]...)
	bus.mu.RUnlock()

	for _, handler := range handlers {
		func(h EventHandler) {
			defer recoverHandler()
			h(data)
		}(handler)
	}
}

func recoverHandler() {
	if r := recover(); r != nil {
		err := log.Error("Panic in event handler", fmt.Errorf("panic: %v", r))
		if err != nil {
			return
		}
	}
}
