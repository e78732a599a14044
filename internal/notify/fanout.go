// Package notify implements the event fan-out that pushes monitoring
// events to live observers (websocket clients, MQTT publishers, tests).
package notify

import (
	"sync"

	"github.com/google/uuid"

	"NetMonitorAPI/internal/logger"
	"NetMonitorAPI/internal/models"
)

// Observer receives monitoring events. Handle must not block for long;
// a returned error drops the observer from the fan-out permanently.
type Observer interface {
	Handle(event models.Event) error
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(event models.Event) error

func (f ObserverFunc) Handle(event models.Event) error {
	return f(event)
}

// Fanout broadcasts events to every registered observer. A failing
// observer is logged and removed so it can never stall the poll cycle
// or delivery to the remaining observers.
type Fanout struct {
	mu        sync.RWMutex
	observers map[string]Observer
	log       *logger.Logger
}

func NewFanout(log *logger.Logger) *Fanout {
	return &Fanout{
		observers: make(map[string]Observer),
		log:       log,
	}
}

// Register adds an observer and returns its token for later removal.
func (f *Fanout) Register(obs Observer) string {
	token := uuid.New().String()
	f.mu.Lock()
	f.observers[token] = obs
	f.mu.Unlock()
	f.log.Debug("Observer registered: %s", token)
	return token
}

// Unregister removes the observer with the given token. Unknown tokens
// are ignored.
func (f *Fanout) Unregister(token string) {
	f.mu.Lock()
	delete(f.observers, token)
	f.mu.Unlock()
	f.log.Debug("Observer unregistered: %s", token)
}

// Count returns the number of currently registered observers.
func (f *Fanout) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.observers)
}

// Broadcast delivers the event to every registered observer. Observers
// that return an error are dropped; delivery to the rest continues.
func (f *Fanout) Broadcast(event models.Event) {
	f.mu.RLock()
	snapshot := make(map[string]Observer, len(f.observers))
	for token, obs := range f.observers {
		snapshot[token] = obs
	}
	f.mu.RUnlock()

	var failed []string
	for token, obs := range snapshot {
		if err := obs.Handle(event); err != nil {
			f.log.Warn("Dropping observer %s after delivery failure: %v", token, err)
			failed = append(failed, token)
		}
	}

	if len(failed) > 0 {
		f.mu.Lock()
		for _, token := range failed {
			delete(f.observers, token)
		}
		f.mu.Unlock()
	}
}
