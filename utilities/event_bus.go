package utilities

import "sync"

// Event names published through the bus.
const (
	EventProgressSync    = "progress.sync"
	EventCourseCompleted = "course.completed"
	EventVideoStatus     = "video.status"
)

type EventHandler func(interface{})

// EventBus decouples fire-and-forget work from request paths. Handlers run
// asynchronously; failures are the handler's to log.
type EventBus struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
	wg       sync.WaitGroup
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
	}
}

func (eb *EventBus) Subscribe(event string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[event] = append(eb.handlers[event], handler)
}

func (eb *EventBus) Publish(event string, data interface{}) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	if handlers, found := eb.handlers[event]; found {
		for _, handler := range handlers {
			eb.wg.Add(1)
			go func(h EventHandler) {
				defer eb.wg.Done()
				h(data)
			}(handler)
		}
	}
}

// Drain blocks until all in-flight handlers finish. Tests use it to make
// asynchronous corrections observable.
func (eb *EventBus) Drain() {
	eb.wg.Wait()
}

// Global instance
var GlobalEventBus = NewEventBus()
