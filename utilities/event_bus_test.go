package utilities

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewEventBus()
	var calls int64

	bus.Subscribe("test.event", func(data interface{}) {
		if data == "payload" {
			atomic.AddInt64(&calls, 1)
		}
	})
	bus.Subscribe("test.event", func(interface{}) {
		atomic.AddInt64(&calls, 1)
	})

	bus.Publish("test.event", "payload")
	bus.Drain()

	assert.EqualValues(t, 2, atomic.LoadInt64(&calls))
}

func TestEventBusIgnoresUnsubscribedEvents(t *testing.T) {
	bus := NewEventBus()
	var calls int64
	bus.Subscribe("test.event", func(interface{}) {
		atomic.AddInt64(&calls, 1)
	})

	bus.Publish("other.event", nil)
	bus.Drain()

	assert.EqualValues(t, 0, atomic.LoadInt64(&calls))
}
