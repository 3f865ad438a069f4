package utilities

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewEventBus()

	var wg sync.WaitGroup
	wg.Add(2)

	var mu sync.Mutex
	var received []interface{}

	handler := func(data interface{}) {
		mu.Lock()
		received = append(received, data)
		mu.Unlock()
		wg.Done()
	}

	bus.Subscribe(EventQuizSubmitted, handler)
	bus.Subscribe(EventQuizSubmitted, handler)
	bus.Publish(EventQuizSubmitted, "payload")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handlers did not run")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []interface{}{"payload", "payload"}, received)
}

func TestEventBusIgnoresUnknownEvents(t *testing.T) {
	bus := NewEventBus()

	fired := make(chan struct{}, 1)
	bus.Subscribe(EventPaperProcessed, func(interface{}) {
		fired <- struct{}{}
	})

	bus.Publish("some_other_event", nil)

	select {
	case <-fired:
		t.Fatal("handler fired for an event it never subscribed to")
	case <-time.After(100 * time.Millisecond):
	}
}
