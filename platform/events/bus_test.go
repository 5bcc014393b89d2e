package events

import (
	"context"
	"testing"
	"time"
)

type testEvent struct {
	BaseEvent
}

func (testEvent) EventName() string { return "test.event" }

func TestPublish_DeliversToAllSubscribers(t *testing.T) {
	bus := NewInMemoryBus(nil)

	got := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error {
			got <- struct{}{}
			return nil
		}))
	}

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent()})

	for i := 0; i < 2; i++ {
		select {
		case <-got:
		case <-time.After(time.Second):
			t.Fatalf("handler %d was not invoked", i)
		}
	}
}

func TestPublish_HandlerOutlivesCallerContext(t *testing.T) {
	bus := NewInMemoryBus(nil)

	handlerErr := make(chan error, 1)
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, _ Event) error {
		// Simulate work finishing after the publishing request has returned.
		time.Sleep(20 * time.Millisecond)
		handlerErr <- ctx.Err()
		return nil
	}))

	reqCtx, cancel := context.WithCancel(context.Background())
	bus.Publish(reqCtx, testEvent{BaseEvent: NewBaseEvent()})
	cancel()

	select {
	case err := <-handlerErr:
		if err != nil {
			t.Fatalf("handler context = %v, want detached from caller cancellation", err)
		}
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestPublishSync_JoinsHandlerErrors(t *testing.T) {
	bus := NewInMemoryBus(nil)

	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error {
		return context.DeadlineExceeded
	}))
	bus.Subscribe("test.event", HandlerFunc(func(context.Context, Event) error {
		return nil
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent()})
	if err == nil {
		t.Fatal("PublishSync returned nil, want the handler error")
	}
}
