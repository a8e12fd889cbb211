package eventbus

import "testing"

func TestBusPublishSubscribe(t *testing.T) {
	bus := New(4)
	ch := bus.Subscribe()
	bus.Publish("hello")
	v := <-ch
	if v != "hello" {
		t.Fatalf("expected hello got %v", v)
	}
	bus.Unsubscribe(ch)
}

func TestBusNonBlockingDelivery(t *testing.T) {
	bus := New(1)
	ch := bus.Subscribe()
	// The second publish overflows the buffer and must be dropped, not
	// block the publisher.
	bus.Publish(1)
	bus.Publish(2)
	if v := <-ch; v != 1 {
		t.Fatalf("expected first event, got %v", v)
	}
	select {
	case v := <-ch:
		t.Fatalf("unexpected buffered event %v", v)
	default:
	}
	bus.Close()
}

func TestBusClose(t *testing.T) {
	bus := New(4)
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch1; ok {
		t.Fatalf("expected ch1 closed")
	}
	if _, ok := <-ch2; ok {
		t.Fatalf("expected ch2 closed")
	}
}

func TestBusPublishAfterClose(t *testing.T) {
	bus := New(4)
	bus.Close()
	// Must be a no-op, not a panic.
	bus.Publish("late")
}

func TestBusUnsubscribeAfterClose(t *testing.T) {
	bus := New(4)
	ch := bus.Subscribe()
	bus.Close()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic on Unsubscribe after Close: %v", r)
		}
	}()
	bus.Unsubscribe(ch)
}
