package pubsub

import (
	"testing"
	"time"

	"github.com/lnsettle/eclair-adapter/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func receiveEvent(t *testing.T, events <-chan domain.Event) domain.Event {
	t.Helper()
	select {
	case event := <-events:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestPublishSubscribe(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe()
	defer sub.Close()

	bus.Publish(domain.PaymentReceived{PreimageHash: "h1", AmountPaidMsat: 150})

	event := receiveEvent(t, sub.Events())
	received, ok := event.(domain.PaymentReceived)
	require.True(t, ok)
	require.Equal(t, "h1", received.PreimageHash)
}

func TestMultipleSubscribers(t *testing.T) {
	bus := NewBus()
	first := bus.Subscribe()
	second := bus.Subscribe()
	defer first.Close()
	defer second.Close()

	bus.Publish(domain.PaymentSent{PreimageHash: "h2"})

	require.Equal(t, domain.EventKindPaymentSent, receiveEvent(t, first.Events()).Kind())
	require.Equal(t, domain.EventKindPaymentSent, receiveEvent(t, second.Events()).Kind())
}

func TestCloseWithUndeliveredEvent(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe()

	// nobody is receiving; the delivery goroutine is parked on the
	// unbuffered channel
	bus.Publish(domain.PaymentReceived{PreimageHash: "h1", AmountPaidMsat: 150})

	done := make(chan struct{})
	go func() {
		sub.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close blocked on an undelivered event")
	}

	_, ok := <-sub.Events()
	require.False(t, ok)
}

func TestCloseStopsDelivery(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe()
	sub.Close()

	_, ok := <-sub.Events()
	require.False(t, ok)

	// publishing to a closed subscription must not panic
	bus.Publish(domain.PaymentReceived{PreimageHash: "h3"})
}
