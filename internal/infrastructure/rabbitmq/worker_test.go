package rabbitmq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lnsettle/eclair-adapter/internal/core/domain"
	"github.com/lnsettle/eclair-adapter/internal/core/ports"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

type stubAcknowledger struct {
	acks          int
	nacks         int
	nackedRequeue bool
}

func (a *stubAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acks++
	return nil
}

func (a *stubAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.nacks++
	a.nackedRequeue = requeue
	return nil
}

func (a *stubAcknowledger) Reject(tag uint64, requeue bool) error {
	a.nacks++
	a.nackedRequeue = requeue
	return nil
}

type recordingBus struct {
	events []domain.Event
}

func (b *recordingBus) Publish(event domain.Event) {
	b.events = append(b.events, event)
}

func (b *recordingBus) Subscribe() ports.Subscription {
	return nil
}

func newDelivery(ack *stubAcknowledger, routingKey string, body string) amqp.Delivery {
	return amqp.Delivery{
		Acknowledger: ack,
		RoutingKey:   routingKey,
		Body:         []byte(body),
		Headers:      amqp.Table{"timestamp": int64(1614600000)},
	}
}

func TestHandlePaymentReceived(t *testing.T) {
	bus := &recordingBus{}
	worker := NewWorker(WorkerConfig{Queue: "eclair-events"}, bus)

	ack := &stubAcknowledger{}
	worker.handle(newDelivery(
		ack,
		routingKeyPaymentReceived,
		`{"paymentHash": "h1", "parts": [{"amount": 100}, {"amount": 50}]}`,
	))

	require.Len(t, bus.events, 1)
	received, ok := bus.events[0].(domain.PaymentReceived)
	require.True(t, ok)
	require.Equal(t, "h1", received.PreimageHash)
	require.Equal(t, uint64(150), received.AmountPaidMsat)
	require.Equal(t, time.Unix(1614600000, 0), received.Timestamp)

	require.Equal(t, 1, ack.acks)
	require.Zero(t, ack.nacks)
}

func TestHandlePaymentSent(t *testing.T) {
	bus := &recordingBus{}
	worker := NewWorker(WorkerConfig{Queue: "eclair-events"}, bus)

	ack := &stubAcknowledger{}
	worker.handle(newDelivery(
		ack,
		routingKeyPaymentSent,
		`{"paymentPreimage": "p1", "paymentHash": "h1", "recipientAmount": 150000}`,
	))

	require.Len(t, bus.events, 1)
	sent, ok := bus.events[0].(domain.PaymentSent)
	require.True(t, ok)
	require.Equal(t, "p1", sent.Preimage)
	require.Equal(t, "h1", sent.PreimageHash)
	require.Equal(t, uint64(150000), sent.AmountMsat)
	require.Equal(t, uint64(150000), sent.AmountPaidMsat)

	require.Equal(t, 1, ack.acks)
	require.Zero(t, ack.nacks)
}

func TestHandleUnknownRoutingKey(t *testing.T) {
	bus := &recordingBus{}
	worker := NewWorker(WorkerConfig{Queue: "eclair-events"}, bus)

	ack := &stubAcknowledger{}
	worker.handle(newDelivery(ack, "eclair.message.channel_opened", `{"channelId": "c1"}`))

	require.Empty(t, bus.events)
	require.Equal(t, 1, ack.acks)
	require.Zero(t, ack.nacks)
}

func TestHandleMalformedPayload(t *testing.T) {
	bus := &recordingBus{}
	worker := NewWorker(WorkerConfig{Queue: "eclair-events"}, bus)

	ack := &stubAcknowledger{}
	worker.handle(newDelivery(ack, routingKeyPaymentReceived, `{not json`))

	require.Empty(t, bus.events)
	require.Zero(t, ack.acks)
	require.Equal(t, 1, ack.nacks)
	require.False(t, ack.nackedRequeue)

	// the worker keeps going after a bad message
	worker.handle(newDelivery(
		ack,
		routingKeyPaymentReceived,
		`{"paymentHash": "h2", "parts": [{"amount": 42}]}`,
	))
	require.Len(t, bus.events, 1)
	require.Equal(t, 1, ack.acks)
}

func TestHandleMalformedPayloadRequeuePolicy(t *testing.T) {
	bus := &recordingBus{}
	worker := NewWorker(WorkerConfig{Queue: "eclair-events", RequeueFailed: true}, bus)

	ack := &stubAcknowledger{}
	worker.handle(newDelivery(ack, routingKeyPaymentSent, `garbage`))

	require.Equal(t, 1, ack.nacks)
	require.True(t, ack.nackedRequeue)
}

func TestRunRequiresQueue(t *testing.T) {
	worker := NewWorker(WorkerConfig{Queue: "  "}, &recordingBus{})

	err := worker.Run(context.Background())
	require.Error(t, err)

	var validationErr *domain.ValidationError
	require.True(t, errors.As(err, &validationErr))
}

func TestMessageTimestampFallback(t *testing.T) {
	deliveryTime := time.Unix(1614600100, 0)
	got := messageTimestamp(amqp.Delivery{Timestamp: deliveryTime})
	require.Equal(t, deliveryTime, got)

	got = messageTimestamp(amqp.Delivery{Headers: amqp.Table{"timestamp": "1614600200"}})
	require.Equal(t, time.Unix(1614600200, 0), got)
}
