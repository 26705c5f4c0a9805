package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lnsettle/eclair-adapter/internal/core/domain"
	"github.com/lnsettle/eclair-adapter/internal/core/ports"
	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// Routing keys observed on the queue bound to the eclair.message.#
// topic exchange. Everything else is ignored on purpose.
const (
	routingKeyPaymentReceived = "eclair.message.payment_received"
	routingKeyPaymentSent     = "eclair.message.payment_sent"
)

type WorkerConfig struct {
	URL   string
	Queue string
	// RequeueFailed controls the redelivery policy for negatively
	// acknowledged messages. Off by default so a permanently malformed
	// message is dropped (or dead-lettered by the broker topology)
	// instead of looping forever.
	RequeueFailed bool
}

type eventBuilder func(delivery amqp.Delivery) (domain.Event, error)

// Worker consumes node-originated messages from the broker queue and
// republishes them as typed events on the internal bus. One message is
// in flight at a time; a bad message is logged and rejected, never
// fatal to the loop.
type Worker struct {
	cfg      WorkerConfig
	bus      ports.EventBus
	builders map[string]eventBuilder
}

func NewWorker(cfg WorkerConfig, bus ports.EventBus) *Worker {
	w := &Worker{cfg: cfg, bus: bus}
	w.builders = map[string]eventBuilder{
		routingKeyPaymentReceived: buildPaymentReceived,
		routingKeyPaymentSent:     buildPaymentSent,
	}
	return w
}

// Run subscribes to the configured queue and blocks on delivery until
// the context is cancelled or the broker closes the channel.
func (w *Worker) Run(ctx context.Context) error {
	if strings.TrimSpace(w.cfg.Queue) == "" {
		return &domain.ValidationError{Reason: "queue name must not be blank"}
	}

	conn, err := amqp.Dial(w.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer channel.Close()

	// prefetch 1: the broker never hands over a second message before
	// the previous one is acknowledged.
	if err := channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	tag := "eclair-adapter-" + uuid.NewString()
	deliveries, err := channel.Consume(w.cfg.Queue, tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume queue %s: %w", w.cfg.Queue, err)
	}

	log.WithField("queue", w.cfg.Queue).Info("consuming eclair messages")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel for queue %s closed", w.cfg.Queue)
			}
			w.handle(delivery)
		}
	}
}

func (w *Worker) handle(delivery amqp.Delivery) {
	event, err := w.buildEvent(delivery)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"routing_key": delivery.RoutingKey,
			"payload":     string(delivery.Body),
		}).Error("failed to handle eclair message")
		if err := delivery.Nack(false, w.cfg.RequeueFailed); err != nil {
			log.WithError(err).Error("failed to nack message")
		}
		return
	}

	if event != nil {
		w.bus.Publish(event)
	}

	if err := delivery.Ack(false); err != nil {
		log.WithError(err).Error("failed to ack message")
	}
}

func (w *Worker) buildEvent(delivery amqp.Delivery) (domain.Event, error) {
	builder, ok := w.builders[delivery.RoutingKey]
	if !ok {
		// unknown routing keys are ignored, not errors
		return nil, nil
	}
	return builder(delivery)
}

func buildPaymentReceived(delivery amqp.Delivery) (domain.Event, error) {
	var payload struct {
		PaymentHash string `json:"paymentHash"`
		Parts       []struct {
			Amount uint64 `json:"amount"`
		} `json:"parts"`
	}
	if err := json.Unmarshal(delivery.Body, &payload); err != nil {
		return nil, fmt.Errorf("malformed payment_received payload: %w", err)
	}

	var amountPaid uint64
	for _, part := range payload.Parts {
		amountPaid += part.Amount
	}

	return domain.PaymentReceived{
		PreimageHash:   payload.PaymentHash,
		AmountPaidMsat: amountPaid,
		Timestamp:      messageTimestamp(delivery),
	}, nil
}

func buildPaymentSent(delivery amqp.Delivery) (domain.Event, error) {
	var payload struct {
		PaymentPreimage string `json:"paymentPreimage"`
		PaymentHash     string `json:"paymentHash"`
		RecipientAmount uint64 `json:"recipientAmount"`
	}
	if err := json.Unmarshal(delivery.Body, &payload); err != nil {
		return nil, fmt.Errorf("malformed payment_sent payload: %w", err)
	}

	return domain.PaymentSent{
		Preimage:       payload.PaymentPreimage,
		PreimageHash:   payload.PaymentHash,
		AmountMsat:     payload.RecipientAmount,
		AmountPaidMsat: payload.RecipientAmount,
		Timestamp:      messageTimestamp(delivery),
	}, nil
}

// messageTimestamp prefers the timestamp property the node attaches to
// each message, then the broker delivery timestamp.
func messageTimestamp(delivery amqp.Delivery) time.Time {
	if raw, ok := delivery.Headers["timestamp"]; ok {
		switch ts := raw.(type) {
		case int64:
			return time.Unix(ts, 0)
		case int32:
			return time.Unix(int64(ts), 0)
		case string:
			if secs, err := strconv.ParseInt(ts, 10, 64); err == nil {
				return time.Unix(secs, 0)
			}
		}
	}
	if !delivery.Timestamp.IsZero() {
		return delivery.Timestamp
	}
	return time.Now()
}
